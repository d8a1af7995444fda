package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"VoltWatch/internal/domain/models"
	domrepo "VoltWatch/internal/domain/repository"
	"VoltWatch/internal/usecase"
	"VoltWatch/pkg/config"
	xhttp "VoltWatch/pkg/http"
	xlogger "VoltWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Version is overridable at build time via -ldflags.
var Version = "dev"

// HealthChecker pings the backing store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// DashboardHandler serves the dashboard API: the reading window, the
// static device cards and the upload/about pages of the original UI.
type DashboardHandler struct {
	logger  *xlogger.Logger
	windows *usecase.CachedWindowFetcher
	health  HealthChecker
	cfg     *config.Config
}

func NewDashboardHandler(logger *xlogger.Logger, windows *usecase.CachedWindowFetcher, health HealthChecker, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{logger: logger, windows: windows, health: health, cfg: cfg}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/window", h.Window)
	g.POST("/refresh", h.Refresh)
	g.GET("/device", h.Device)
	g.GET("/about", h.About)
	g.POST("/upload", h.Upload)
	g.GET("/health", h.Health)
}

// Window returns the current reading window, memoized per collection.
func (h *DashboardHandler) Window(c echo.Context) error {
	req := &models.WindowRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	collection := h.collectionOrDefault(req.Collection)

	w, err := h.windows.FetchWindow(c.Request().Context(), collection)
	if err != nil {
		return h.windowError(c, collection, err)
	}
	return xhttp.SuccessResponse(c, w)
}

// Refresh drops all memoized windows and returns a freshly queried one.
func (h *DashboardHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	collection := h.collectionOrDefault(req.Collection)

	ctx := c.Request().Context()
	if err := h.windows.Invalidate(ctx); err != nil {
		h.logger.Error("refresh invalidate error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not clear cached windows").WithError(err))
	}

	w, err := h.windows.FetchWindow(ctx, collection)
	if err != nil {
		return h.windowError(c, collection, err)
	}
	return xhttp.SuccessResponse(c, w)
}

// Device returns the static status cards shown next to the chart.
func (h *DashboardHandler) Device(c echo.Context) error {
	d := h.cfg.Dashboard.Device
	return xhttp.SuccessResponse(c, models.DeviceInfo{
		Active:        d.Active,
		CurrentPowerV: d.CurrentPowerV,
		GeneratedWh:   d.GeneratedWh,
	})
}

// About describes the service.
func (h *DashboardHandler) About(c echo.Context) error {
	return xhttp.SuccessResponse(c, models.AboutInfo{
		Name:        "voltwatch",
		Description: "Streams recent voltage readings from the backing store and serves them to the dashboard chart.",
		Version:     Version,
	})
}

// Upload stores a multipart file under the configured upload directory.
func (h *DashboardHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "file",
			Message: "file is required",
		}})
	}

	src, err := file.Open()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not read upload").WithError(err))
	}
	defer src.Close()

	if err := os.MkdirAll(h.cfg.Dashboard.UploadDir, 0o755); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not prepare upload dir").WithError(err))
	}

	// Base keeps uploads inside the configured directory.
	name := filepath.Base(file.Filename)
	dst, err := os.Create(filepath.Join(h.cfg.Dashboard.UploadDir, name))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not store upload").WithError(err))
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not store upload").WithError(err))
	}

	h.logger.Info("file uploaded",
		xlogger.String("name", name),
		xlogger.Int64("size", size),
	)
	return xhttp.CreatedResponse(c, models.UploadResult{Name: name, Size: size})
}

// Health pings the backing store.
func (h *DashboardHandler) Health(c echo.Context) error {
	if err := h.health.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("backing store unreachable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DashboardHandler) collectionOrDefault(collection string) string {
	if collection == "" {
		return h.cfg.Dashboard.Collection
	}
	return collection
}

func (h *DashboardHandler) windowError(c echo.Context, collection string, err error) error {
	if errors.Is(err, domrepo.ErrSourceUnavailable) {
		h.logger.Error("window fetch source error",
			xlogger.String("collection", collection),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError(
			fmt.Sprintf("could not query collection %q", collection)).WithError(err))
	}
	h.logger.Error("window fetch error",
		xlogger.String("collection", collection),
		xlogger.Error(err),
	)
	return xhttp.AppErrorResponse(c, err)
}
