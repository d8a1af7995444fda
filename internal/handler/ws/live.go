package ws

import (
	"errors"
	"net/http"

	domrepo "VoltWatch/internal/domain/repository"
	"VoltWatch/internal/usecase"
	xlogger "VoltWatch/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// LiveHandler exposes the window over a WebSocket. The client drives the
// exchange: each request triggers exactly one fetch (or a cache hit);
// the server never polls on its own.
type LiveHandler struct {
	logger            *xlogger.Logger
	windows           *usecase.CachedWindowFetcher
	defaultCollection string
	upgrader          websocket.Upgrader
}

func NewLiveHandler(logger *xlogger.Logger, windows *usecase.CachedWindowFetcher, defaultCollection string) *LiveHandler {
	return &LiveHandler{
		logger:            logger,
		windows:           windows,
		defaultCollection: defaultCollection,
		upgrader: websocket.Upgrader{
			// Same-origin policy is handled by the CORS layer; the
			// dashboard is served from arbitrary hosts in dev.
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

type liveRequest struct {
	Action     string `json:"action"` // "window" or "refresh"
	Collection string `json:"collection,omitempty"`
}

type liveResponse struct {
	Type   string      `json:"type"` // "window" or "error"
	Code   string      `json:"code,omitempty"`
	Error  string      `json:"error,omitempty"`
	Window interface{} `json:"window,omitempty"`
}

func (h *LiveHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Live)
}

// Live upgrades the connection and serves window requests until the
// client disconnects.
func (h *LiveHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()

	for {
		var req liveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("ws read error", xlogger.Error(err))
			}
			return nil
		}

		collection := req.Collection
		if collection == "" {
			collection = h.defaultCollection
		}

		if req.Action == "refresh" {
			if err := h.windows.Invalidate(ctx); err != nil {
				h.logger.Error("ws invalidate error", xlogger.Error(err))
				if werr := conn.WriteJSON(liveResponse{Type: "error", Code: "ERR_INTERNAL", Error: "could not clear cached windows"}); werr != nil {
					return nil
				}
				continue
			}
		}

		w, err := h.windows.FetchWindow(ctx, collection)
		if err != nil {
			resp := liveResponse{Type: "error", Code: "ERR_INTERNAL", Error: "fetch failed"}
			if errors.Is(err, domrepo.ErrSourceUnavailable) {
				resp.Code = "ERR_SOURCE_UNAVAILABLE"
				resp.Error = "backing store unreachable"
			}
			h.logger.Error("ws window fetch error",
				xlogger.String("collection", collection),
				xlogger.Error(err),
			)
			if werr := conn.WriteJSON(resp); werr != nil {
				return nil
			}
			continue
		}

		if err := conn.WriteJSON(liveResponse{Type: "window", Window: w}); err != nil {
			return nil
		}
	}
}
