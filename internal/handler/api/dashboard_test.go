package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"VoltWatch/internal/domain/models"
	"VoltWatch/internal/usecase"
	pkgcache "VoltWatch/pkg/cache"
	"VoltWatch/pkg/config"
	xlogger "VoltWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeSource struct {
	latest     *models.RawReading
	rows       []models.RawReading
	err        error
	rangeCalls int
}

func (s *fakeSource) LatestReading(_ context.Context, _ string) (*models.RawReading, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.latest, nil
}

func (s *fakeSource) ReadingsSince(_ context.Context, _ string, _ time.Time) ([]models.RawReading, error) {
	s.rangeCalls++
	return s.rows, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordWindowFetched(string, int)   {}
func (noopMetrics) RecordMalformed(string, string)    {}
func (noopMetrics) RecordCacheLookup(string, bool)    {}
func (noopMetrics) RecordLastVoltage(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)     {}
func (noopMetrics) RecordError(string)                {}

type fakeHealth struct{ err error }

func (h fakeHealth) Health(_ context.Context) error { return h.err }

type apiResponse struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Dashboard.Collection = "voltage"
	cfg.Dashboard.Window = config.Duration(5 * time.Second)
	cfg.Dashboard.Device.Active = true
	cfg.Dashboard.Device.CurrentPowerV = 69
	cfg.Dashboard.Device.GeneratedWh = 420
	return cfg
}

func newHandler(t *testing.T, source *fakeSource, health fakeHealth) (*DashboardHandler, *echo.Echo) {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	fetcher := usecase.NewWindowFetcher(source, noopMetrics{}, nil, 5*time.Second, l)
	cached := usecase.NewCachedWindowFetcher(fetcher, mc, noopMetrics{}, time.Minute, l)

	h := NewDashboardHandler(l, cached, health, testConfig())
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func perform(t *testing.T, e *echo.Echo, method, target string) apiResponse {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return resp
}

func TestWindowEndpoint(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 16, 0, time.UTC)
	v := 5.2
	source := &fakeSource{
		latest: &models.RawReading{Timestamp: &ts, Voltage: &v},
		rows:   []models.RawReading{{Timestamp: &ts, Voltage: &v}},
	}
	_, e := newHandler(t, source, fakeHealth{})

	resp := perform(t, e, http.MethodGet, "/api/window")
	if resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Status)
	}

	var w models.ReadingWindow
	if err := json.Unmarshal(resp.Data, &w); err != nil {
		t.Fatalf("decode window: %v", err)
	}
	if w.Collection != "voltage" {
		t.Errorf("expected default collection, got %q", w.Collection)
	}
	if w.Count != 1 || len(w.Readings) != 1 {
		t.Errorf("unexpected window contents %+v", w)
	}
	if !w.Latest.Equal(ts) {
		t.Errorf("window not anchored to latest record, got %v", w.Latest)
	}
}

func TestWindowEndpoint_SourceUnavailable(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	_, e := newHandler(t, source, fakeHealth{})

	resp := perform(t, e, http.MethodGet, "/api/window")
	if resp.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected envelope status %d", resp.Status)
	}

	var appErrs []struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Data, &appErrs); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(appErrs) != 1 || appErrs[0].Code != "ERR_SOURCE_UNAVAILABLE" {
		t.Errorf("expected source unavailable error, got %+v", appErrs)
	}
}

func TestRefreshEndpoint_ForcesRequery(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 16, 0, time.UTC)
	v := 5.2
	source := &fakeSource{
		latest: &models.RawReading{Timestamp: &ts, Voltage: &v},
		rows:   []models.RawReading{{Timestamp: &ts, Voltage: &v}},
	}
	_, e := newHandler(t, source, fakeHealth{})

	perform(t, e, http.MethodGet, "/api/window")
	perform(t, e, http.MethodGet, "/api/window")
	if source.rangeCalls != 1 {
		t.Fatalf("expected memoized second fetch, got %d source calls", source.rangeCalls)
	}

	resp := perform(t, e, http.MethodPost, "/api/refresh")
	if resp.Status != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Status)
	}
	if source.rangeCalls != 2 {
		t.Errorf("expected refresh to re-query the source, got %d calls", source.rangeCalls)
	}
}

func TestDeviceEndpoint(t *testing.T) {
	_, e := newHandler(t, &fakeSource{}, fakeHealth{})

	resp := perform(t, e, http.MethodGet, "/api/device")
	var d models.DeviceInfo
	if err := json.Unmarshal(resp.Data, &d); err != nil {
		t.Fatalf("decode device: %v", err)
	}
	if !d.Active || d.CurrentPowerV != 69 || d.GeneratedWh != 420 {
		t.Errorf("unexpected device info %+v", d)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newHandler(t, &fakeSource{}, fakeHealth{})
	resp := perform(t, e, http.MethodGet, "/api/health")
	if resp.Status != http.StatusOK {
		t.Errorf("unexpected status %d", resp.Status)
	}
}

func TestHealthEndpoint_StoreDown(t *testing.T) {
	_, e := newHandler(t, &fakeSource{}, fakeHealth{err: errors.New("dial tcp: refused")})

	resp := perform(t, e, http.MethodGet, "/api/health")
	var appErrs []struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Data, &appErrs); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(appErrs) != 1 || appErrs[0].Code != "ERR_SOURCE_UNAVAILABLE" {
		t.Errorf("expected source unavailable error, got %+v", appErrs)
	}
}
