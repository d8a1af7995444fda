package di

import (
	"context"
	"fmt"
	"time"

	"VoltWatch/internal/domain/repository"
	"VoltWatch/internal/handler/api"
	"VoltWatch/internal/handler/ws"
	internalrepo "VoltWatch/internal/repository"
	"VoltWatch/internal/service/quality"
	"VoltWatch/internal/usecase"
	pkgcache "VoltWatch/pkg/cache"
	pkgch "VoltWatch/pkg/clickhouse"
	"VoltWatch/pkg/config"
	"VoltWatch/pkg/metrics"
	"VoltWatch/pkg/server"

	applogger "VoltWatch/pkg/logger"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// readings schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout.Std(), cfg.ClickHouse.ReadTimeout.Std(), cfg.ClickHouse.WriteTimeout.Std()),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime.Std()),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.readings (
            collection LowCardinality(String),
            ts Nullable(DateTime64(3)),
            voltage Nullable(Float64)
        ) ENGINE = MergeTree ORDER BY collection`, db),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCache creates the window memo cache for the configured backend.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		), nil
	case "redis", "layered":
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Backend == "layered" {
			return pkgcache.NewLayeredCache(rc,
				pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
			), nil
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideQualityCollector creates the malformed-record aggregator.
func ProvideQualityCollector(l *applogger.Logger) *quality.Collector {
	return quality.NewCollector(30*time.Second, l)
}

// ProvideReadingSource creates the ClickHouse-backed reading source.
func ProvideReadingSource(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHReadingSource {
	src := internalrepo.NewCHReadingSource(chClient, cfg.ClickHouse.Database+".readings")
	src.SetLogger(l)
	return src
}

// ProvideWindowFetcher creates the core window fetch use case.
func ProvideWindowFetcher(src *internalrepo.CHReadingSource, m repository.Metrics, q *quality.Collector, cfg *config.Config, l *applogger.Logger) *usecase.WindowFetcher {
	return usecase.NewWindowFetcher(src, m, q, cfg.Dashboard.Window.Std(), l)
}

// ProvideCachedWindowFetcher wraps the fetcher with the 60s memo.
func ProvideCachedWindowFetcher(f *usecase.WindowFetcher, c pkgcache.Service, m repository.Metrics, cfg *config.Config, l *applogger.Logger) *usecase.CachedWindowFetcher {
	return usecase.NewCachedWindowFetcher(f, c, m, cfg.Cache.TTL.Std(), l)
}

// ProvideDashboardHandler creates the REST handler.
func ProvideDashboardHandler(l *applogger.Logger, windows *usecase.CachedWindowFetcher, src *internalrepo.CHReadingSource, cfg *config.Config) *api.DashboardHandler {
	return api.NewDashboardHandler(l, windows, src, cfg)
}

// ProvideLiveHandler creates the WebSocket handler.
func ProvideLiveHandler(l *applogger.Logger, windows *usecase.CachedWindowFetcher, cfg *config.Config) *ws.LiveHandler {
	return ws.NewLiveHandler(l, windows, cfg.Dashboard.Collection)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	chClient *pkgch.Client,
	cacheSvc pkgcache.Service,
	qc *quality.Collector,
	dashboard *api.DashboardHandler,
	live *ws.LiveHandler,
) *server.App {
	return server.New(cfg, l, chClient, cacheSvc, qc, dashboard, live)
}
