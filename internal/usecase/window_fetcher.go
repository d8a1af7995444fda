package usecase

import (
	"context"
	"fmt"
	"time"

	"VoltWatch/internal/domain/models"
	domrepo "VoltWatch/internal/domain/repository"
	applogger "VoltWatch/pkg/logger"
)

const (
	skipMissingTimestamp = "missing_timestamp"
	skipMissingVoltage   = "missing_voltage"
)

// WindowFetcher assembles the trailing reading window anchored to the
// latest record in a collection. It is purely read-only; memoization
// lives in CachedWindowFetcher.
type WindowFetcher struct {
	source  domrepo.ReadingSource
	metrics domrepo.Metrics
	quality domrepo.QualityHook
	window  time.Duration
	l       *applogger.Logger
}

func NewWindowFetcher(source domrepo.ReadingSource, metrics domrepo.Metrics, quality domrepo.QualityHook, window time.Duration, l *applogger.Logger) *WindowFetcher {
	return &WindowFetcher{
		source:  source,
		metrics: metrics,
		quality: quality,
		window:  window,
		l:       l,
	}
}

// FetchWindow returns all well-formed readings within the trailing
// window anchored to the latest record's timestamp, ascending. An empty
// collection yields an empty window with a nil error; a source failure
// propagates wrapped in ErrSourceUnavailable.
func (f *WindowFetcher) FetchWindow(ctx context.Context, collection string) (models.ReadingWindow, error) {
	if collection == "" {
		return models.ReadingWindow{}, fmt.Errorf("collection is required")
	}

	start := time.Now()

	latest, err := f.source.LatestReading(ctx, collection)
	if err != nil {
		f.metrics.RecordError("source_latest")
		return models.ReadingWindow{}, fmt.Errorf("latest reading %q: %w: %w", collection, domrepo.ErrSourceUnavailable, err)
	}
	if latest == nil {
		// No data yet; not an error.
		return f.emptyWindow(collection), nil
	}
	if latest.Timestamp == nil {
		// The newest record carries no timestamp, so there is nothing
		// to anchor the window to.
		f.skip(collection, skipMissingTimestamp)
		return f.emptyWindow(collection), nil
	}

	anchor := *latest.Timestamp
	since := anchor.Add(-f.window)

	raws, err := f.source.ReadingsSince(ctx, collection, since)
	if err != nil {
		f.metrics.RecordError("source_range")
		return models.ReadingWindow{}, fmt.Errorf("readings since %s for %q: %w: %w", since.Format(time.RFC3339), collection, domrepo.ErrSourceUnavailable, err)
	}

	readings := make([]models.Reading, 0, len(raws))
	for _, r := range raws {
		if r.Timestamp == nil {
			f.skip(collection, skipMissingTimestamp)
			continue
		}
		if r.Voltage == nil {
			f.skip(collection, skipMissingVoltage)
			continue
		}
		readings = append(readings, models.Reading{Timestamp: *r.Timestamp, Voltage: *r.Voltage})
	}

	if len(readings) > 0 {
		f.metrics.RecordLastVoltage(collection, readings[len(readings)-1].Voltage)
	}
	f.metrics.RecordWindowFetched(collection, len(readings))
	f.metrics.RecordLatency("fetch_window", time.Since(start).Seconds())

	if f.l != nil {
		f.l.Debug("window fetched",
			applogger.String("collection", collection),
			applogger.Int("readings", len(readings)),
			applogger.Int("skipped", len(raws)-len(readings)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}

	return models.ReadingWindow{
		Collection: collection,
		Start:      since,
		Latest:     anchor,
		Count:      len(readings),
		Readings:   readings,
	}, nil
}

func (f *WindowFetcher) emptyWindow(collection string) models.ReadingWindow {
	return models.ReadingWindow{Collection: collection, Readings: []models.Reading{}}
}

func (f *WindowFetcher) skip(collection, reason string) {
	if f.quality != nil {
		f.quality.RecordSkip(collection, reason)
	}
	f.metrics.RecordMalformed(collection, reason)
}
