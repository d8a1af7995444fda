package repository

import (
	"context"
	"errors"
	"time"

	"VoltWatch/internal/domain/models"
)

// ErrSourceUnavailable marks a failure to reach or query the backing
// store. Callers use it to distinguish "nothing to show yet" (empty
// window, nil error) from "something is broken".
var ErrSourceUnavailable = errors.New("reading source unavailable")

// ReadingSource is the external collection-backed datastore, reduced to
// the two query shapes the window fetch needs.
type ReadingSource interface {
	// LatestReading returns the single record with the maximum
	// timestamp, or (nil, nil) when the collection is empty.
	LatestReading(ctx context.Context, collection string) (*models.RawReading, error)
	// ReadingsSince returns all records with timestamp >= since,
	// ordered ascending by timestamp.
	ReadingsSince(ctx context.Context, collection string, since time.Time) ([]models.RawReading, error)
}

// QualityHook observes records dropped during window assembly.
type QualityHook interface {
	RecordSkip(collection, reason string)
}

// Metrics records operational counters for the service.
type Metrics interface {
	RecordWindowFetched(collection string, readings int)
	RecordMalformed(collection, reason string)
	RecordCacheLookup(collection string, hit bool)
	RecordLastVoltage(collection string, v float64)
	RecordLatency(op string, seconds float64)
	RecordError(kind string)
}
