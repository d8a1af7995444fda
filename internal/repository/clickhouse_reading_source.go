package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VoltWatch/internal/domain/models"
	pkgch "VoltWatch/pkg/clickhouse"
	applogger "VoltWatch/pkg/logger"
)

// CHReadingSource implements ReadingSource backed by ClickHouse. Rows
// with missing timestamp or voltage are stored as NULLs and returned
// as-is; filtering is the window fetcher's job.
type CHReadingSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHReadingSource(ch *pkgch.Client, table string) *CHReadingSource {
	return &CHReadingSource{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHReadingSource) SetLogger(l *applogger.Logger) { s.l = l }

// LatestReading returns the record with the maximum timestamp, or
// (nil, nil) when the collection has no rows.
func (s *CHReadingSource) LatestReading(ctx context.Context, collection string) (*models.RawReading, error) {
	start := time.Now()
	const qtpl = `
        SELECT ts, voltage
        FROM %s
        WHERE collection = ?
        ORDER BY ts DESC NULLS LAST
        LIMIT 1
    `
	q := fmt.Sprintf(qtpl, s.table)

	var (
		ts sql.NullTime
		v  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, q, collection).Scan(&ts, &v)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_reading query error",
				applogger.String("table", s.table),
				applogger.String("collection", collection),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("latest reading: %w", err)
	}

	raw := rawFromRow(ts, v)
	if s.l != nil {
		s.l.Debug("clickhouse latest_reading ok",
			applogger.String("table", s.table),
			applogger.String("collection", collection),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &raw, nil
}

// ReadingsSince returns all records with ts >= since, ascending.
func (s *CHReadingSource) ReadingsSince(ctx context.Context, collection string, since time.Time) ([]models.RawReading, error) {
	start := time.Now()
	const qtpl = `
        SELECT ts, voltage
        FROM %s
        WHERE collection = ? AND ts >= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, collection, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse readings_since query error",
				applogger.String("table", s.table),
				applogger.String("collection", collection),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("readings since: %w", err)
	}
	defer rows.Close()

	out := make([]models.RawReading, 0, 64)
	for rows.Next() {
		var (
			ts sql.NullTime
			v  sql.NullFloat64
		)
		if err := rows.Scan(&ts, &v); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse readings_since scan error",
					applogger.String("table", s.table),
					applogger.String("collection", collection),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, rawFromRow(ts, v))
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse readings_since rows error",
				applogger.String("table", s.table),
				applogger.String("collection", collection),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Info("clickhouse readings_since ok",
			applogger.String("table", s.table),
			applogger.String("collection", collection),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// Health pings the backing store.
func (s *CHReadingSource) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func rawFromRow(ts sql.NullTime, v sql.NullFloat64) models.RawReading {
	var raw models.RawReading
	if ts.Valid {
		t := ts.Time
		raw.Timestamp = &t
	}
	if v.Valid {
		f := v.Float64
		raw.Voltage = &f
	}
	return raw
}
