package models

import "time"

// RawReading is a record as stored by the producer. Either field may be
// absent; rows are only validated when a window is assembled.
type RawReading struct {
	Timestamp *time.Time
	Voltage   *float64
}

// Reading is a single validated sensor sample.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Voltage   float64   `json:"voltage"`
}

// ReadingWindow is the trailing burst of samples anchored to the latest
// record in the collection. Readings are ascending by timestamp and all
// fall within [Start, Latest]. An empty collection yields a window with
// Count == 0 and zero Start/Latest.
type ReadingWindow struct {
	Collection string    `json:"collection"`
	Start      time.Time `json:"start,omitempty"`
	Latest     time.Time `json:"latest,omitempty"`
	Count      int       `json:"count"`
	Readings   []Reading `json:"readings"`
}

// Empty reports whether the window carries no samples.
func (w ReadingWindow) Empty() bool { return len(w.Readings) == 0 }
