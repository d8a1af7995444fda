package quality

import (
	"testing"
	"time"
)

func TestCollector_RecordSkip(t *testing.T) {
	c := NewCollector(time.Hour, nil)
	defer c.Close()

	c.RecordSkip("voltage", "missing_voltage")
	c.RecordSkip("voltage", "missing_voltage")
	c.RecordSkip("voltage", "missing_timestamp")

	totals := c.Totals()
	if totals["voltage/missing_voltage"] != 2 {
		t.Errorf("expected 2 missing_voltage skips, got %d", totals["voltage/missing_voltage"])
	}
	if totals["voltage/missing_timestamp"] != 1 {
		t.Errorf("expected 1 missing_timestamp skip, got %d", totals["voltage/missing_timestamp"])
	}
}

func TestCollector_SeparateCollections(t *testing.T) {
	c := NewCollector(time.Hour, nil)
	defer c.Close()

	c.RecordSkip("voltage", "missing_voltage")
	c.RecordSkip("current", "missing_voltage")

	totals := c.Totals()
	if len(totals) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(totals))
	}
}
