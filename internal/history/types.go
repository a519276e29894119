package history

import (
	"time"
)

// unknownAvailability is stored when a listing carries no availability count,
// so an explicit 0 (sold out) stays distinguishable in the table.
const unknownAvailability = -1

// WriterConfig contains configuration for the history writer.
type WriterConfig struct {
	// InstanceID tags every row with the bridge that wrote it.
	InstanceID string

	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// BufferSize is the initial capacity of the input ring buffer.
	BufferSize int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: 5 * time.Second,
		BufferSize:    5000,
	}
}

// availabilityRow represents a row for the availability_history table.
type availabilityRow struct {
	CycleID         string // UUID of the refresh cycle
	RefreshedAt     int64  // Microseconds
	InstanceID      string
	ItemID          string
	DisplayName     string
	ItemsAvailable  int // -1 = unknown
	PriceMinorUnits int
	PriceDecimals   int
	PriceCode       string
	PickupStart     string
	PickupEnd       string
	SoldOutAt       string
}

// WriterMetrics holds metrics for the writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
