package history

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkoopmans/tgtg-bridge/internal/coordinator"
	"github.com/mkoopmans/tgtg-bridge/internal/model"
)

// Writer records refresh cycles into the availability_history table.
type Writer struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input rows, fed by Record
	input *GrowableBuffer[availabilityRow]

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []availabilityRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx         context.Context
	cancel      context.CancelFunc
	consumeDone chan struct{}
	wg          sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewWriter creates a history writer backed by db.
func NewWriter(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  NewGrowableBuffer[availabilityRow](cfg.BufferSize),
		batch:  make([]availabilityRow, 0, cfg.BatchSize),
	}
}

// Record enqueues one refresh cycle for persistence. It never blocks; the
// input buffer grows as needed. Updates recorded after Stop are dropped.
func (w *Writer) Record(update coordinator.Update) {
	for _, row := range w.flatten(update) {
		w.input.Send(row)
	}
}

// Start begins consuming rows and writing batches to the database.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)
	w.consumeDone = make(chan struct{})

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("history writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the input buffer, flushes the remaining batch, and shuts the
// writer down.
func (w *Writer) Stop(ctx context.Context) error {
	w.logger.Info("stopping history writer")

	// Closing the input lets the consumer drain everything already
	// recorded before we cancel.
	w.input.Close()

	select {
	case <-w.consumeDone:
	case <-ctx.Done():
		w.logger.Warn("history writer drain timed out")
	}

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("history writer stopped")
	case <-ctx.Done():
		w.logger.Warn("history writer stop timed out")
	}

	// Final flush
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *Writer) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// BufferStats returns input buffer statistics.
func (w *Writer) BufferStats() BufferStats {
	return w.input.Stats()
}

// consumeLoop reads rows from the input buffer and accumulates batches. It
// exits once the buffer is closed and drained.
func (w *Writer) consumeLoop() {
	defer w.wg.Done()
	defer close(w.consumeDone)

	for {
		row, ok := w.input.Receive()
		if !ok {
			return
		}
		w.handleRow(row)
	}
}

// flushLoop periodically flushes the batch.
func (w *Writer) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleRow adds a row to the batch, flushing when the batch is full.
func (w *Writer) handleRow(row availabilityRow) {
	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// flatten turns one published cycle into rows, ordered by item id so batch
// contents are deterministic.
func (w *Writer) flatten(update coordinator.Update) []availabilityRow {
	ids := make([]string, 0, len(update.Snapshot.Listings))
	for id := range update.Snapshot.Listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]availabilityRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, w.transform(update, id, update.Snapshot.Listings[id]))
	}
	return rows
}

// transform converts one listing to an availabilityRow.
func (w *Writer) transform(update coordinator.Update, itemID string, listing model.Listing) availabilityRow {
	row := availabilityRow{
		CycleID:        update.Cycle.String(),
		RefreshedAt:    update.At.UnixMicro(),
		InstanceID:     w.cfg.InstanceID,
		ItemID:         itemID,
		DisplayName:    listing.DisplayName,
		ItemsAvailable: unknownAvailability,
		SoldOutAt:      listing.SoldOutAt,
	}

	if listing.ItemsAvailable != nil {
		row.ItemsAvailable = *listing.ItemsAvailable
	}
	if listing.Item != nil && listing.Item.Price != nil {
		row.PriceMinorUnits = listing.Item.Price.MinorUnits
		row.PriceDecimals = listing.Item.Price.Decimals
		row.PriceCode = listing.Item.Price.Code
	}
	if listing.PickupInterval != nil {
		row.PickupStart = listing.PickupInterval.Start
		row.PickupEnd = listing.PickupInterval.End
	}

	return row
}

// flush writes the current batch to the database.
func (w *Writer) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]availabilityRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed availability rows",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *Writer) batchInsert(ctx context.Context, rows []availabilityRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO availability_history (cycle_id, refreshed_at, instance_id, item_id, display_name, items_available, price_minor_units, price_decimals, price_code, pickup_start, pickup_end, sold_out_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (item_id, cycle_id) DO NOTHING
		`, r.CycleID, r.RefreshedAt, r.InstanceID, r.ItemID, r.DisplayName, r.ItemsAvailable, r.PriceMinorUnits, r.PriceDecimals, r.PriceCode, r.PickupStart, r.PickupEnd, r.SoldOutAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
