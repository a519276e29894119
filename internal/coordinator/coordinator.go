package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkoopmans/tgtg-bridge/internal/model"
	"github.com/mkoopmans/tgtg-bridge/internal/tgtg"
)

// UpdateBufferSize is the capacity of the Update channel.
const UpdateBufferSize = 16

// ListingSource provides listings from the TGTG API.
type ListingSource interface {
	GetItem(ctx context.Context, itemID string) (*tgtg.APIListing, error)
	GetFavorites(ctx context.Context) ([]tgtg.APIListing, error)
}

// Config holds coordinator configuration.
type Config struct {
	Items    []string      // Explicit item IDs; empty means poll favorites
	Interval time.Duration // Refresh interval (default: 30m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Minute,
	}
}

// Update is published after every successful refresh cycle.
type Update struct {
	Cycle    uuid.UUID      // Cycle identifier, for log and sink correlation
	At       time.Time      // When the snapshot was published
	Snapshot model.Snapshot // The newly published snapshot
}

// Status is a point-in-time view of coordinator health.
type Status struct {
	Mode                string    // "explicit" or "favorites"
	Cycles              uint64    // Completed refresh attempts, failed included
	ListingCount        int       // Listings in the current snapshot
	LastRefresh         time.Time // Last successful refresh; zero if none yet
	LastError           error     // Error from the last cycle; nil after success
	ConsecutiveFailures int       // Failed cycles since the last success
}

// Coordinator periodically refreshes listing data and publishes snapshots.
type Coordinator struct {
	cfg    Config
	client ListingSource
	logger *slog.Logger

	state *coordinatorState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Coordinator.
func New(cfg Config, client ListingSource, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}

	return &Coordinator{
		cfg:    cfg,
		client: client,
		logger: logger,
		state:  newState(),
	}
}

// Start runs the first refresh synchronously so callers can build sensors
// from a populated snapshot, then begins the interval loop. A failed first
// refresh is logged, not fatal; the loop keeps trying and sensors report
// unknown state until a cycle succeeds.
func (c *Coordinator) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	if err := c.refreshCycle(); err != nil {
		c.logger.Warn("initial refresh failed, continuing with empty snapshot", "err", err)
	}

	c.wg.Add(1)
	go c.run()

	c.logger.Info("coordinator started",
		"mode", c.mode(),
		"items", len(c.cfg.Items),
		"interval", c.cfg.Interval,
	)

	return nil
}

// Stop gracefully shuts down the coordinator.
func (c *Coordinator) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current snapshot. The zero-value Snapshot
// means no cycle has succeeded yet.
func (c *Coordinator) Snapshot() model.Snapshot {
	return c.state.current()
}

// Listing returns a single listing from the current snapshot.
func (c *Coordinator) Listing(itemID string) (model.Listing, bool) {
	return c.state.getListing(itemID)
}

// Updates returns the channel of published snapshots. Sends never block;
// when the buffer is full the oldest update is dropped.
func (c *Coordinator) Updates() <-chan Update {
	return c.state.updates
}

// Status returns current coordinator health.
func (c *Coordinator) Status() Status {
	st := c.state.status()
	st.Mode = c.mode()
	return st
}

// mode reports the selection policy derived from configuration.
func (c *Coordinator) mode() string {
	if len(c.cfg.Items) > 0 {
		return "explicit"
	}
	return "favorites"
}

// run is the main refresh loop.
func (c *Coordinator) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.refreshCycle()
		}
	}
}

// refreshCycle runs one Refresh bounded by the interval, so a wedged fetch
// cannot outlive its own cycle slot.
func (c *Coordinator) refreshCycle() error {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.Interval)
	defer cancel()

	return c.Refresh(ctx)
}
