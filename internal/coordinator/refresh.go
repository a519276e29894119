package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mkoopmans/tgtg-bridge/internal/model"
	"github.com/mkoopmans/tgtg-bridge/internal/tgtg"
)

// fetchConcurrency bounds parallel item requests in explicit mode.
const fetchConcurrency = 4

// Refresh runs one refresh cycle: fetch the tracked listings, normalize them
// into a snapshot, and publish it. On failure the previous snapshot is kept
// and the error is recorded.
func (c *Coordinator) Refresh(ctx context.Context) error {
	cycle := uuid.New()
	start := time.Now()

	listings, err := c.fetchListings(ctx)
	if err != nil {
		wrapped := fmt.Errorf("communicating with tgtg: %w", err)
		failures := c.state.recordFailure(wrapped)
		c.logger.Error("refresh cycle failed",
			"cycle", cycle,
			"consecutive_failures", failures,
			"err", err)
		return wrapped
	}

	update := Update{
		Cycle: cycle,
		At:    time.Now(),
		Snapshot: model.Snapshot{
			Listings: listings,
			// Order data comes from the order endpoints on demand, not
			// the refresh cycle. Publish an empty placeholder so
			// consumers can range without nil checks.
			Orders: []model.Order{},
		},
	}
	c.state.publish(update)

	c.logger.Info("refresh cycle complete",
		"cycle", cycle,
		"listings", len(listings),
		"duration", time.Since(start))
	return nil
}

func (c *Coordinator) fetchListings(ctx context.Context) (map[string]model.Listing, error) {
	if len(c.cfg.Items) > 0 {
		return c.fetchExplicit(ctx)
	}
	return c.fetchFavorites(ctx)
}

// fetchExplicit fetches each configured item ID concurrently. Results are
// keyed by the requested ID so a listing stays addressable even when the
// payload omits its own identifier. Any failed fetch fails the whole cycle.
func (c *Coordinator) fetchExplicit(ctx context.Context) (map[string]model.Listing, error) {
	results := make([]*tgtg.APIListing, len(c.cfg.Items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, itemID := range c.cfg.Items {
		i, itemID := i, itemID
		g.Go(func() error {
			listing, err := c.client.GetItem(ctx, itemID)
			if err != nil {
				return err
			}
			results[i] = listing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	listings := make(map[string]model.Listing, len(results))
	for i, listing := range results {
		listings[c.cfg.Items[i]] = listing.ToModel()
	}
	return listings, nil
}

// fetchFavorites fetches the account's favorite listings, keyed by the item
// ID embedded in each payload. Entries without an ID cannot be addressed and
// are skipped.
func (c *Coordinator) fetchFavorites(ctx context.Context) (map[string]model.Listing, error) {
	favorites, err := c.client.GetFavorites(ctx)
	if err != nil {
		return nil, err
	}

	listings := make(map[string]model.Listing, len(favorites))
	for i := range favorites {
		fav := &favorites[i]
		if fav.Item == nil || fav.Item.ItemID == "" {
			c.logger.Warn("skipping favorite without item id",
				"display_name", fav.DisplayName)
			continue
		}
		listings[fav.Item.ItemID] = fav.ToModel()
	}
	return listings, nil
}
