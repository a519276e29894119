package coordinator

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mkoopmans/tgtg-bridge/internal/tgtg"
)

// mockSource serves canned listings.
type mockSource struct {
	mu        sync.Mutex
	items     map[string]*tgtg.APIListing
	favorites []tgtg.APIListing
	itemErr   map[string]error
	favErr    error

	itemCalls atomic.Int32
	favCalls  atomic.Int32
}

func (m *mockSource) GetItem(ctx context.Context, itemID string) (*tgtg.APIListing, error) {
	m.itemCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.itemErr[itemID]; ok {
		return nil, err
	}
	listing, ok := m.items[itemID]
	if !ok {
		return nil, errors.New("no such item")
	}
	return listing, nil
}

func (m *mockSource) GetFavorites(ctx context.Context) ([]tgtg.APIListing, error) {
	m.favCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.favErr != nil {
		return nil, m.favErr
	}
	return m.favorites, nil
}

func (m *mockSource) setFavErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favErr = err
}

func apiListing(id, name string, available int) *tgtg.APIListing {
	return &tgtg.APIListing{
		Item:           &tgtg.APIItem{ItemID: id},
		DisplayName:    name,
		ItemsAvailable: &available,
	}
}

func TestCoordinator_RefreshExplicit(t *testing.T) {
	source := &mockSource{
		items: map[string]*tgtg.APIListing{
			"1001": apiListing("1001", "Bakery One", 3),
			"1002": apiListing("1002", "Cafe Two", 0),
		},
	}

	c := New(Config{Items: []string{"1001", "1002"}}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Listings) != 2 {
		t.Fatalf("len(Listings) = %d, want 2", len(snap.Listings))
	}

	bakery, ok := snap.Listings["1001"]
	if !ok {
		t.Fatal("listing 1001 missing from snapshot")
	}
	if bakery.DisplayName != "Bakery One" {
		t.Errorf("DisplayName = %q, want %q", bakery.DisplayName, "Bakery One")
	}
	if bakery.ItemsAvailable == nil || *bakery.ItemsAvailable != 3 {
		t.Errorf("ItemsAvailable = %v, want 3", bakery.ItemsAvailable)
	}

	cafe := snap.Listings["1002"]
	if cafe.ItemsAvailable == nil || *cafe.ItemsAvailable != 0 {
		t.Errorf("ItemsAvailable = %v, want explicit 0", cafe.ItemsAvailable)
	}
}

func TestCoordinator_RefreshExplicitKeyedByRequestedID(t *testing.T) {
	// The payload omits its own item id; the listing must still be
	// addressable under the id we asked for.
	source := &mockSource{
		items: map[string]*tgtg.APIListing{
			"1001": {DisplayName: "No Embedded ID"},
		},
	}

	c := New(Config{Items: []string{"1001"}}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	listing, ok := c.Listing("1001")
	if !ok {
		t.Fatal("listing not keyed under requested id")
	}
	if listing.DisplayName != "No Embedded ID" {
		t.Errorf("DisplayName = %q, want %q", listing.DisplayName, "No Embedded ID")
	}
}

func TestCoordinator_RefreshFavorites(t *testing.T) {
	available := 5
	source := &mockSource{
		favorites: []tgtg.APIListing{
			*apiListing("2001", "Fav One", 2),
			{DisplayName: "No Item Block", ItemsAvailable: &available},
			{Item: &tgtg.APIItem{}, DisplayName: "Empty Item ID"},
			*apiListing("2002", "Fav Two", 1),
		},
	}

	c := New(Config{}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Listings) != 2 {
		t.Fatalf("len(Listings) = %d, want 2 (unkeyable favorites skipped)", len(snap.Listings))
	}
	for _, id := range []string{"2001", "2002"} {
		if _, ok := snap.Listings[id]; !ok {
			t.Errorf("listing %s missing from snapshot", id)
		}
	}
}

func TestCoordinator_RefreshFailureKeepsSnapshot(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}

	source.setFavErr(errors.New("upstream down"))

	err := c.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error from failed refresh")
	}
	if !strings.Contains(err.Error(), "communicating with tgtg") {
		t.Errorf("err = %q, want wrapped communication error", err)
	}

	// The previous snapshot survives the failed cycle.
	snap := c.Snapshot()
	if len(snap.Listings) != 1 {
		t.Errorf("len(Listings) = %d, want 1 after failed refresh", len(snap.Listings))
	}

	st := c.Status()
	if st.LastError == nil {
		t.Error("Status.LastError = nil, want error")
	}
	if st.ConsecutiveFailures != 1 {
		t.Errorf("ConsecutiveFailures = %d, want 1", st.ConsecutiveFailures)
	}
	if st.Cycles != 2 {
		t.Errorf("Cycles = %d, want 2", st.Cycles)
	}
	if st.LastRefresh.IsZero() {
		t.Error("LastRefresh zeroed by failed cycle")
	}

	// A later success clears the failure streak.
	source.setFavErr(nil)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("recovery Refresh failed: %v", err)
	}
	st = c.Status()
	if st.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d after recovery, want 0", st.ConsecutiveFailures)
	}
	if st.LastError != nil {
		t.Errorf("LastError = %v after recovery, want nil", st.LastError)
	}
}

func TestCoordinator_ExplicitFailureFailsCycle(t *testing.T) {
	source := &mockSource{
		items: map[string]*tgtg.APIListing{
			"1001": apiListing("1001", "Bakery One", 3),
		},
		itemErr: map[string]error{
			"1002": errors.New("boom"),
		},
	}

	c := New(Config{Items: []string{"1001", "1002"}}, source, nil)

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error when one item fetch fails")
	}

	// Nothing partial is published.
	if snap := c.Snapshot(); snap.Listings != nil {
		t.Errorf("Listings = %v, want nil before any success", snap.Listings)
	}
}

func TestCoordinator_RefreshIdempotent(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{
			*apiListing("2001", "Fav One", 2),
			*apiListing("2002", "Fav Two", 0),
		},
	}

	c := New(Config{}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	first := c.Snapshot()

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	second := c.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("snapshots differ across identical fetches:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCoordinator_OrdersPlaceholder(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Snapshot()
	if snap.Orders == nil {
		t.Fatal("Orders = nil, want empty slice")
	}
	if len(snap.Orders) != 0 {
		t.Errorf("len(Orders) = %d, want 0", len(snap.Orders))
	}
}

func TestCoordinator_Updates(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	first := <-c.Updates()
	second := <-c.Updates()

	if first.Cycle == second.Cycle {
		t.Error("updates share a cycle id")
	}
	if len(first.Snapshot.Listings) != 1 {
		t.Errorf("len(Listings) = %d, want 1", len(first.Snapshot.Listings))
	}
	if first.At.IsZero() {
		t.Error("update At is zero")
	}
}

func TestCoordinator_UpdatesDropOldest(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)

	// Overflow the buffer without any consumer; Refresh must never block.
	for i := 0; i < UpdateBufferSize+4; i++ {
		if err := c.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh %d failed: %v", i, err)
		}
	}

	var last Update
	count := 0
drain:
	for {
		select {
		case u := <-c.Updates():
			last = u
			count++
		default:
			break drain
		}
	}

	if count != UpdateBufferSize {
		t.Errorf("buffered updates = %d, want %d", count, UpdateBufferSize)
	}

	// The newest update survives the overflow.
	st := c.Status()
	if !last.At.Equal(st.LastRefresh) {
		t.Errorf("last buffered update At = %v, want %v", last.At, st.LastRefresh)
	}
}

func TestCoordinator_StartStop(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{Interval: 50 * time.Millisecond}, source, nil)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The first refresh runs before Start returns.
	if snap := c.Snapshot(); len(snap.Listings) != 1 {
		t.Errorf("len(Listings) = %d immediately after Start, want 1", len(snap.Listings))
	}

	// Wait for at least one ticker cycle.
	time.Sleep(120 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := source.favCalls.Load(); got < 2 {
		t.Errorf("favCalls = %d, want >= 2", got)
	}
}

func TestCoordinator_StartSurvivesFailedFirstRefresh(t *testing.T) {
	source := &mockSource{}
	source.setFavErr(errors.New("upstream down"))

	c := New(Config{Interval: time.Hour}, source, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start returned %v, want nil despite failed first refresh", err)
	}

	if snap := c.Snapshot(); snap.Listings != nil {
		t.Errorf("Listings = %v, want nil", snap.Listings)
	}
	if st := c.Status(); st.ConsecutiveFailures != 1 {
		t.Errorf("ConsecutiveFailures = %d, want 1", st.ConsecutiveFailures)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestCoordinator_StatusMode(t *testing.T) {
	explicit := New(Config{Items: []string{"1001"}}, &mockSource{}, nil)
	if got := explicit.Status().Mode; got != "explicit" {
		t.Errorf("Mode = %q, want %q", got, "explicit")
	}

	favorites := New(Config{}, &mockSource{}, nil)
	if got := favorites.Status().Mode; got != "favorites" {
		t.Errorf("Mode = %q, want %q", got, "favorites")
	}
}

func TestCoordinator_SnapshotIsolated(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	snap := c.Snapshot()
	delete(snap.Listings, "2001")

	if again := c.Snapshot(); len(again.Listings) != 1 {
		t.Error("mutating a returned snapshot affected coordinator state")
	}
}

func TestCoordinator_Listing(t *testing.T) {
	source := &mockSource{
		favorites: []tgtg.APIListing{*apiListing("2001", "Fav One", 2)},
	}

	c := New(Config{}, source, nil)
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if _, ok := c.Listing("2001"); !ok {
		t.Error("Listing(2001) not found")
	}
	if _, ok := c.Listing("9999"); ok {
		t.Error("Listing(9999) found, want miss")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Interval != 30*time.Minute {
		t.Errorf("Interval = %v, want 30m", cfg.Interval)
	}
	if len(cfg.Items) != 0 {
		t.Errorf("Items = %v, want empty", cfg.Items)
	}
}
