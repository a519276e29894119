package sensor

import (
	"sort"

	"github.com/mkoopmans/tgtg-bridge/internal/model"
)

const (
	// Icon is the Material Design icon identifier for listing sensors.
	Icon = "mdi:storefront-outline"

	// Unit is the unit of measurement for the availability count.
	Unit = "pcs"

	namePrefix     = "TGTG "
	uniqueIDPrefix = "tgtg_"
)

// SnapshotProvider supplies the current listing snapshot. *coordinator.Coordinator
// satisfies this.
type SnapshotProvider interface {
	Snapshot() model.Snapshot
	Listing(itemID string) (model.Listing, bool)
}

// Sensor exposes one listing as a numeric entity with attributes. It holds no
// listing data of its own; every read is a projection of the provider's
// current snapshot, so sensors never observe a half-written refresh.
type Sensor struct {
	provider SnapshotProvider
	itemID   string
	name     string
}

// New builds a sensor bound to itemID. The display name is captured once,
// here; a listing renamed upstream keeps the name it had at construction.
// When the listing or its display name is missing the item id stands in.
func New(provider SnapshotProvider, itemID string) *Sensor {
	name := itemID
	if listing, ok := provider.Listing(itemID); ok && listing.DisplayName != "" {
		name = listing.DisplayName
	}

	return &Sensor{
		provider: provider,
		itemID:   itemID,
		name:     namePrefix + name,
	}
}

// BuildAll creates one sensor per listing in the provider's current snapshot,
// ordered by item id.
func BuildAll(provider SnapshotProvider) []*Sensor {
	snap := provider.Snapshot()

	ids := make([]string, 0, len(snap.Listings))
	for id := range snap.Listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sensors := make([]*Sensor, 0, len(ids))
	for _, id := range ids {
		sensors = append(sensors, New(provider, id))
	}
	return sensors
}

// ItemID returns the listing id this sensor is bound to.
func (s *Sensor) ItemID() string {
	return s.itemID
}

// UniqueID returns the stable entity identifier.
func (s *Sensor) UniqueID() string {
	return uniqueIDPrefix + s.itemID
}

// Name returns the display name captured at construction.
func (s *Sensor) Name() string {
	return s.name
}

// Icon returns the entity icon identifier.
func (s *Sensor) Icon() string {
	return Icon
}

// Unit returns the unit of measurement.
func (s *Sensor) Unit() string {
	return Unit
}

// State returns the current availability count. ok is false when the listing
// or its availability field is absent from the snapshot.
func (s *Sensor) State() (state int, ok bool) {
	listing, ok := s.provider.Listing(s.itemID)
	if !ok || listing.ItemsAvailable == nil {
		return 0, false
	}
	return *listing.ItemsAvailable, true
}
