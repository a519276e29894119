package model

import (
	"math"
	"strconv"
)

// -----------------------------------------------------------------------------
// Listing Types
// -----------------------------------------------------------------------------

// Price represents a monetary amount in minor units (e.g., cents).
type Price struct {
	MinorUnits int    // Amount in minor units (e.g., 250)
	Decimals   int    // Number of decimal places (e.g., 2)
	Code       string // ISO 4217 currency code (e.g., "EUR")
}

// Format renders the price as "<amount> <code>" with no trailing zeros,
// e.g. {MinorUnits: 250, Decimals: 2, Code: "EUR"} formats as "2.5 EUR".
func (p Price) Format() string {
	amount := float64(p.MinorUnits) / math.Pow10(p.Decimals)
	return strconv.FormatFloat(amount, 'f', -1, 64) + " " + p.Code
}

// Picture represents an image attached to an item.
type Picture struct {
	CurrentURL string // URL of the current rendition
}

// PickupWindow represents the collection interval of a listing.
type PickupWindow struct {
	Start string // Window start (RFC 3339, as reported upstream)
	End   string // Window end (RFC 3339, as reported upstream)
}

// Item represents the store-item details nested inside a listing.
// Pointer fields are nil when the upstream payload omits them.
type Item struct {
	ItemID       string   // Primary key (e.g., "42")
	Price        *Price   // Current sale price
	Value        *Price   // Original (pre-discount) value
	LogoPicture  *Picture // Store logo
	CoverPicture *Picture // Cover photo
}

// Listing represents one surplus-food listing as seen at the last refresh.
// Pointer fields are nil and string fields empty when absent upstream; absence
// is a value, not an error.
type Listing struct {
	Item           *Item         // Nested item details
	DisplayName    string        // Store display name (e.g., "Bakery X")
	PickupInterval *PickupWindow // Collection window
	SoldOutAt      string        // Sold-out timestamp (RFC 3339), empty if not sold out
	ItemsAvailable *int          // Current availability; nil = unknown
}

// -----------------------------------------------------------------------------
// Account Types
// -----------------------------------------------------------------------------

// Order represents an active order on the account.
type Order struct {
	ItemID              string // Item the order was placed against
	Quantity            int    // Number of portions ordered
	PickupWindowChanged string // Set when the store moved the pickup window
	CancelUntil         string // Deadline for free cancellation (RFC 3339)
}

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// Snapshot is the immutable result of one refresh cycle: every resolved
// listing keyed by item ID, plus the account orders placeholder. Consumers
// must treat it as read-only; each cycle publishes a fresh one wholesale.
//
// The zero value (nil map, nil slice) is valid and means "never refreshed".
type Snapshot struct {
	Listings map[string]Listing // Resolved listings keyed by item ID
	Orders   []Order            // Active orders; empty placeholder, never live-fetched
}
