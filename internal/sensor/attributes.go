package sensor

const itemURLBase = "https://share.toogoodtogo.com/item/"

// Attribute keys exposed by Sensor.Attributes.
const (
	AttrItemID               = "item_id"
	AttrItemURL              = "item_url"
	AttrPrice                = "item_price"
	AttrValue                = "original_value"
	AttrPickupStart          = "pickup_start"
	AttrPickupEnd            = "pickup_end"
	AttrSoldoutTimestamp     = "soldout_timestamp"
	AttrOrdersPlaced         = "orders_placed"
	AttrTotalQuantityOrdered = "total_quantity_ordered"
	AttrPickupWindowChanged  = "pickup_window_changed"
	AttrCancelUntil          = "cancel_until"
	AttrLogoURL              = "logo_url"
	AttrCoverURL             = "cover_url"
)

// Attributes derives the auxiliary attribute map from the current snapshot.
// Every field is guarded independently; a missing nested field skips that one
// attribute and never aborts the rest. A listing absent from the snapshot
// yields an empty map.
//
// The map is built fresh on every call, so callers may modify it.
func (s *Sensor) Attributes() map[string]any {
	attrs := make(map[string]any)

	snap := s.provider.Snapshot()
	listing, ok := snap.Listings[s.itemID]
	if !ok {
		return attrs
	}

	if item := listing.Item; item != nil {
		if item.ItemID != "" {
			attrs[AttrItemID] = item.ItemID
			attrs[AttrItemURL] = itemURLBase + item.ItemID
		}
		if item.Price != nil {
			attrs[AttrPrice] = item.Price.Format()
		}
		if item.Value != nil {
			attrs[AttrValue] = item.Value.Format()
		}
		if item.LogoPicture != nil {
			attrs[AttrLogoURL] = item.LogoPicture.CurrentURL
		}
		if item.CoverPicture != nil {
			attrs[AttrCoverURL] = item.CoverPicture.CurrentURL
		}
	}

	if window := listing.PickupInterval; window != nil {
		if window.Start != "" {
			attrs[AttrPickupStart] = window.Start
		}
		if window.End != "" {
			attrs[AttrPickupEnd] = window.End
		}
	}
	if listing.SoldOutAt != "" {
		attrs[AttrSoldoutTimestamp] = listing.SoldOutAt
	}

	// Orders pass: count and sum every order for this listing. The window
	// fields take the value of the last matching order.
	ordersPlaced := 0
	totalQuantity := 0
	for _, order := range snap.Orders {
		if order.ItemID != s.itemID {
			continue
		}
		ordersPlaced++
		totalQuantity += order.Quantity
		if order.PickupWindowChanged != "" {
			attrs[AttrPickupWindowChanged] = order.PickupWindowChanged
		}
		if order.CancelUntil != "" {
			attrs[AttrCancelUntil] = order.CancelUntil
		}
	}
	attrs[AttrOrdersPlaced] = ordersPlaced
	if totalQuantity > 0 {
		attrs[AttrTotalQuantityOrdered] = totalQuantity
	}

	return attrs
}
