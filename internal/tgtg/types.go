package tgtg

// APIPrice represents a monetary amount from the TGTG API.
type APIPrice struct {
	Code       string `json:"code"`
	MinorUnits int    `json:"minor_units"`
	Decimals   int    `json:"decimals"`
}

// APIPicture represents an image from the TGTG API.
type APIPicture struct {
	PictureID  string `json:"picture_id"`
	CurrentURL string `json:"current_url"`
}

// APIInterval represents a pickup window from the TGTG API.
type APIInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// APIItem is the store item nested inside a listing.
type APIItem struct {
	ItemID       string      `json:"item_id"`
	ItemPrice    *APIPrice   `json:"item_price"`
	ItemValue    *APIPrice   `json:"item_value"`
	LogoPicture  *APIPicture `json:"logo_picture"`
	CoverPicture *APIPicture `json:"cover_picture"`
}

// APIListing represents one listing from POST /item/v8/{item_id} and from the
// favorites listing. Optional fields stay nil when the payload omits them;
// items_available distinguishes an explicit 0 (sold out) from absent.
type APIListing struct {
	Item           *APIItem     `json:"item"`
	DisplayName    string       `json:"display_name"`
	PickupInterval *APIInterval `json:"pickup_interval"`
	ItemsAvailable *int         `json:"items_available"`
	SoldOutAt      string       `json:"sold_out_at"`
	Distance       float64      `json:"distance"`
	Favorite       bool         `json:"favorite"`
	InSalesWindow  bool         `json:"in_sales_window"`
}

// ItemsResponse from POST /item/v8/ (favorites listing).
type ItemsResponse struct {
	Items []APIListing `json:"items"`
}

// APIOrder represents an active order from the TGTG API.
type APIOrder struct {
	OrderID             string `json:"order_id"`
	ItemID              string `json:"item_id"`
	Quantity            int    `json:"quantity"`
	State               string `json:"state"`
	PickupWindowChanged string `json:"pickup_window_changed"`
	CancelUntil         string `json:"cancel_until"`
}

// ActiveOrdersResponse from POST /order/v6/active.
type ActiveOrdersResponse struct {
	HasMore bool       `json:"has_more"`
	Orders  []APIOrder `json:"orders"`
}
