package tgtg

import (
	"context"
	"fmt"
)

const itemPath = "/item/v8/"

// Favorites paging parameters, matching the app defaults.
const (
	favoritesPageSize = 100
	favoritesRadius   = 21
)

type origin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type itemRequest struct {
	UserID string  `json:"user_id,omitempty"`
	Origin *origin `json:"origin"`
}

type favoritesRequest struct {
	UserID        string `json:"user_id,omitempty"`
	Origin        origin `json:"origin"`
	Radius        int    `json:"radius"`
	PageSize      int    `json:"page_size"`
	Page          int    `json:"page"`
	Discover      bool   `json:"discover"`
	FavoritesOnly bool   `json:"favorites_only"`
	WithStockOnly bool   `json:"with_stock_only"`
	HiddenOnly    bool   `json:"hidden_only"`
	WeCareOnly    bool   `json:"we_care_only"`
}

// GetItem fetches a single listing by item ID.
func (c *Client) GetItem(ctx context.Context, itemID string) (*APIListing, error) {
	var listing APIListing
	if err := c.post(ctx, itemPath+itemID, itemRequest{UserID: c.userID}, &listing); err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return &listing, nil
}

// GetFavorites fetches all favorited listings by paginating until a short
// page.
func (c *Client) GetFavorites(ctx context.Context) ([]APIListing, error) {
	var all []APIListing

	for page := 1; ; page++ {
		req := favoritesRequest{
			UserID:        c.userID,
			Radius:        favoritesRadius,
			PageSize:      favoritesPageSize,
			Page:          page,
			FavoritesOnly: true,
		}

		var resp ItemsResponse
		if err := c.post(ctx, itemPath, req, &resp); err != nil {
			return nil, fmt.Errorf("get favorites page %d: %w", page, err)
		}

		all = append(all, resp.Items...)

		if len(resp.Items) < favoritesPageSize {
			break
		}
	}

	return all, nil
}
