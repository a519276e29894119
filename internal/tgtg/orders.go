package tgtg

import (
	"context"
	"fmt"
)

const activeOrderPath = "/order/v6/active"

type activeOrdersRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// GetActiveOrders fetches the active orders for the account.
func (c *Client) GetActiveOrders(ctx context.Context) ([]APIOrder, error) {
	var resp ActiveOrdersResponse
	if err := c.post(ctx, activeOrderPath, activeOrdersRequest{UserID: c.userID}, &resp); err != nil {
		return nil, fmt.Errorf("get active orders: %w", err)
	}
	return resp.Orders, nil
}
