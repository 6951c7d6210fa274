package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dinehall/dinehall/core"
)

// submitOrderResponse is the admin backend's order-creation envelope.
type submitOrderResponse struct {
	Success bool            `json:"success"`
	Order   json.RawMessage `json:"order"`
}

// SubmitOrder pushes a placed order to the admin backend so it shows up
// on the kitchen feed. Implements core.OrderSubmitter.
func (c *Client) SubmitOrder(ctx context.Context, order core.AdminOrder) error {
	var resp submitOrderResponse
	err := c.do(ctx, "orders.Submit", http.MethodPost, c.adminURL("/orders"), "", order, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &core.ClientError{
			Op:      "orders.Submit",
			Kind:    "api",
			Message: "admin backend rejected the order",
			Err:     core.ErrRequestFailed,
		}
	}
	return nil
}

// PlaceOrder submits an order to the customer backend.
func (c *Client) PlaceOrder(ctx context.Context, token string, order core.AdminOrder) error {
	return c.do(ctx, "orders.Place", http.MethodPost, c.customerURL("/orders"), token, order, nil)
}

// Orders lists the customer's orders from the customer backend.
func (c *Client) Orders(ctx context.Context, token string) ([]core.Order, error) {
	var orders []core.Order
	err := c.do(ctx, "orders.List", http.MethodGet, c.customerURL("/orders"), token, nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// LatestOrder fetches the customer's most recent order.
func (c *Client) LatestOrder(ctx context.Context, token string) (core.Order, error) {
	var order core.Order
	err := c.do(ctx, "orders.Latest", http.MethodGet, c.customerURL("/orders/latest"), token, nil, &order)
	return order, err
}

// CancelOrder cancels an order on the customer backend.
func (c *Client) CancelOrder(ctx context.Context, token, orderID string) error {
	path := "/orders/cancel/" + url.PathEscape(orderID)
	return c.do(ctx, "orders.Cancel", http.MethodPut, c.customerURL(path), token, nil, nil)
}

// Me fetches the customer profile behind the token.
func (c *Client) Me(ctx context.Context, token string) (core.Customer, error) {
	var user core.Customer
	err := c.do(ctx, "user.Me", http.MethodGet, c.adminURL("/user/me"), token, nil, &user)
	return user, err
}
