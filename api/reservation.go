package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dinehall/dinehall/core"
)

// tablesResponse is the admin backend's table list envelope.
type tablesResponse struct {
	Tables []core.Table `json:"tables"`
}

// Tables fetches the dining tables and their availability from the
// admin backend. Implements core.TableLister.
func (c *Client) Tables(ctx context.Context) ([]core.Table, error) {
	var resp tablesResponse
	err := c.do(ctx, "reservation.Tables", http.MethodGet, c.adminURL("/table"), "", nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

// reservationResponse is the customer backend's booking envelope.
type reservationResponse struct {
	Reservation core.Reservation `json:"reservation"`
}

// CreateReservation books a table on the customer backend. Implements
// core.ReservationBooker.
func (c *Client) CreateReservation(ctx context.Context, token string, req core.ReservationRequest) (core.Reservation, error) {
	var resp reservationResponse
	err := c.do(ctx, "reservation.Create", http.MethodPost, c.customerURL("/reservation"), token, req, &resp)
	if err != nil {
		return core.Reservation{}, err
	}
	return resp.Reservation, nil
}

// CancelReservation deletes a reservation on the customer backend.
func (c *Client) CancelReservation(ctx context.Context, token, reservationID string) error {
	path := "/reservation/" + url.PathEscape(reservationID)
	return c.do(ctx, "reservation.Cancel", http.MethodDelete, c.customerURL(path), token, nil, nil)
}

// SetTableCustomerStatus updates a table's customer-facing status on
// the admin backend, e.g. releasing it after a cancellation.
func (c *Client) SetTableCustomerStatus(ctx context.Context, tableID, status string) error {
	path := "/table/" + url.PathEscape(tableID) + "/customer-status"
	body := map[string]string{"status": status}
	return c.do(ctx, "reservation.SetTableStatus", http.MethodPatch, c.adminURL(path), "", body, nil)
}
