package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// Storage keys. These match the browser client this layer replaced so a
// deployment can migrate persisted state without a translation step.
const (
	KeyToken              = "token"
	KeyUser               = "user"
	KeyCart               = "restaurant-cart"
	KeyOrders             = "restaurant-orders"
	KeyCurrentReservation = "currentReservation"
	KeyReservationHistory = "reservationHistory"
	KeyLatestOrder        = "latestOrder"
)

// getJSON loads and decodes the JSON document stored under key into
// dest. It returns false when the key is absent. A present-but-malformed
// document is an error; callers treat it as "no prior state" and log it.
func getJSON(ctx context.Context, store Store, key string, dest interface{}) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// setJSON encodes value and writes it under key.
func setJSON(ctx context.Context, store Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
