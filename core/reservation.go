package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Table is a dining table as reported by the admin backend. It is
// read-only here: fetched during the booking wizard's table step and
// never persisted by this layer.
type Table struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	TableNumber     int    `json:"table_number"`
	SeatingCapacity int    `json:"seating_capacity"`
	Status          string `json:"status"`
}

// TableStatusAvailable is the only status a customer may select.
const TableStatusAvailable = "Available"

// Available reports whether the table can be booked. The backends are
// not consistent about casing, so the comparison is case-insensitive.
func (t Table) Available() bool {
	return strings.EqualFold(t.Status, TableStatusAvailable) || t.Status == ""
}

// DisplayLabel returns the label shown on the table card.
func (t Table) DisplayLabel() string {
	if t.Label != "" {
		return t.Label
	}
	return fmt.Sprintf("T%d", t.TableNumber)
}

// Reservation is a booked table slot. Date is an ISO date ("2006-01-02")
// and Time a 24-hour "15:04" string; the pair is interpreted in the
// viewer's local timezone.
type Reservation struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	TableID         string `json:"table_id"`
	TableLabel      string `json:"label,omitempty"`
	SeatingCapacity int    `json:"seating_capacity,omitempty"`
	Status          string `json:"status,omitempty"`
}

// TimeParts is the non-negative breakdown of the span between now and a
// reservation. Total is the raw difference; callers detect an already
// passed reservation via Total <= 0.
type TimeParts struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Total   time.Duration
}

// UpcomingPolicy classifies a reservation as one whose details should
// still be shown. The policy is swappable because product intent here is
// undecided: the shipped behavior shows any reservation that exists,
// while UpcomingByDate is the date-aware candidate replacement.
type UpcomingPolicy func(r *Reservation, now time.Time) bool

// AlwaysUpcoming is the shipped policy: any existing reservation counts.
func AlwaysUpcoming(r *Reservation, now time.Time) bool {
	return r != nil
}

// UpcomingByDate counts a reservation whose date is today or later.
func UpcomingByDate(r *Reservation, now time.Time) bool {
	if r == nil {
		return false
	}
	day, err := time.ParseInLocation("2006-01-02", r.Date, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today)
}

// Reservations owns the active reservation plus an append-only history,
// deduplicated by id and ordered most recent first. The current slot
// and the history are persisted independently.
type Reservations struct {
	mu       sync.Mutex
	current  *Reservation
	history  []Reservation
	store    Store
	logger   Logger
	clock    Clock
	upcoming UpcomingPolicy
}

// NewReservations creates the container and hydrates it from the store.
func NewReservations(ctx context.Context, store Store, logger Logger, clock Clock) *Reservations {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if clock == nil {
		clock = SystemClock
	}
	r := &Reservations{
		store:    store,
		logger:   logger,
		clock:    clock,
		upcoming: AlwaysUpcoming,
	}
	r.Load(ctx)
	return r
}

// SetUpcomingPolicy swaps the classification policy.
func (r *Reservations) SetUpcomingPolicy(p UpcomingPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p != nil {
		r.upcoming = p
	}
}

// Save makes data the current reservation and adds it to the front of
// the history unless an entry with the same id already exists. Saving
// the same id twice therefore refreshes the current slot without
// duplicating history.
func (r *Reservations) Save(ctx context.Context, data Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := data
	r.current = &current

	exists := false
	for _, h := range r.history {
		if h.ID == data.ID {
			exists = true
			break
		}
	}
	if !exists {
		r.history = append([]Reservation{data}, r.history...)
	}

	if err := setJSON(ctx, r.store, KeyCurrentReservation, data); err != nil {
		r.logger.Error("Failed to persist current reservation", map[string]interface{}{
			"key":   KeyCurrentReservation,
			"error": err.Error(),
		})
	}
	r.persistHistory(ctx)
}

// Clear drops the current reservation and removes its persisted slot.
// The history is retained.
func (r *Reservations) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	if err := r.store.Delete(ctx, KeyCurrentReservation); err != nil {
		r.logger.Error("Failed to clear current reservation", map[string]interface{}{
			"key":   KeyCurrentReservation,
			"error": err.Error(),
		})
	}
}

// Load hydrates the current slot and the history from the store. It is
// idempotent; a malformed slot is logged and leaves the corresponding
// field at its prior value.
func (r *Reservations) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current Reservation
	found, err := getJSON(ctx, r.store, KeyCurrentReservation, &current)
	if err != nil {
		r.logger.Warn("Discarding unreadable current reservation", map[string]interface{}{
			"key":   KeyCurrentReservation,
			"error": err.Error(),
		})
	} else if found {
		r.current = &current
	}

	var history []Reservation
	found, err = getJSON(ctx, r.store, KeyReservationHistory, &history)
	if err != nil {
		r.logger.Warn("Discarding unreadable reservation history", map[string]interface{}{
			"key":   KeyReservationHistory,
			"error": err.Error(),
		})
	} else if found {
		r.history = history
	}
}

// Current returns the active reservation, when one exists.
func (r *Reservations) Current() (Reservation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Reservation{}, false
	}
	return *r.current, true
}

// History returns a copy of the reservation history, most recent first.
func (r *Reservations) History() []Reservation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Reservation, len(r.history))
	copy(out, r.history)
	return out
}

// TimeUntil reports how far away the reservation is from now.
func (r *Reservations) TimeUntil(res Reservation) (TimeParts, error) {
	return TimeUntil(res, r.clock())
}

// IsUpcoming applies the configured classification policy to the
// reservation.
func (r *Reservations) IsUpcoming(res *Reservation) bool {
	r.mu.Lock()
	policy := r.upcoming
	r.mu.Unlock()
	return policy(res, r.clock())
}

func (r *Reservations) persistHistory(ctx context.Context) {
	history := r.history
	if history == nil {
		history = []Reservation{}
	}
	if err := setJSON(ctx, r.store, KeyReservationHistory, history); err != nil {
		r.logger.Error("Failed to persist reservation history", map[string]interface{}{
			"key":   KeyReservationHistory,
			"error": err.Error(),
		})
	}
}

// ReservationInstant combines the reservation's date and time strings
// into a single instant in the local timezone.
func ReservationInstant(res Reservation, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02 15:04", res.Date+" "+res.Time, loc)
}

// TimeUntil is the pure countdown computation: the breakdown of the
// span between now and the reservation instant. Once the instant has
// passed it returns the zero breakdown, whose Total of 0 also serves as
// the "already passed" signal.
func TimeUntil(res Reservation, now time.Time) (TimeParts, error) {
	at, err := ReservationInstant(res, now.Location())
	if err != nil {
		return TimeParts{}, fmt.Errorf("invalid reservation date/time %q %q: %w", res.Date, res.Time, err)
	}

	diff := at.Sub(now)
	if diff <= 0 {
		return TimeParts{}, nil
	}
	return TimeParts{
		Days:    int(diff / (24 * time.Hour)),
		Hours:   int(diff/time.Hour) % 24,
		Minutes: int(diff/time.Minute) % 60,
		Seconds: int(diff/time.Second) % 60,
		Total:   diff,
	}, nil
}

// FormatReservationDate renders an ISO date as a long display date,
// e.g. "Monday, January 2, 2006". Bad input is returned as-is.
func FormatReservationDate(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// FormatReservationTime renders a 24-hour "15:04" string as a 12-hour
// display time, e.g. "7:30 PM". Bad input is returned as-is.
func FormatReservationTime(t string) string {
	parsed, err := time.Parse("15:04", t)
	if err != nil {
		return t
	}
	return parsed.Format("3:04 PM")
}
