package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// TableLister fetches the table list from the admin backend.
type TableLister interface {
	Tables(ctx context.Context) ([]Table, error)
}

// ReservationRequest is the booking submission payload.
type ReservationRequest struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	TableID string `json:"table_id"`
}

// ReservationBooker submits a booking to the customer backend.
type ReservationBooker interface {
	CreateReservation(ctx context.Context, token string, req ReservationRequest) (Reservation, error)
}

// BookingStep is the wizard's position.
type BookingStep int

const (
	StepDate BookingStep = iota + 1
	StepTime
	StepTable
	StepDone
)

func (s BookingStep) String() string {
	switch s {
	case StepDate:
		return "date"
	case StepTime:
		return "time"
	case StepTable:
		return "table"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// NoticeKind classifies a user-visible wizard message.
type NoticeKind string

const (
	NoticeValidation NoticeKind = "validation"
	NoticeAuth       NoticeKind = "auth"
	NoticeRemote     NoticeKind = "remote"
	NoticeSuccess    NoticeKind = "success"
)

// Notice is a transient user-visible message.
type Notice struct {
	Text string
	Kind NoticeKind
}

// BookingFlow is the three-step reservation wizard: pick a date, pick a
// time, pick an available table, submit. It queries tables through a
// TableLister when leaving the time step and submits through a
// ReservationBooker; a successful booking is handed to the Reservations
// container and the flow closes (no way back to earlier steps).
//
// Messages auto-clear: Notice() stops returning a message once its TTL
// elapses, so display code polls instead of scheduling timers.
type BookingFlow struct {
	mu        sync.Mutex
	step      BookingStep
	date      string
	timeOfDay string
	tables    []Table
	selected  string

	notice        *Notice
	noticeExpires time.Time
	noticeTTL     time.Duration

	lister       TableLister
	booker       ReservationBooker
	reservations *Reservations
	session      *Session
	clock        Clock
	logger       Logger
}

// BookingFlowOptions configures a BookingFlow.
type BookingFlowOptions struct {
	Tables       TableLister
	Booker       ReservationBooker
	Reservations *Reservations
	Session      *Session
	Clock        Clock         // Optional, defaults to the system clock
	Logger       Logger        // Optional
	NoticeTTL    time.Duration // Optional, defaults to 4s
}

// NewBookingFlow creates a wizard positioned at the date step.
func NewBookingFlow(opts BookingFlowOptions) *BookingFlow {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = &NoOpLogger{}
	}
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = 4 * time.Second
	}
	return &BookingFlow{
		step:         StepDate,
		lister:       opts.Tables,
		booker:       opts.Booker,
		reservations: opts.Reservations,
		session:      opts.Session,
		clock:        opts.Clock,
		logger:       opts.Logger,
		noticeTTL:    opts.NoticeTTL,
	}
}

// Step returns the wizard's current position.
func (f *BookingFlow) Step() BookingStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SetDate records the chosen date ("2006-01-02").
func (f *BookingFlow) SetDate(date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.date = date
}

// SetTime records the chosen time ("15:04").
func (f *BookingFlow) SetTime(t string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeOfDay = t
}

// ConfirmDate advances to the time step. An empty date posts a
// validation notice and stays put.
func (f *BookingFlow) ConfirmDate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDate {
		return false
	}
	if f.date == "" {
		f.post(Notice{Text: "Please select a date", Kind: NoticeValidation})
		return false
	}
	f.step = StepTime
	return true
}

// ConfirmTime fetches the table list and advances to the table step.
// An empty time posts a validation notice; a fetch failure posts a
// remote notice and keeps the wizard on the time step so the user can
// retry.
func (f *BookingFlow) ConfirmTime(ctx context.Context) bool {
	f.mu.Lock()
	if f.step != StepTime {
		f.mu.Unlock()
		return false
	}
	if f.timeOfDay == "" {
		f.post(Notice{Text: "Please select a time", Kind: NoticeValidation})
		f.mu.Unlock()
		return false
	}
	lister := f.lister
	f.mu.Unlock()

	tables, err := lister.Tables(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.logger.Warn("Table fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		f.post(Notice{Text: "Failed to load tables. Please try again.", Kind: NoticeRemote})
		return false
	}
	f.tables = tables
	f.step = StepTable
	return true
}

// Tables returns the fetched table list for display. Non-available
// tables are included; they render but cannot be selected.
func (f *BookingFlow) Tables() []Table {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Table, len(f.tables))
	copy(out, f.tables)
	return out
}

// SelectTable picks the table to book. Only a fetched table whose
// status is Available may be selected.
func (f *BookingFlow) SelectTable(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tables {
		if t.ID == id {
			if !t.Available() {
				return fmt.Errorf("%w: %s is %s", ErrTableUnavailable, t.DisplayLabel(), t.Status)
			}
			f.selected = id
			return nil
		}
	}
	return &ClientError{Op: "booking.SelectTable", Kind: "booking", ID: id, Err: ErrTableUnavailable}
}

// SelectedTable returns the chosen table id, empty when none.
func (f *BookingFlow) SelectedTable() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Submit books the selected table. Every required piece (date, time,
// table, auth token) is validated before any remote call; a missing
// token gets its own message so the user knows to log in rather than
// retry. A rejected submission keeps the wizard on the table step.
// Success hands the reservation to the Reservations container and
// closes the flow.
func (f *BookingFlow) Submit(ctx context.Context) (Reservation, error) {
	f.mu.Lock()
	if f.step == StepDone {
		f.mu.Unlock()
		return Reservation{}, ErrBookingClosed
	}
	if f.step != StepTable {
		f.mu.Unlock()
		return Reservation{}, &ClientError{Op: "booking.Submit", Kind: "booking", Err: ErrIncompleteBooking}
	}

	token := f.session.Token()
	if token == "" {
		f.post(Notice{Text: "Authentication required. Please log in.", Kind: NoticeAuth})
		f.mu.Unlock()
		return Reservation{}, ErrAuthRequired
	}
	if f.date == "" || f.timeOfDay == "" || f.selected == "" {
		f.post(Notice{Text: "Missing date, time, or table", Kind: NoticeValidation})
		f.mu.Unlock()
		return Reservation{}, ErrIncompleteBooking
	}

	req := ReservationRequest{Date: f.date, Time: f.timeOfDay, TableID: f.selected}
	booker := f.booker
	f.mu.Unlock()

	res, err := booker.CreateReservation(ctx, token, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.logger.Warn("Reservation submission failed", map[string]interface{}{
			"table_id": req.TableID,
			"error":    err.Error(),
		})
		if IsAuthFailure(err) {
			f.post(Notice{Text: "Authentication failed. Please log in again.", Kind: NoticeAuth})
		} else {
			f.post(Notice{Text: remoteMessage(err), Kind: NoticeRemote})
		}
		// Stay on the table step: date and time survive the retry.
		return Reservation{}, err
	}

	f.reservations.Save(ctx, res)
	f.step = StepDone
	f.post(Notice{Text: "Reservation confirmed", Kind: NoticeSuccess})
	f.logger.Info("Reservation booked", map[string]interface{}{
		"reservation_id": res.ID,
		"table_id":       res.TableID,
	})
	return res, nil
}

// Notice returns the active message, if it has not expired.
func (f *BookingFlow) Notice() (Notice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.notice == nil || f.clock().After(f.noticeExpires) {
		return Notice{}, false
	}
	return *f.notice, true
}

// Reset returns a completed or abandoned wizard to the date step.
func (f *BookingFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.step = StepDate
	f.date = ""
	f.timeOfDay = ""
	f.tables = nil
	f.selected = ""
	f.notice = nil
}

// post replaces the active notice. Callers hold f.mu.
func (f *BookingFlow) post(n Notice) {
	f.notice = &n
	f.noticeExpires = f.clock().Add(f.noticeTTL)
}

// remoteMessage extracts the display message from a submission error.
// Backends put the human-readable reason in the error body; anything
// without one falls back to a generic line.
func remoteMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return "Reservation failed"
}
