package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	tables []Table
	err    error
	calls  int
}

func (s *stubLister) Tables(ctx context.Context) ([]Table, error) {
	s.calls++
	return s.tables, s.err
}

type stubBooker struct {
	res   Reservation
	err   error
	calls int
	last  ReservationRequest
}

func (s *stubBooker) CreateReservation(ctx context.Context, token string, req ReservationRequest) (Reservation, error) {
	s.calls++
	s.last = req
	return s.res, s.err
}

type bookingFixture struct {
	flow         *BookingFlow
	lister       *stubLister
	booker       *stubBooker
	reservations *Reservations
	session      *Session
	now          *time.Time
}

func newBookingFixture(t *testing.T, loggedIn bool) *bookingFixture {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	session := NewSession(ctx, store, nil)
	if loggedIn {
		session.SetToken(ctx, "tok-123")
	}

	lister := &stubLister{tables: []Table{
		{ID: "t1", Label: "Window", SeatingCapacity: 2, Status: "Available"},
		{ID: "t2", Label: "Booth", SeatingCapacity: 4, Status: "Occupied"},
	}}
	booker := &stubBooker{res: Reservation{ID: "r1", Date: "2026-09-10", Time: "19:00", TableID: "t1"}}
	reservations := NewReservations(ctx, store, nil, clock)

	return &bookingFixture{
		flow: NewBookingFlow(BookingFlowOptions{
			Tables:       lister,
			Booker:       booker,
			Reservations: reservations,
			Session:      session,
			Clock:        clock,
			NoticeTTL:    4 * time.Second,
		}),
		lister:       lister,
		booker:       booker,
		reservations: reservations,
		session:      session,
		now:          &now,
	}
}

func (b *bookingFixture) advanceToTableStep(t *testing.T) {
	t.Helper()
	b.flow.SetDate("2026-09-10")
	require.True(t, b.flow.ConfirmDate())
	b.flow.SetTime("19:00")
	require.True(t, b.flow.ConfirmTime(context.Background()))
}

func TestBookingFlowHappyPath(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)

	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))

	res, err := fx.flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	assert.Equal(t, StepDone, fx.flow.Step())
	assert.Equal(t, ReservationRequest{Date: "2026-09-10", Time: "19:00", TableID: "t1"}, fx.booker.last)

	// The booking landed in the container.
	current, ok := fx.reservations.Current()
	require.True(t, ok)
	assert.Equal(t, "r1", current.ID)

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeSuccess, n.Kind)
	assert.Equal(t, "Reservation confirmed", n.Text)
}

func TestBookingFlowDateValidation(t *testing.T) {
	fx := newBookingFixture(t, true)

	assert.False(t, fx.flow.ConfirmDate())
	assert.Equal(t, StepDate, fx.flow.Step())

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, "Please select a date", n.Text)
	assert.Equal(t, NoticeValidation, n.Kind)
}

func TestBookingFlowTimeValidation(t *testing.T) {
	fx := newBookingFixture(t, true)
	fx.flow.SetDate("2026-09-10")
	require.True(t, fx.flow.ConfirmDate())

	assert.False(t, fx.flow.ConfirmTime(context.Background()))
	assert.Equal(t, StepTime, fx.flow.Step())

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, "Please select a time", n.Text)
	assert.Zero(t, fx.lister.calls, "no fetch without a time")
}

func TestBookingFlowTableFetchFailureRetries(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)
	fx.lister.err = ErrConnectionFailed

	fx.flow.SetDate("2026-09-10")
	require.True(t, fx.flow.ConfirmDate())
	fx.flow.SetTime("19:00")

	assert.False(t, fx.flow.ConfirmTime(ctx))
	assert.Equal(t, StepTime, fx.flow.Step(), "failure keeps the wizard on the time step")

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, "Failed to load tables. Please try again.", n.Text)
	assert.Equal(t, NoticeRemote, n.Kind)

	// Retry succeeds once the backend recovers.
	fx.lister.err = nil
	assert.True(t, fx.flow.ConfirmTime(ctx))
	assert.Equal(t, StepTable, fx.flow.Step())
	assert.Len(t, fx.flow.Tables(), 2)
}

func TestBookingFlowSelectTable(t *testing.T) {
	fx := newBookingFixture(t, true)
	fx.advanceToTableStep(t)

	require.NoError(t, fx.flow.SelectTable("t1"))
	assert.Equal(t, "t1", fx.flow.SelectedTable())

	err := fx.flow.SelectTable("t2")
	assert.ErrorIs(t, err, ErrTableUnavailable, "occupied tables cannot be selected")

	err = fx.flow.SelectTable("t9")
	assert.ErrorIs(t, err, ErrTableUnavailable)
	assert.Equal(t, "t1", fx.flow.SelectedTable(), "a failed selection keeps the prior choice")
}

func TestBookingFlowSubmitWithoutAuth(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, false)
	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))

	_, err := fx.flow.Submit(ctx)
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Zero(t, fx.booker.calls, "no remote call without a token")
	assert.Equal(t, StepTable, fx.flow.Step())

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeAuth, n.Kind)
}

func TestBookingFlowSubmitAuthRejected(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)
	fx.booker.err = &ClientError{Op: "api.CreateReservation", Kind: "api", Message: "invalid token", Err: ErrAuthFailed}
	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))

	_, err := fx.flow.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, StepTable, fx.flow.Step(), "rejection keeps the wizard on the table step")

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, "Authentication failed. Please log in again.", n.Text)
	assert.Equal(t, NoticeAuth, n.Kind)
}

func TestBookingFlowSubmitRemoteFailure(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)
	fx.booker.err = &ClientError{Op: "api.CreateReservation", Kind: "api", Message: "Table already booked", Err: ErrRequestFailed}
	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))

	_, err := fx.flow.Submit(ctx)
	require.Error(t, err)

	n, ok := fx.flow.Notice()
	require.True(t, ok)
	assert.Equal(t, "Table already booked", n.Text, "the backend's reason is surfaced verbatim")
	assert.Equal(t, NoticeRemote, n.Kind)

	// Date and time survive for the retry.
	fx.booker.err = nil
	_, err = fx.flow.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepDone, fx.flow.Step())
}

func TestBookingFlowSubmitAfterDone(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)
	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))

	_, err := fx.flow.Submit(ctx)
	require.NoError(t, err)

	_, err = fx.flow.Submit(ctx)
	assert.ErrorIs(t, err, ErrBookingClosed)
	assert.Equal(t, 1, fx.booker.calls)
}

func TestBookingFlowNoticeExpiry(t *testing.T) {
	fx := newBookingFixture(t, true)
	fx.flow.ConfirmDate()

	_, ok := fx.flow.Notice()
	require.True(t, ok)

	*fx.now = fx.now.Add(5 * time.Second)
	_, ok = fx.flow.Notice()
	assert.False(t, ok, "notices expire after the TTL")
}

func TestBookingFlowReset(t *testing.T) {
	ctx := context.Background()
	fx := newBookingFixture(t, true)
	fx.advanceToTableStep(t)
	require.NoError(t, fx.flow.SelectTable("t1"))
	_, err := fx.flow.Submit(ctx)
	require.NoError(t, err)

	fx.flow.Reset()
	assert.Equal(t, StepDate, fx.flow.Step())
	assert.Empty(t, fx.flow.SelectedTable())
	assert.Empty(t, fx.flow.Tables())
	_, ok := fx.flow.Notice()
	assert.False(t, ok)
}

func TestBookingStepString(t *testing.T) {
	assert.Equal(t, "date", StepDate.String())
	assert.Equal(t, "time", StepTime.String())
	assert.Equal(t, "table", StepTable.String())
	assert.Equal(t, "done", StepDone.String())
}
