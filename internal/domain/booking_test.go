package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveDate(t *testing.T) {
	requested := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	confirmed := time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

	b := &Booking{RequestedDate: requested}
	assert.Equal(t, requested, b.EffectiveDate())

	b.ConfirmedDate = &confirmed
	assert.Equal(t, confirmed, b.EffectiveDate())
}

func TestEndTime(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	b := &Booking{RequestedDate: start, DurationMinutes: 90}

	assert.Equal(t, start.Add(90*time.Minute), b.EndTime())
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status      BookingStatus
		terminal    bool
		confirmable bool
		cancellable bool
		completable bool
		payable     bool
		allowsCall  bool
	}{
		{StatusPending, false, true, true, false, false, false},
		{StatusConfirmed, false, false, true, true, false, true},
		{StatusAwaitingPayment, false, false, true, false, true, false},
		{StatusPaid, false, false, false, true, false, true},
		{StatusCompleted, true, false, false, false, false, false},
		{StatusCancelled, true, false, false, false, false, false},
		{StatusRejected, true, false, false, false, false, false},
		{StatusExpired, true, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			b := &Booking{Status: tt.status}
			assert.Equal(t, tt.terminal, b.IsTerminal())
			assert.Equal(t, tt.confirmable, b.CanBeConfirmed())
			assert.Equal(t, tt.cancellable, b.CanBeCancelled())
			assert.Equal(t, tt.completable, b.CanBeCompleted())
			assert.Equal(t, tt.payable, b.CanAcceptPayment())
			assert.Equal(t, tt.allowsCall, b.AllowsCall())
		})
	}
}

func TestWithinCancellationWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	b := &Booking{RequestedDate: start}
	window := 24 * time.Hour

	// Ровно 24 часа до начала - еще можно
	assert.True(t, b.WithinCancellationWindow(start.Add(-24*time.Hour), window))
	assert.True(t, b.WithinCancellationWindow(start.Add(-48*time.Hour), window))

	// Меньше 24 часов - окно закрыто
	assert.False(t, b.WithinCancellationWindow(start.Add(-23*time.Hour), window))
	assert.False(t, b.WithinCancellationWindow(start, window))
}

func TestPaymentOverdue(t *testing.T) {
	deadline := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	b := &Booking{}
	assert.False(t, b.PaymentOverdue(deadline.Add(time.Hour)), "nil deadline never overdue")

	b.PaymentDeadline = &deadline
	assert.False(t, b.PaymentOverdue(deadline.Add(-time.Minute)))
	assert.False(t, b.PaymentOverdue(deadline))
	assert.True(t, b.PaymentOverdue(deadline.Add(time.Minute)))
}

func TestBookingClone(t *testing.T) {
	orderID := "ORD-1"
	slotID := int64(5)
	b := &Booking{
		ID:             1,
		SlotID:         &slotID,
		PaymentOrderID: &orderID,
		Messages:       []Message{{ID: 1, Content: "привет"}},
	}

	c := b.Clone()
	require.Equal(t, b, c)

	// Копия не делит память с оригиналом
	*c.PaymentOrderID = "ORD-2"
	*c.SlotID = 6
	c.Messages[0].Content = "другое"

	assert.Equal(t, "ORD-1", *b.PaymentOrderID)
	assert.Equal(t, int64(5), *b.SlotID)
	assert.Equal(t, "привет", b.Messages[0].Content)
}

func TestSlotBookAndRelease(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	s := &Slot{ID: 1, StartTime: now.Add(48 * time.Hour)}

	require.True(t, s.IsBookable(now, 24*time.Hour))
	require.True(t, s.CanBeDeleted())

	s.Book(42, now)
	assert.True(t, s.IsBooked)
	require.NotNil(t, s.BookedByUserID)
	assert.Equal(t, int64(42), *s.BookedByUserID)
	assert.False(t, s.IsBookable(now, 24*time.Hour))
	assert.False(t, s.CanBeDeleted())

	s.Release(now)
	assert.False(t, s.IsBooked)
	assert.Nil(t, s.BookedByUserID)
}

func TestSlotIsBookableLeadTime(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	leadTime := 24 * time.Hour

	near := &Slot{StartTime: now.Add(23 * time.Hour)}
	assert.False(t, near.IsBookable(now, leadTime))

	exact := &Slot{StartTime: now.Add(24 * time.Hour)}
	assert.True(t, exact.IsBookable(now, leadTime))
}

func TestNewSystemMessage(t *testing.T) {
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	m := NewSystemMessage(7, "Срок оплаты истёк", now)

	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, SystemSenderID, m.SenderID)
	assert.Equal(t, SystemSenderName, m.SenderName)
	assert.True(t, m.IsSystem())
	assert.Equal(t, now, m.Timestamp)
}
