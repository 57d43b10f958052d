package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusPaid            BookingStatus = "paid"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
	StatusRejected        BookingStatus = "rejected"
	StatusExpired         BookingStatus = "expired"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentAwaiting  PaymentStatus = "awaiting_payment"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentExpired   PaymentStatus = "expired"
)

// Booking represents a one-on-one training session reservation
type Booking struct {
	ID            int64
	BookingNumber string // уникальный номер для сверки с платёжным шлюзом
	SlotID        *int64 // nil для заявок без слота (free-form)

	TrainerID   int64
	TrainerName string
	UserID      int64
	UserName    string
	UserEmail   string

	RequestedDate   time.Time
	ConfirmedDate   *time.Time
	DurationMinutes int
	Price           float64

	Status        BookingStatus
	PaymentStatus PaymentStatus

	PaymentDeadline      *time.Time
	PaymentOrderID       *string
	PaymentTransactionID *string
	PaymentLink          *string
	PaidAt               *time.Time
	NeedsManualRefund    bool

	RemindedAt *time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	Messages []Message

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveDate returns the confirmed date if set, otherwise the requested date.
// Every temporal rule (lead time, cancellation window, call window) uses this value.
func (b *Booking) EffectiveDate() time.Time {
	if b.ConfirmedDate != nil {
		return *b.ConfirmedDate
	}
	return b.RequestedDate
}

// EndTime returns the moment the session ends
func (b *Booking) EndTime() time.Time {
	return b.EffectiveDate().Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsTerminal returns true if the booking reached a terminal state
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// IsActive returns true if the booking still holds its slot
func (b *Booking) IsActive() bool {
	return !b.IsTerminal()
}

// CanBeConfirmed returns true if the trainer may confirm the booking
func (b *Booking) CanBeConfirmed() bool {
	return b.Status == StatusPending
}

// CanBeRejected returns true if the trainer may reject the booking
func (b *Booking) CanBeRejected() bool {
	return b.Status == StatusPending
}

// CanBeCancelled returns true if the booking is in a state that allows
// cancellation before payment
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending ||
		b.Status == StatusConfirmed ||
		b.Status == StatusAwaitingPayment
}

// CanBeCompleted returns true if the trainer may mark the session completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusConfirmed || b.Status == StatusPaid
}

// CanAcceptPayment returns true if a payment capture may be applied
func (b *Booking) CanAcceptPayment() bool {
	return b.Status == StatusAwaitingPayment
}

// AllowsCall returns true if the booking status permits a video call
func (b *Booking) AllowsCall() bool {
	return b.Status == StatusConfirmed || b.Status == StatusPaid
}

// WithinCancellationWindow returns true if the session start is still far
// enough away for self-service cancellation
func (b *Booking) WithinCancellationWindow(now time.Time, window time.Duration) bool {
	return b.EffectiveDate().Sub(now) >= window
}

// PaymentOverdue returns true if the payment deadline has passed
func (b *Booking) PaymentOverdue(now time.Time) bool {
	return b.PaymentDeadline != nil && b.PaymentDeadline.Before(now)
}

// Clone returns a deep copy of the booking
// Используется хранилищем, чтобы читатели не делили память с писателями
func (b *Booking) Clone() *Booking {
	c := *b
	c.SlotID = clonePtr(b.SlotID)
	c.ConfirmedDate = clonePtr(b.ConfirmedDate)
	c.PaymentDeadline = clonePtr(b.PaymentDeadline)
	c.PaymentOrderID = clonePtr(b.PaymentOrderID)
	c.PaymentTransactionID = clonePtr(b.PaymentTransactionID)
	c.PaymentLink = clonePtr(b.PaymentLink)
	c.PaidAt = clonePtr(b.PaidAt)
	c.RemindedAt = clonePtr(b.RemindedAt)
	c.CancellationReason = clonePtr(b.CancellationReason)
	c.CancelledAt = clonePtr(b.CancelledAt)
	c.Messages = make([]Message, len(b.Messages))
	copy(c.Messages, b.Messages)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
