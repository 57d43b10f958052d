package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// CreateBookingRequest запрос на создание free-form заявки (без слота)
type CreateBookingRequest struct {
	TrainerID       int64
	UserID          int64
	RequestedDate   time.Time
	DurationMinutes int
	Note            *string
}

// ConfirmBookingRequest запрос тренера на подтверждение заявки
// ExternallyBilled - оплата вне сервиса: бронирование остаётся в confirmed
// без платёжного ордера и дедлайна
type ConfirmBookingRequest struct {
	ActorID          int64
	ConfirmedDate    time.Time
	ExternallyBilled bool
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	ActorID int64
	Reason  *string
}

// CancelBookingResponse результат отмены
type CancelBookingResponse struct {
	BookingNumber     string `json:"bookingNumber"`
	NeedsManualRefund bool   `json:"needsManualRefund"`
}

// RejectBookingRequest запрос тренера на отклонение заявки
type RejectBookingRequest struct {
	ActorID int64
	Reason  string
}

// ConfirmPaymentRequest запрос на ручное подтверждение оплаты
type ConfirmPaymentRequest struct {
	ActorID        int64
	TransactionRef *string
}

// AddMessageRequest запрос на добавление сообщения в тред бронирования
type AddMessageRequest struct {
	ActorID int64
	Content string
}

// MessageResponse модель сообщения для внешних слоёв
type MessageResponse struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// CallAccessResponse производное правило доступа к видеозвонку
type CallAccessResponse struct {
	CanStartCall bool `json:"canStartCall"`
	CanJoinCall  bool `json:"canJoinCall"`
}

// BookingResponse модель бронирования для внешних слоёв
type BookingResponse struct {
	ID            int64  `json:"id"`
	BookingNumber string `json:"bookingNumber"`
	SlotID        *int64 `json:"slotId,omitempty"`

	TrainerID   int64  `json:"trainerId"`
	TrainerName string `json:"trainerName"`
	UserID      int64  `json:"userId"`
	UserName    string `json:"userName"`
	UserEmail   string `json:"userEmail"`

	RequestedDate   time.Time  `json:"requestedDate"`
	ConfirmedDate   *time.Time `json:"confirmedDate,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	Price           float64    `json:"price"`

	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	PaymentDeadline      *time.Time `json:"paymentDeadline,omitempty"`
	PaymentOrderID       *string    `json:"paymentOrderId,omitempty"`
	PaymentTransactionID *string    `json:"paymentTransactionId,omitempty"`
	PaymentLink          *string    `json:"paymentLink,omitempty"`
	PaidAt               *time.Time `json:"paidAt,omitempty"`
	NeedsManualRefund    bool       `json:"needsManualRefund"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	Messages []*MessageResponse `json:"messages"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse список бронирований
type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
}

// FromDomainMessage конвертирует domain.Message в MessageResponse
func FromDomainMessage(m domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		Read:       m.Read,
	}
}

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	messages := make([]*MessageResponse, 0, len(b.Messages))
	for _, m := range b.Messages {
		messages = append(messages, FromDomainMessage(m))
	}

	return &BookingResponse{
		ID:                   b.ID,
		BookingNumber:        b.BookingNumber,
		SlotID:               b.SlotID,
		TrainerID:            b.TrainerID,
		TrainerName:          b.TrainerName,
		UserID:               b.UserID,
		UserName:             b.UserName,
		UserEmail:            b.UserEmail,
		RequestedDate:        b.RequestedDate,
		ConfirmedDate:        b.ConfirmedDate,
		DurationMinutes:      b.DurationMinutes,
		Price:                b.Price,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		PaymentDeadline:      b.PaymentDeadline,
		PaymentOrderID:       b.PaymentOrderID,
		PaymentTransactionID: b.PaymentTransactionID,
		PaymentLink:          b.PaymentLink,
		PaidAt:               b.PaidAt,
		NeedsManualRefund:    b.NeedsManualRefund,
		CancellationReason:   b.CancellationReason,
		CancelledAt:          b.CancelledAt,
		Messages:             messages,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain.Booking в BookingListResponse
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	result := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: result}
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusAwaitingPayment,
		domain.StatusPaid,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusRejected,
		domain.StatusExpired:
		return domain.BookingStatus(status), nil
	}
	return "", fmt.Errorf("unknown booking status: %s", status)
}
