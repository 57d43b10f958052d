package domain

import "time"

// Default temporal rules
const (
	// DefaultLeadTime минимальный интервал между "сейчас" и началом слота при бронировании
	DefaultLeadTime = 24 * time.Hour

	// DefaultCancellationWindow тот же 24-часовой порог для самостоятельной отмены
	DefaultCancellationWindow = 24 * time.Hour

	// DefaultPaymentDeadlineOffset paymentDeadline = confirmedDate - offset
	DefaultPaymentDeadlineOffset = 24 * time.Hour

	// DefaultCallStartLead тренер может начать звонок за 10 минут до начала
	DefaultCallStartLead = 10 * time.Minute

	// DefaultReminderWindow напоминание отправляется за 10 минут до начала
	DefaultReminderWindow = 10 * time.Minute
)

// Business validation constants
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480 // 8 hours
	MaxMessageLength   = 1000
	MaxReasonLength    = 500
)

// Time format constants
const (
	DateFormat     = "2006-01-02"
	DateTimeFormat = time.RFC3339
)

// TerminalStatuses список терминальных статусов бронирования
// Терминальные бронирования не удаляются и хранятся для аудита
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
	StatusExpired,
}

// ActiveStatuses список статусов, при которых бронирование удерживает слот
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusAwaitingPayment,
	StatusPaid,
}
