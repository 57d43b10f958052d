package sweeper

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// BookingStore интерфейс хранилища для сканирования бронирований
type BookingStore interface {
	ListBookings() []*domain.Booking
}

// LifecycleManager интерфейс lifecycle-менеджера бронирований
// Обе операции идемпотентны, sweeper может безопасно повторять их
type LifecycleManager interface {
	Expire(ctx context.Context, bookingID int64) (bool, error)
	SendStartReminder(ctx context.Context, bookingID int64) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
