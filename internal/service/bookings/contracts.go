package bookings

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/paygate"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
)

// BookingStore интерфейс хранилища бронирований и слотов
type BookingStore interface {
	Do(fn func(tx *store.Txn) error) error
	GetBooking(id int64) (*domain.Booking, error)
	FindBookingByOrderID(orderID string) (*domain.Booking, error)
	ListBookings() []*domain.Booking
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
	GetTrainer(ctx context.Context, trainerID int64) (*userservice.Trainer, error)
}

// PaymentGatewayClient интерфейс клиента платёжного шлюза
type PaymentGatewayClient interface {
	CreateOrder(ctx context.Context, amount float64, bookingNumber, description string) (*paygate.Order, error)
	CaptureOrder(ctx context.Context, orderID string) (*paygate.Capture, error)
}

// NotificationClient интерфейс клиента push-уведомлений
type NotificationClient interface {
	Send(ctx context.Context, userID int64, title, body string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
