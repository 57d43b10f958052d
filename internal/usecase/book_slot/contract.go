package book_slot

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
)

// SlotStore интерфейс хранилища слотов и бронирований
type SlotStore interface {
	Do(fn func(tx *store.Txn) error) error
	GetSlot(id int64) (*domain.Slot, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
	GetTrainer(ctx context.Context, trainerID int64) (*userservice.Trainer, error)
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
