package slots

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
)

// SlotStore интерфейс хранилища слотов
type SlotStore interface {
	Do(fn func(tx *store.Txn) error) error
	GetSlot(id int64) (*domain.Slot, error)
	ListSlots() []*domain.Slot
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
	GetTrainer(ctx context.Context, trainerID int64) (*userservice.Trainer, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
