package syncer

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// SnapshotSource интерфейс источника снапшотов состояния
type SnapshotSource interface {
	Snapshot() ([]*domain.Slot, []*domain.Booking)
	Load(slots []*domain.Slot, bookings []*domain.Booking)
}

// PersistenceGateway интерфейс шлюза персистентности
type PersistenceGateway interface {
	ReplaceAll(ctx context.Context, slots []*domain.Slot, bookings []*domain.Booking) error
	LoadAll(ctx context.Context) ([]*domain.Slot, []*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
