package get_available_slots

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/service/slots/models"
)

type SlotService interface {
	AvailableSlots(ctx context.Context, trainerID int64) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
