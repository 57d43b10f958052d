package add_message

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

type BookingService interface {
	AddMessage(ctx context.Context, bookingID int64, req *models.AddMessageRequest) (*models.MessageResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
