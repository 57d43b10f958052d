package create_booking

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

type BookingService interface {
	CreateRequest(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
