package confirm_payment

import (
	"context"

	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

type BookingService interface {
	ConfirmPaymentManually(ctx context.Context, bookingID int64, req *models.ConfirmPaymentRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
