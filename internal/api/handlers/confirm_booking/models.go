package confirm_booking

import (
	"time"

	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// ConfirmBookingRequest HTTP request model
type ConfirmBookingRequest struct {
	ConfirmedDate    time.Time `json:"confirmedDate"`
	ExternallyBilled bool      `json:"externallyBilled"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ConfirmBookingRequest) ToServiceRequest(actorID int64) *models.ConfirmBookingRequest {
	return &models.ConfirmBookingRequest{
		ActorID:          actorID,
		ConfirmedDate:    r.ConfirmedDate,
		ExternallyBilled: r.ExternallyBilled,
	}
}
