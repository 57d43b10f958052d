package cancel_booking

import (
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(actorID int64) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		ActorID: actorID,
		Reason:  r.Reason,
	}
}
