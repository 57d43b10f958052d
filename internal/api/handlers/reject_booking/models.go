package reject_booking

import (
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// RejectBookingRequest HTTP request model
type RejectBookingRequest struct {
	Reason string `json:"reason"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *RejectBookingRequest) ToServiceRequest(actorID int64) *models.RejectBookingRequest {
	return &models.RejectBookingRequest{
		ActorID: actorID,
		Reason:  r.Reason,
	}
}
