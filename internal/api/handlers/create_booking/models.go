package create_booking

import (
	"time"

	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// CreateBookingRequest HTTP request model для free-form заявки без слота
type CreateBookingRequest struct {
	TrainerID       int64     `json:"trainerId"`
	RequestedDate   time.Time `json:"requestedDate"`
	DurationMinutes int       `json:"durationMinutes"`
	Note            *string   `json:"note,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateBookingRequest) ToServiceRequest(userID int64) *models.CreateBookingRequest {
	return &models.CreateBookingRequest{
		TrainerID:       r.TrainerID,
		UserID:          userID,
		RequestedDate:   r.RequestedDate,
		DurationMinutes: r.DurationMinutes,
		Note:            r.Note,
	}
}
