package create_slot

import (
	"time"

	"github.com/m04kA/SMC-TrainingService/internal/service/slots/models"
)

// CreateSlotRequest HTTP request model
type CreateSlotRequest struct {
	TrainerID       int64     `json:"trainerId"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreateSlotRequest) ToServiceRequest(actorID int64) *models.CreateSlotRequest {
	return &models.CreateSlotRequest{
		TrainerID:       r.TrainerID,
		ActorID:         actorID,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
	}
}
