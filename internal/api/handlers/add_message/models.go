package add_message

import (
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// AddMessageRequest HTTP request model
type AddMessageRequest struct {
	Content string `json:"content"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *AddMessageRequest) ToServiceRequest(actorID int64) *models.AddMessageRequest {
	return &models.AddMessageRequest{
		ActorID: actorID,
		Content: r.Content,
	}
}
