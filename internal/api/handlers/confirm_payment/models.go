package confirm_payment

import (
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// ConfirmPaymentRequest HTTP request model
type ConfirmPaymentRequest struct {
	TransactionRef *string `json:"transactionRef,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ConfirmPaymentRequest) ToServiceRequest(actorID int64) *models.ConfirmPaymentRequest {
	return &models.ConfirmPaymentRequest{
		ActorID:        actorID,
		TransactionRef: r.TransactionRef,
	}
}
