package book_slot

import (
	bookSlotUC "github.com/m04kA/SMC-TrainingService/internal/usecase/book_slot"
)

// BookSlotRequest HTTP request model
type BookSlotRequest struct {
	Note *string `json:"note,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *BookSlotRequest) ToUseCaseRequest(slotID, userID int64) *bookSlotUC.Request {
	return &bookSlotUC.Request{
		SlotID: slotID,
		UserID: userID,
		Note:   r.Note,
	}
}
