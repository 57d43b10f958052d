package book_slot

import (
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// validateRequest проверяет входные данные запроса
func validateRequest(req *Request) error {
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slot id is required", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.Note != nil && len(*req.Note) > domain.MaxMessageLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidInput, domain.MaxMessageLength)
	}
	return nil
}
