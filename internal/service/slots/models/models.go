package models

import (
	"time"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
)

// CreateSlotRequest запрос на публикацию слота
type CreateSlotRequest struct {
	TrainerID       int64
	ActorID         int64
	StartTime       time.Time
	DurationMinutes int
}

// SlotResponse модель слота для внешних слоёв
type SlotResponse struct {
	ID              int64     `json:"id"`
	TrainerID       int64     `json:"trainerId"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Price           float64   `json:"price"`
	IsBooked        bool      `json:"isBooked"`
	BookedByUserID  *int64    `json:"bookedByUserId,omitempty"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []*SlotResponse `json:"slots"`
}

// FromDomainSlot конвертирует domain.Slot в SlotResponse
func FromDomainSlot(slot *domain.Slot) *SlotResponse {
	return &SlotResponse{
		ID:              slot.ID,
		TrainerID:       slot.TrainerID,
		StartTime:       slot.StartTime,
		DurationMinutes: slot.DurationMinutes,
		Price:           slot.Price,
		IsBooked:        slot.IsBooked,
		BookedByUserID:  slot.BookedByUserID,
	}
}

// FromDomainSlotList конвертирует список domain.Slot в SlotListResponse
func FromDomainSlotList(slots []*domain.Slot) *SlotListResponse {
	result := make([]*SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, FromDomainSlot(slot))
	}
	return &SlotListResponse{Slots: result}
}
