package book_slot

import (
	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// Request запрос на бронирование слота
type Request struct {
	SlotID int64
	UserID int64
	Note   *string
}

// Response результат бронирования слота
type Response struct {
	Booking *models.BookingResponse `json:"booking"`
}

func toResponse(booking *domain.Booking) *Response {
	return &Response{Booking: models.FromDomainBooking(booking)}
}
