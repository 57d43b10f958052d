package payment_return

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TrainingService/internal/api/handlers"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings"
)

const (
	msgInvalidReturnURL = "некорректный return URL платежной системы"
	msgNotFound         = "бронирование по платежному ордеру не найдено"
	msgCannotAcceptPay  = "бронирование не ожидает оплаты"
	msgGatewayError     = "платежная система недоступна, попробуйте позже"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/payments/return
// Коллбек платёжной системы после оплаты, приходит без аутентификации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.HandlePaymentReturn(r.Context(), r.URL.String())
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /payments/return - Invalid return URL: %v", err)
			handlers.RespondBadRequest(w, msgInvalidReturnURL)

		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /payments/return - Booking not found for order")
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrInvalidTransition):
			h.logger.Warn("GET /payments/return - Booking cannot accept payment")
			handlers.RespondError(w, http.StatusConflict, msgCannotAcceptPay)

		case errors.Is(err, bookings.ErrPaymentGateway):
			h.logger.Error("GET /payments/return - Gateway capture failed: %v", err)
			handlers.RespondError(w, http.StatusBadGateway, msgGatewayError)

		default:
			h.logger.Error("GET /payments/return - Failed to handle payment return: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /payments/return - Payment processed successfully: booking_id=%d, number=%s",
		booking.ID, booking.BookingNumber)
	handlers.RespondJSON(w, http.StatusOK, booking)
}
