package book_slot

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TrainingService/internal/api/handlers"
	"github.com/m04kA/SMC-TrainingService/internal/api/middleware"
	bookSlotUC "github.com/m04kA/SMC-TrainingService/internal/usecase/book_slot"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotFound       = "слот не найден"
	msgSlotAlreadyBooked  = "слот уже забронирован"
	msgLeadTime           = "до начала занятия осталось меньше 24 часов"
	msgUserNotFound       = "пользователь не найден"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/book
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем slotId из URL
	vars := mux.Vars(r)
	slotIDStr := vars["slotId"]

	slotID, err := strconv.ParseInt(slotIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /slots/{id}/book - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/book - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body (тело опционально - заметка может отсутствовать)
	var req BookSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /slots/{id}/book - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Бронируем слот
	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(slotID, userID))
	if err != nil {
		switch {
		case errors.Is(err, bookSlotUC.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/book - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, bookSlotUC.ErrSlotAlreadyBooked):
			h.logger.Warn("POST /slots/{id}/book - Slot already booked: slot_id=%d, user_id=%d", slotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgSlotAlreadyBooked)

		case errors.Is(err, bookSlotUC.ErrLeadTime):
			h.logger.Warn("POST /slots/{id}/book - Lead time violated: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusConflict, msgLeadTime)

		case errors.Is(err, bookSlotUC.ErrUserNotFound):
			h.logger.Warn("POST /slots/{id}/book - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, bookSlotUC.ErrInvalidInput):
			h.logger.Warn("POST /slots/{id}/book - Invalid input: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /slots/{id}/book - Failed to book slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /slots/{id}/book - Slot booked successfully: slot_id=%d, booking_id=%d, user_id=%d",
		slotID, result.Booking.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
