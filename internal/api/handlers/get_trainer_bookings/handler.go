package get_trainer_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TrainingService/internal/api/handlers"
	"github.com/m04kA/SMC-TrainingService/internal/api/middleware"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings"
)

const (
	msgInvalidTrainerID = "некорректный ID тренера"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
	msgInvalidStatus    = "некорректный статус бронирования"
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

// Handle GET /api/v1/trainers/{trainerId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем trainerId из URL
	vars := mux.Vars(r)
	trainerIDStr := vars["trainerId"]

	trainerID, err := strconv.ParseInt(trainerIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /trainers/{trainerId}/bookings - Invalid trainer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrainerID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /trainers/{trainerId}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Получаем status из query параметров (опционально)
	status := r.URL.Query().Get("status")
	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}

	// Получаем бронирования тренера
	result, err := h.service.ListTrainerBookings(r.Context(), trainerID, actorID, statusPtr)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /trainers/{trainerId}/bookings - Access denied: trainer_id=%d, actor_id=%d",
				trainerID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /trainers/{trainerId}/bookings - Invalid status filter: %q", status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /trainers/{trainerId}/bookings - Failed to get bookings: trainer_id=%d, error=%v",
				trainerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /trainers/{trainerId}/bookings - Bookings retrieved successfully: trainer_id=%d, count=%d",
		trainerID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
