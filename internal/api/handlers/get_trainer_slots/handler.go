package get_trainer_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TrainingService/internal/api/handlers"
	"github.com/m04kA/SMC-TrainingService/internal/api/middleware"
	"github.com/m04kA/SMC-TrainingService/internal/service/slots"
)

const (
	msgInvalidTrainerID = "некорректный ID тренера"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/trainers/{trainerId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем trainerId из URL
	vars := mux.Vars(r)
	trainerIDStr := vars["trainerId"]

	trainerID, err := strconv.ParseInt(trainerIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /trainers/{trainerId}/slots - Invalid trainer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrainerID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /trainers/{trainerId}/slots - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Получаем все слоты тренера (включая занятые)
	result, err := h.service.TrainerSlots(r.Context(), trainerID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrAccessDenied):
			h.logger.Warn("GET /trainers/{trainerId}/slots - Access denied: trainer_id=%d, user_id=%d",
				trainerID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /trainers/{trainerId}/slots - Failed to get slots: trainer_id=%d, error=%v",
				trainerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /trainers/{trainerId}/slots - Slots retrieved successfully: trainer_id=%d, count=%d",
		trainerID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
