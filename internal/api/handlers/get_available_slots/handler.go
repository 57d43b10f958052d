package get_available_slots

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TrainingService/internal/api/handlers"
)

const (
	msgInvalidTrainerID = "некорректный ID тренера"
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

// Handle GET /api/v1/trainers/{trainerId}/available-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем trainerId из URL
	vars := mux.Vars(r)
	trainerIDStr := vars["trainerId"]

	trainerID, err := strconv.ParseInt(trainerIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /trainers/{trainerId}/available-slots - Invalid trainer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTrainerID)
		return
	}

	// Получаем свободные слоты тренера
	result, err := h.service.AvailableSlots(r.Context(), trainerID)
	if err != nil {
		h.logger.Error("GET /trainers/{trainerId}/available-slots - Failed to get slots: trainer_id=%d, error=%v",
			trainerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /trainers/{trainerId}/available-slots - Slots retrieved successfully: trainer_id=%d, count=%d",
		trainerID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
