package slots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/internal/service/slots/models"
)

// Service реестр слотов: публикация, листинг и удаление окон тренера
type Service struct {
	store      SlotStore
	userClient UserServiceClient
	clock      clockwork.Clock
	leadTime   time.Duration
	logger     Logger
}

// NewService создает новый экземпляр реестра слотов
func NewService(
	slotStore SlotStore,
	userClient UserServiceClient,
	clock clockwork.Clock,
	leadTime time.Duration,
	logger Logger,
) *Service {
	return &Service{
		store:      slotStore,
		userClient: userClient,
		clock:      clock,
		leadTime:   leadTime,
		logger:     logger,
	}
}

// CreateSlot публикует новый слот тренера
// Цена вычисляется из почасовой ставки тренера: rate * duration / 60
// Доступно самому тренеру и администратору
func (s *Service) CreateSlot(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: trainer=%d, actor=%d, start=%s, duration=%d",
		req.TrainerID, req.ActorID, req.StartTime.Format(domain.DateTimeFormat), req.DurationMinutes)

	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		s.logger.Warn("CreateSlot: invalid duration=%d", req.DurationMinutes)
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	now := s.clock.Now()
	if !req.StartTime.After(now) {
		s.logger.Warn("CreateSlot: start time %s is in the past", req.StartTime.Format(domain.DateTimeFormat))
		return nil, fmt.Errorf("%w: start time must be in the future", ErrInvalidInput)
	}

	if err := s.checkTrainerAccess(ctx, req.TrainerID, req.ActorID); err != nil {
		return nil, err
	}

	trainer, err := s.userClient.GetTrainer(ctx, req.TrainerID)
	if err != nil {
		if errors.Is(err, userservice.ErrTrainerNotFound) {
			s.logger.Warn("CreateSlot: trainer id=%d not found", req.TrainerID)
			return nil, ErrTrainerNotFound
		}
		s.logger.Error("CreateSlot: failed to get trainer id=%d: %v", req.TrainerID, err)
		return nil, fmt.Errorf("%w: CreateSlot - failed to get trainer: %v", ErrInternal, err)
	}

	slot := &domain.Slot{
		TrainerID:       req.TrainerID,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Price:           trainer.HourlyRate * float64(req.DurationMinutes) / 60,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.Do(func(tx *store.Txn) error {
		slot.ID = tx.NextSlotID()
		tx.PutSlot(slot)
		return nil
	})
	if err != nil {
		s.logger.Error("CreateSlot: store error: %v", err)
		return nil, fmt.Errorf("%w: CreateSlot - store error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateSlot: created slot id=%d, price=%.2f", slot.ID, slot.Price)
	return models.FromDomainSlot(slot), nil
}

// DeleteSlot удаляет незанятый слот
// Доступно владельцу слота и администратору
func (s *Service) DeleteSlot(ctx context.Context, slotID, actorID int64) error {
	s.logger.Info("DeleteSlot: slot=%d, actor=%d", slotID, actorID)

	slot, err := s.store.GetSlot(slotID)
	if err != nil {
		if errors.Is(err, store.ErrSlotNotFound) {
			s.logger.Warn("DeleteSlot: slot id=%d not found", slotID)
			return ErrSlotNotFound
		}
		return fmt.Errorf("%w: DeleteSlot - store error: %v", ErrInternal, err)
	}

	if err := s.checkTrainerAccess(ctx, slot.TrainerID, actorID); err != nil {
		s.logger.Warn("DeleteSlot: access denied for actor=%d to slot id=%d", actorID, slotID)
		return err
	}

	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Slot(slotID)
		if !ok {
			return ErrSlotNotFound
		}
		// Повторная проверка под блокировкой: слот могли занять параллельно
		if !current.CanBeDeleted() {
			return ErrSlotBooked
		}
		tx.DeleteSlot(slotID)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotBooked) {
			s.logger.Warn("DeleteSlot: slot id=%d is booked", slotID)
		}
		return err
	}

	s.logger.Info("DeleteSlot: deleted slot id=%d", slotID)
	return nil
}

// AvailableSlots возвращает свободные слоты тренера, начинающиеся не раньше
// чем через leadTime, отсортированные по времени начала
func (s *Service) AvailableSlots(ctx context.Context, trainerID int64) (*models.SlotListResponse, error) {
	now := s.clock.Now()

	var available []*domain.Slot
	for _, slot := range s.store.ListSlots() {
		if slot.TrainerID == trainerID && slot.IsBookable(now, s.leadTime) {
			available = append(available, slot)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].StartTime.Before(available[j].StartTime)
	})

	s.logger.Info("AvailableSlots: trainer=%d, found %d slots", trainerID, len(available))
	return models.FromDomainSlotList(available), nil
}

// TrainerSlots возвращает все слоты тренера, включая занятые
// Доступно самому тренеру и администратору
func (s *Service) TrainerSlots(ctx context.Context, trainerID, actorID int64) (*models.SlotListResponse, error) {
	if err := s.checkTrainerAccess(ctx, trainerID, actorID); err != nil {
		s.logger.Warn("TrainerSlots: access denied for actor=%d to trainer=%d slots", actorID, trainerID)
		return nil, err
	}

	var result []*domain.Slot
	for _, slot := range s.store.ListSlots() {
		if slot.TrainerID == trainerID {
			result = append(result, slot)
		}
	}

	s.logger.Info("TrainerSlots: trainer=%d, found %d slots", trainerID, len(result))
	return models.FromDomainSlotList(result), nil
}

// checkTrainerAccess проверяет, что actor - сам тренер или администратор
func (s *Service) checkTrainerAccess(ctx context.Context, trainerID, actorID int64) error {
	if trainerID == actorID {
		return nil
	}

	actor, err := s.userClient.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return ErrAccessDenied
		}
		s.logger.Error("checkTrainerAccess: failed to get user id=%d: %v", actorID, err)
		return fmt.Errorf("%w: checkTrainerAccess - failed to get user: %v", ErrInternal, err)
	}
	if !actor.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}
