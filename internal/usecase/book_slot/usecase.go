package book_slot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
)

const notifTitleBookingCreated = "Новая заявка на тренировку"

// UseCase use case для бронирования опубликованного слота
//
// check-and-set слота и материализация Booking выполняются в одной
// сериализованной секции: из двух одновременных студентов один получает
// ErrSlotAlreadyBooked.
type UseCase struct {
	store        SlotStore
	userClient   UserServiceClient
	notifyClient NotificationClient
	clock        clockwork.Clock
	leadTime     time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotStore SlotStore,
	userClient UserServiceClient,
	notifyClient NotificationClient,
	clock clockwork.Clock,
	leadTime time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        slotStore,
		userClient:   userClient,
		notifyClient: notifyClient,
		clock:        clock,
		leadTime:     leadTime,
		logger:       logger,
	}
}

// Execute выполняет бронирование слота
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookSlot: slot=%d, user=%d", req.SlotID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return nil, err
	}

	// 2. Читаем слот до похода во внешние сервисы
	slot, err := uc.store.GetSlot(req.SlotID)
	if err != nil {
		if errors.Is(err, store.ErrSlotNotFound) {
			uc.logger.Warn("BookSlot: slot id=%d not found", req.SlotID)
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}

	// 3. Получаем студента
	student, err := uc.userClient.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			uc.logger.Warn("BookSlot: user id=%d not found", req.UserID)
			return nil, ErrUserNotFound
		}
		uc.logger.Error("BookSlot: failed to get user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}

	// 4. Получаем тренера для денормализации имени в бронирование
	trainer, err := uc.userClient.GetTrainer(ctx, slot.TrainerID)
	if err != nil {
		uc.logger.Error("BookSlot: failed to get trainer id=%d: %v", slot.TrainerID, err)
		return nil, fmt.Errorf("%w: failed to get trainer: %v", ErrInternal, err)
	}

	now := uc.clock.Now()
	var result *domain.Booking

	// 5. check-and-set слота и создание бронирования в одной секции
	err = uc.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Slot(req.SlotID)
		if !ok {
			return ErrSlotNotFound
		}

		// 5.1. Повторная проверка под блокировкой: слот могли занять параллельно
		if current.IsBooked {
			uc.logger.Warn("BookSlot: slot id=%d already booked", req.SlotID)
			return ErrSlotAlreadyBooked
		}
		if current.StartTime.Sub(now) < uc.leadTime {
			uc.logger.Warn("BookSlot: slot id=%d starts too soon (%s)",
				req.SlotID, current.StartTime.Format(domain.DateTimeFormat))
			return ErrLeadTime
		}

		// 5.2. Занимаем слот и материализуем бронирование по его параметрам
		current.Book(student.ID, now)

		booking := &domain.Booking{
			ID:              tx.NextBookingID(),
			BookingNumber:   newBookingNumber(now),
			SlotID:          &current.ID,
			TrainerID:       current.TrainerID,
			TrainerName:     trainer.Name,
			UserID:          student.ID,
			UserName:        student.Name,
			UserEmail:       student.Email,
			RequestedDate:   current.StartTime,
			DurationMinutes: current.DurationMinutes,
			Price:           current.Price,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentNone,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if req.Note != nil && *req.Note != "" {
			booking.Messages = append(booking.Messages, domain.Message{
				ID:         tx.NextMessageID(),
				SenderID:   student.ID,
				SenderName: student.Name,
				Content:    *req.Note,
				Timestamp:  now,
			})
		}

		tx.PutBooking(booking)
		result = booking.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookSlot: created booking id=%d, number=%s for slot=%d",
		result.ID, result.BookingNumber, req.SlotID)

	// 6. Уведомляем тренера (fire-and-forget)
	if err := uc.notifyClient.Send(ctx, result.TrainerID, notifTitleBookingCreated,
		fmt.Sprintf("%s забронировал занятие %s", student.Name,
			result.RequestedDate.Format("02.01.2006 15:04"))); err != nil {
		uc.logger.Warn("BookSlot: notification failed for trainer=%d: %v", result.TrainerID, err)
	}

	return toResponse(result), nil
}

// newBookingNumber генерирует уникальный номер для сверки с платёжным шлюзом
func newBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TRN-%s-%s", now.Format("20060102"), suffix)
}
