package bookings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// Заголовки push-уведомлений (триггеры фиксированы)
const (
	notifTitleBookingCreated   = "Новая заявка на тренировку"
	notifTitleAwaitingPayment  = "Бронирование подтверждено"
	notifTitlePaymentReceived  = "Оплата получена"
	notifTitleBookingExpired   = "Бронирование истекло"
	notifTitleBookingCancelled = "Бронирование отменено"
	notifTitleLessonSoon       = "Занятие скоро начнётся"
)

// Config настройки временных правил lifecycle-менеджера
type Config struct {
	LeadTime              time.Duration // минимальный интервал до начала при создании заявки
	CancellationWindow    time.Duration // окно самостоятельной отмены
	PaymentDeadlineOffset time.Duration // paymentDeadline = confirmedDate - offset
	CallStartLead         time.Duration // тренер может начать звонок за это время до начала
	ReminderWindow        time.Duration // напоминание за это время до начала
}

// DefaultConfig временные правила по умолчанию
func DefaultConfig() Config {
	return Config{
		LeadTime:              domain.DefaultLeadTime,
		CancellationWindow:    domain.DefaultCancellationWindow,
		PaymentDeadlineOffset: domain.DefaultPaymentDeadlineOffset,
		CallStartLead:         domain.DefaultCallStartLead,
		ReminderWindow:        domain.DefaultReminderWindow,
	}
}

// Service lifecycle-менеджер бронирований: единственная точка мутаций Booking.
// Каждая операция проверяет права актора и предусловие состояния до любых
// изменений; проигравший конкурентный писатель получает ErrInvalidTransition.
type Service struct {
	store        BookingStore
	userClient   UserServiceClient
	payClient    PaymentGatewayClient
	notifyClient NotificationClient
	clock        clockwork.Clock
	cfg          Config
	logger       Logger
}

// NewService создает новый экземпляр lifecycle-менеджера
func NewService(
	bookingStore BookingStore,
	userClient UserServiceClient,
	payClient PaymentGatewayClient,
	notifyClient NotificationClient,
	clock clockwork.Clock,
	cfg Config,
	logger Logger,
) *Service {
	return &Service{
		store:        bookingStore,
		userClient:   userClient,
		payClient:    payClient,
		notifyClient: notifyClient,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Доступно студенту бронирования, тренеру и администратору
func (s *Service) GetByID(ctx context.Context, bookingID, actorID int64) (*models.BookingResponse, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, actorID); err != nil {
		s.logger.Warn("GetByID: access denied for actor=%d to booking id=%d", actorID, bookingID)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// ListUserBookings возвращает бронирования студента, новые занятия первыми
// Опционально фильтрует по статусу
func (s *Service) ListUserBookings(ctx context.Context, userID, actorID int64, status *string) (*models.BookingListResponse, error) {
	if userID != actorID {
		if err := s.checkAdmin(ctx, actorID); err != nil {
			s.logger.Warn("ListUserBookings: access denied for actor=%d to user=%d", actorID, userID)
			return nil, err
		}
	}

	return s.listBookings(status, func(b *domain.Booking) bool {
		return b.UserID == userID
	})
}

// ListTrainerBookings возвращает бронирования тренера, новые занятия первыми
// Опционально фильтрует по статусу
func (s *Service) ListTrainerBookings(ctx context.Context, trainerID, actorID int64, status *string) (*models.BookingListResponse, error) {
	if trainerID != actorID {
		if err := s.checkAdmin(ctx, actorID); err != nil {
			s.logger.Warn("ListTrainerBookings: access denied for actor=%d to trainer=%d", actorID, trainerID)
			return nil, err
		}
	}

	return s.listBookings(status, func(b *domain.Booking) bool {
		return b.TrainerID == trainerID
	})
}

func (s *Service) listBookings(status *string, match func(*domain.Booking) bool) (*models.BookingListResponse, error) {
	var domainStatus *domain.BookingStatus
	if status != nil {
		converted, err := models.ToDomainBookingStatus(*status)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &converted
	}

	var result []*domain.Booking
	for _, b := range s.store.ListBookings() {
		if !match(b) {
			continue
		}
		if domainStatus != nil && b.Status != *domainStatus {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveDate().After(result[j].EffectiveDate())
	})

	return models.FromDomainBookingList(result), nil
}

// Вспомогательные методы

func (s *Service) getBooking(bookingID int64) (*domain.Booking, error) {
	booking, err := s.store.GetBooking(bookingID)
	if err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			s.logger.Warn("booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: getBooking - store error: %v", ErrInternal, err)
	}
	return booking, nil
}

// checkBookingAccess проверяет, что актор - участник бронирования или администратор
func (s *Service) checkBookingAccess(ctx context.Context, booking *domain.Booking, actorID int64) error {
	if booking.UserID == actorID || booking.TrainerID == actorID {
		return nil
	}
	return s.checkAdmin(ctx, actorID)
}

// checkTrainerOrAdmin проверяет, что актор - тренер бронирования или администратор
func (s *Service) checkTrainerOrAdmin(ctx context.Context, booking *domain.Booking, actorID int64) error {
	if booking.TrainerID == actorID {
		return nil
	}
	return s.checkAdmin(ctx, actorID)
}

func (s *Service) checkAdmin(ctx context.Context, actorID int64) error {
	actor, err := s.userClient.GetUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return ErrAccessDenied
		}
		s.logger.Error("checkAdmin: failed to get user id=%d: %v", actorID, err)
		return fmt.Errorf("%w: checkAdmin - failed to get user: %v", ErrInternal, err)
	}
	if !actor.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}

// newBookingNumber генерирует уникальный человекочитаемый номер бронирования.
// Номер попадает в описание платежа, чтобы тренер мог сверить внешнюю оплату
// с бронированием без дополнительного поиска.
func (s *Service) newBookingNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TRN-%s-%s", s.clock.Now().Format("20060102"), suffix)
}

// notify отправляет уведомление fire-and-forget: отказ логируется и не
// влияет на результат бизнес-операции
func (s *Service) notify(ctx context.Context, userID int64, title, body string) {
	if err := s.notifyClient.Send(ctx, userID, title, body); err != nil {
		s.logger.Warn("notify: failed to send to user=%d, title=%q: %v", userID, title, err)
	}
}

// releaseSlotLocked освобождает слот бронирования (вызывается внутри store.Do)
func releaseSlotLocked(tx *store.Txn, booking *domain.Booking, now time.Time) {
	if booking.SlotID == nil {
		return
	}
	if slot, ok := tx.Slot(*booking.SlotID); ok && slot.IsBooked {
		slot.Release(now)
	}
}
