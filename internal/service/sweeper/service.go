package sweeper

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/pkg/metrics"
)

// Service периодический обходчик бронирований: просрочка неоплаченных
// дедлайнов и одноразовые напоминания о скором начале занятия.
//
// Сам обход не держит блокировок: кандидаты отбираются по снапшоту, а
// фактический переход выполняет lifecycle-менеджер со своим повторным
// чтением состояния, поэтому повторный Tick по уже обработанному
// бронированию - no-op.
type Service struct {
	store          BookingStore
	manager        LifecycleManager
	clock          clockwork.Clock
	reminderWindow time.Duration
	metrics        *metrics.Metrics
	logger         Logger
}

// NewService создает новый экземпляр sweeper'а
// metrics может быть nil, если сбор метрик выключен
func NewService(
	bookingStore BookingStore,
	manager LifecycleManager,
	clock clockwork.Clock,
	reminderWindow time.Duration,
	m *metrics.Metrics,
	logger Logger,
) *Service {
	return &Service{
		store:          bookingStore,
		manager:        manager,
		clock:          clock,
		reminderWindow: reminderWindow,
		metrics:        m,
		logger:         logger,
	}
}

// Tick выполняет один проход sweeper'а
func (s *Service) Tick(ctx context.Context) {
	now := s.clock.Now()
	if s.metrics != nil {
		s.metrics.SweepRunsTotal.Inc()
	}

	expired, reminded := 0, 0
	for _, booking := range s.store.ListBookings() {
		select {
		case <-ctx.Done():
			s.logger.Warn("Tick: interrupted: %v", ctx.Err())
			return
		default:
		}

		if booking.Status == domain.StatusAwaitingPayment && booking.PaymentOverdue(now) {
			ok, err := s.manager.Expire(ctx, booking.ID)
			if err != nil {
				s.logger.Error("Tick: failed to expire booking id=%d: %v", booking.ID, err)
				continue
			}
			if ok {
				expired++
				if s.metrics != nil {
					s.metrics.BookingsExpiredTotal.Inc()
				}
			}
			continue
		}

		if booking.AllowsCall() && booking.RemindedAt == nil {
			start := booking.EffectiveDate()
			if !start.Before(now) && start.Sub(now) <= s.reminderWindow {
				ok, err := s.manager.SendStartReminder(ctx, booking.ID)
				if err != nil {
					s.logger.Error("Tick: failed to send reminder for booking id=%d: %v", booking.ID, err)
					continue
				}
				if ok {
					reminded++
					if s.metrics != nil {
						s.metrics.RemindersSentTotal.Inc()
					}
				}
			}
		}
	}

	if expired > 0 || reminded > 0 {
		s.logger.Info("Tick: expired=%d, reminded=%d", expired, reminded)
	}
}
