package bookings

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
)

// Expire переводит просроченное awaiting_payment бронирование в expired,
// освобождает слот и добавляет системное сообщение.
//
// Идемпотентно: для бронирования не в awaiting_payment (уже истекло,
// оплачено в гонке со sweep'ом, отменено) возвращает false без побочных
// эффектов.
func (s *Service) Expire(ctx context.Context, bookingID int64) (bool, error) {
	now := s.clock.Now()

	var result *domain.Booking
	expired := false
	err := s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if current.Status != domain.StatusAwaitingPayment {
			return nil
		}
		if !current.PaymentOverdue(now) {
			return nil
		}

		current.Status = domain.StatusExpired
		current.PaymentStatus = domain.PaymentExpired
		current.UpdatedAt = now
		releaseSlotLocked(tx, current, now)

		current.Messages = append(current.Messages, domain.NewSystemMessage(
			tx.NextMessageID(),
			"Срок оплаты истёк, бронирование аннулировано.",
			now,
		))

		result = current.Clone()
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !expired {
		return false, nil
	}

	s.logger.Info("Expire: booking id=%d expired, deadline=%s",
		bookingID, result.PaymentDeadline.Format(domain.DateTimeFormat))

	s.notify(ctx, result.UserID, notifTitleBookingExpired,
		fmt.Sprintf("Бронирование %s аннулировано: оплата не поступила до %s",
			result.BookingNumber, result.PaymentDeadline.Format("02.01.2006 15:04")))

	return true, nil
}

// SendStartReminder отправляет тренеру одноразовое напоминание о занятии,
// начинающемся в пределах окна напоминания.
//
// At-most-once: отметка RemindedAt ставится в той же сериализованной
// секции, что и проверка, повторный вызов - no-op.
func (s *Service) SendStartReminder(ctx context.Context, bookingID int64) (bool, error) {
	now := s.clock.Now()

	var result *domain.Booking
	reminded := false
	err := s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if !current.AllowsCall() {
			return nil
		}
		if current.RemindedAt != nil {
			return nil
		}
		start := current.EffectiveDate()
		if start.Before(now) || start.Sub(now) > s.cfg.ReminderWindow {
			return nil
		}

		current.RemindedAt = &now
		current.UpdatedAt = now
		result = current.Clone()
		reminded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !reminded {
		return false, nil
	}

	s.logger.Info("SendStartReminder: booking id=%d, start=%s",
		bookingID, result.EffectiveDate().Format(domain.DateTimeFormat))

	s.notify(ctx, result.TrainerID, notifTitleLessonSoon,
		fmt.Sprintf("Занятие с %s начнётся в %s", result.UserName,
			result.EffectiveDate().Format("15:04")))

	return true, nil
}
