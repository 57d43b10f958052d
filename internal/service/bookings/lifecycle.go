package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// CreateRequest создает free-form заявку на тренировку (без слота)
// Цена вычисляется из почасовой ставки тренера; заявка попадает в pending
func (s *Service) CreateRequest(ctx context.Context, req *models.CreateBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("CreateRequest: user=%d, trainer=%d, date=%s, duration=%d",
		req.UserID, req.TrainerID, req.RequestedDate.Format(domain.DateTimeFormat), req.DurationMinutes)

	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	now := s.clock.Now()
	if req.RequestedDate.Sub(now) < s.cfg.LeadTime {
		s.logger.Warn("CreateRequest: requested date %s is within lead time",
			req.RequestedDate.Format(domain.DateTimeFormat))
		return nil, fmt.Errorf("%w: sessions must be requested at least %s in advance", ErrLeadTime, s.cfg.LeadTime)
	}

	student, err := s.userClient.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("CreateRequest: failed to get user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: CreateRequest - failed to get user: %v", ErrInternal, err)
	}

	trainer, err := s.userClient.GetTrainer(ctx, req.TrainerID)
	if err != nil {
		if errors.Is(err, userservice.ErrTrainerNotFound) {
			return nil, ErrTrainerNotFound
		}
		s.logger.Error("CreateRequest: failed to get trainer id=%d: %v", req.TrainerID, err)
		return nil, fmt.Errorf("%w: CreateRequest - failed to get trainer: %v", ErrInternal, err)
	}

	booking := &domain.Booking{
		BookingNumber:   s.newBookingNumber(),
		TrainerID:       trainer.ID,
		TrainerName:     trainer.Name,
		UserID:          student.ID,
		UserName:        student.Name,
		UserEmail:       student.Email,
		RequestedDate:   req.RequestedDate,
		DurationMinutes: req.DurationMinutes,
		Price:           trainer.HourlyRate * float64(req.DurationMinutes) / 60,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.store.Do(func(tx *store.Txn) error {
		booking.ID = tx.NextBookingID()
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
		return nil
	})
	if err != nil {
		s.logger.Error("CreateRequest: store error: %v", err)
		return nil, fmt.Errorf("%w: CreateRequest - store error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateRequest: created booking id=%d, number=%s", booking.ID, booking.BookingNumber)

	s.notify(ctx, booking.TrainerID, notifTitleBookingCreated,
		fmt.Sprintf("%s: заявка на %s", student.Name, req.RequestedDate.Format("02.01.2006 15:04")))

	return models.FromDomainBooking(booking), nil
}

// Confirm подтверждает заявку тренером с конкретной датой занятия
//
// Обычный путь: создаётся платёжный ордер и бронирование уходит в
// awaiting_payment с дедлайном confirmedDate - offset. Отказ шлюза не
// фатален - бронирование всё равно попадает в awaiting_payment, без ссылки
// на оплату, с системным сообщением о ручной оплате (degraded path).
//
// ExternallyBilled: оплата вне сервиса, бронирование остаётся в confirmed
// без ордера, дедлайна и автопросрочки.
func (s *Service) Confirm(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: booking=%d, actor=%d, date=%s, external=%t",
		bookingID, req.ActorID, req.ConfirmedDate.Format(domain.DateTimeFormat), req.ExternallyBilled)

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTrainerOrAdmin(ctx, booking, req.ActorID); err != nil {
		s.logger.Warn("Confirm: access denied for actor=%d to booking id=%d", req.ActorID, bookingID)
		return nil, err
	}

	if !booking.CanBeConfirmed() {
		s.logger.Warn("Confirm: booking id=%d cannot be confirmed, status=%s", bookingID, booking.Status)
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	// Дедлайн оплаты должен остаться в будущем
	if req.ConfirmedDate.Sub(now) < s.cfg.PaymentDeadlineOffset {
		s.logger.Warn("Confirm: confirmed date %s is within payment deadline offset",
			req.ConfirmedDate.Format(domain.DateTimeFormat))
		return nil, fmt.Errorf("%w: confirmed date must be at least %s in advance",
			ErrLeadTime, s.cfg.PaymentDeadlineOffset)
	}

	if req.ExternallyBilled {
		return s.confirmExternallyBilled(ctx, bookingID, req)
	}

	// Вызов шлюза идёт до сериализованной секции и с таймаутом клиента,
	// чтобы не держать блокировку хранилища на сетевом запросе
	order, payErr := s.payClient.CreateOrder(ctx, booking.Price, booking.BookingNumber,
		fmt.Sprintf("Тренировка %s, %s", booking.BookingNumber, req.ConfirmedDate.Format("02.01.2006 15:04")))
	if payErr != nil {
		s.logger.Error("Confirm: payment order creation failed for booking id=%d: %v", bookingID, payErr)
	}

	var result *domain.Booking
	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		// Повторная проверка под блокировкой
		if !current.CanBeConfirmed() {
			return ErrInvalidTransition
		}

		confirmedDate := req.ConfirmedDate
		deadline := confirmedDate.Add(-s.cfg.PaymentDeadlineOffset)

		current.ConfirmedDate = &confirmedDate
		current.Status = domain.StatusAwaitingPayment
		current.PaymentStatus = domain.PaymentAwaiting
		current.PaymentDeadline = &deadline
		current.UpdatedAt = now

		if payErr == nil {
			current.PaymentOrderID = &order.OrderID
			current.PaymentLink = &order.ApprovalURL
		} else {
			current.Messages = append(current.Messages, domain.NewSystemMessage(
				tx.NextMessageID(),
				"Платёжный сервис временно недоступен. Свяжитесь с тренером, чтобы согласовать оплату вручную.",
				now,
			))
		}

		result = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Confirm: booking id=%d moved to %s, deadline=%s",
		bookingID, result.Status, result.PaymentDeadline.Format(domain.DateTimeFormat))

	body := fmt.Sprintf("Занятие %s. Оплатите до %s",
		result.EffectiveDate().Format("02.01.2006 15:04"),
		result.PaymentDeadline.Format("02.01.2006 15:04"))
	s.notify(ctx, result.UserID, notifTitleAwaitingPayment, body)

	return models.FromDomainBooking(result), nil
}

func (s *Service) confirmExternallyBilled(ctx context.Context, bookingID int64, req *models.ConfirmBookingRequest) (*models.BookingResponse, error) {
	now := s.clock.Now()

	var result *domain.Booking
	err := s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if !current.CanBeConfirmed() {
			return ErrInvalidTransition
		}

		confirmedDate := req.ConfirmedDate
		current.ConfirmedDate = &confirmedDate
		current.Status = domain.StatusConfirmed
		current.UpdatedAt = now

		result = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Confirm: booking id=%d confirmed (externally billed)", bookingID)

	s.notify(ctx, result.UserID, notifTitleAwaitingPayment,
		fmt.Sprintf("Занятие %s. Оплата согласована с тренером", result.EffectiveDate().Format("02.01.2006 15:04")))

	return models.FromDomainBooking(result), nil
}

// Cancel отменяет бронирование
//
// Студент может отменить свое бронирование в pending/confirmed/awaiting_payment
// только пока до занятия осталось не меньше окна отмены. Тренер и администратор
// отменяют без окна. Отмена оплаченного бронирования помечает платёж refunded
// и выставляет флаг ручного возврата.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	s.logger.Info("Cancel: booking=%d, actor=%d", bookingID, req.ActorID)

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	isStudent := booking.UserID == req.ActorID
	isTrainer := booking.TrainerID == req.ActorID
	if !isStudent && !isTrainer {
		if err := s.checkAdmin(ctx, req.ActorID); err != nil {
			s.logger.Warn("Cancel: access denied for actor=%d to booking id=%d", req.ActorID, bookingID)
			return nil, err
		}
	}

	actorName := booking.UserName
	if !isStudent {
		actorName = booking.TrainerName
	}

	now := s.clock.Now()
	selfService := isStudent && !isTrainer

	var result *domain.Booking
	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}

		wasPaid := current.Status == domain.StatusPaid
		if !wasPaid {
			if !current.CanBeCancelled() {
				return ErrInvalidTransition
			}
			if selfService && !current.WithinCancellationWindow(now, s.cfg.CancellationWindow) {
				return fmt.Errorf("%w: sessions may be cancelled no later than %s before start",
					ErrCancellationWindow, s.cfg.CancellationWindow)
			}
		}

		current.Status = domain.StatusCancelled
		current.CancelledAt = &now
		current.CancellationReason = req.Reason
		current.UpdatedAt = now
		if wasPaid {
			current.PaymentStatus = domain.PaymentRefunded
			current.NeedsManualRefund = true
		}

		releaseSlotLocked(tx, current, now)

		reason := "причина не указана"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		current.Messages = append(current.Messages, domain.Message{
			ID:         tx.NextMessageID(),
			SenderID:   req.ActorID,
			SenderName: actorName,
			Content:    fmt.Sprintf("Бронирование отменено: %s", reason),
			Timestamp:  now,
		})

		result = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: booking id=%d cancelled, needs_refund=%t", bookingID, result.NeedsManualRefund)

	// Оплаченная отмена уведомляет студента (ручной возврат), остальные - тренера
	if result.NeedsManualRefund {
		s.notify(ctx, result.UserID, notifTitleBookingCancelled,
			fmt.Sprintf("Занятие %s отменено. Тренер свяжется с вами по возврату оплаты",
				result.EffectiveDate().Format("02.01.2006 15:04")))
	} else if isStudent {
		s.notify(ctx, result.TrainerID, notifTitleBookingCancelled,
			fmt.Sprintf("%s отменил занятие %s", result.UserName, result.EffectiveDate().Format("02.01.2006 15:04")))
	}

	return &models.CancelBookingResponse{
		BookingNumber:     result.BookingNumber,
		NeedsManualRefund: result.NeedsManualRefund,
	}, nil
}

// Reject отклоняет pending-заявку тренером с указанием причины
func (s *Service) Reject(ctx context.Context, bookingID int64, req *models.RejectBookingRequest) error {
	s.logger.Info("Reject: booking=%d, actor=%d", bookingID, req.ActorID)

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return err
	}

	if err := s.checkTrainerOrAdmin(ctx, booking, req.ActorID); err != nil {
		s.logger.Warn("Reject: access denied for actor=%d to booking id=%d", req.ActorID, bookingID)
		return err
	}

	if req.Reason == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}

	now := s.clock.Now()
	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if !current.CanBeRejected() {
			return ErrInvalidTransition
		}

		current.Status = domain.StatusRejected
		current.UpdatedAt = now
		releaseSlotLocked(tx, current, now)

		current.Messages = append(current.Messages, domain.Message{
			ID:         tx.NextMessageID(),
			SenderID:   req.ActorID,
			SenderName: current.TrainerName,
			Content:    fmt.Sprintf("Заявка отклонена: %s", req.Reason),
			Timestamp:  now,
		})
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Reject: booking id=%d rejected", bookingID)
	return nil
}

// Complete помечает занятие проведённым
// Доступно тренеру и администратору для confirmed и paid бронирований
func (s *Service) Complete(ctx context.Context, bookingID, actorID int64) error {
	s.logger.Info("Complete: booking=%d, actor=%d", bookingID, actorID)

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return err
	}

	if err := s.checkTrainerOrAdmin(ctx, booking, actorID); err != nil {
		s.logger.Warn("Complete: access denied for actor=%d to booking id=%d", actorID, bookingID)
		return err
	}

	now := s.clock.Now()
	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if !current.CanBeCompleted() {
			return ErrInvalidTransition
		}

		current.Status = domain.StatusCompleted
		current.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Complete: booking id=%d completed", bookingID)
	return nil
}
