package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/integrations/paygate"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// HandlePaymentReturn обрабатывает provider-initiated return URL:
// извлекает ID ордера, подтверждает платёж у шлюза и переводит
// бронирование в paid. Повторный коллбек по уже оплаченному ордеру -
// no-op с успешным ответом.
func (s *Service) HandlePaymentReturn(ctx context.Context, rawURL string) (*models.BookingResponse, error) {
	orderID, err := paygate.ParseReturnURL(rawURL)
	if err != nil {
		s.logger.Warn("HandlePaymentReturn: invalid return url: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.logger.Info("HandlePaymentReturn: order_id=%s", orderID)

	booking, err := s.store.FindBookingByOrderID(orderID)
	if err != nil {
		if errors.Is(err, store.ErrBookingNotFound) {
			s.logger.Warn("HandlePaymentReturn: no booking for order_id=%s", orderID)
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: HandlePaymentReturn - store error: %v", ErrInternal, err)
	}

	// Идемпотентность: повторный коллбек не трогает состояние
	if booking.Status == domain.StatusPaid {
		s.logger.Info("HandlePaymentReturn: booking id=%d already paid", booking.ID)
		return models.FromDomainBooking(booking), nil
	}
	if !booking.CanAcceptPayment() {
		s.logger.Warn("HandlePaymentReturn: booking id=%d cannot accept payment, status=%s",
			booking.ID, booking.Status)
		return nil, ErrInvalidTransition
	}

	capture, err := s.payClient.CaptureOrder(ctx, orderID)
	if err != nil {
		s.logger.Error("HandlePaymentReturn: capture failed for order_id=%s: %v", orderID, err)
		return nil, fmt.Errorf("%w: capture order: %v", ErrPaymentGateway, err)
	}

	result, err := s.applyPayment(booking.ID, capture.TransactionID)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, result.TrainerID, notifTitlePaymentReceived,
		fmt.Sprintf("Бронирование %s оплачено", result.BookingNumber))

	return models.FromDomainBooking(result), nil
}

// ConfirmPaymentManually переводит бронирование в paid по ручному
// подтверждению тренера или администратора (деньги получены вне сервиса
// либо сверены по номеру бронирования)
func (s *Service) ConfirmPaymentManually(ctx context.Context, bookingID int64, req *models.ConfirmPaymentRequest) (*models.BookingResponse, error) {
	s.logger.Info("ConfirmPaymentManually: booking=%d, actor=%d", bookingID, req.ActorID)

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkTrainerOrAdmin(ctx, booking, req.ActorID); err != nil {
		s.logger.Warn("ConfirmPaymentManually: access denied for actor=%d to booking id=%d",
			req.ActorID, bookingID)
		return nil, err
	}

	transactionRef := ""
	if req.TransactionRef != nil {
		transactionRef = *req.TransactionRef
	}

	result, err := s.applyPayment(bookingID, transactionRef)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, result.TrainerID, notifTitlePaymentReceived,
		fmt.Sprintf("Бронирование %s помечено оплаченным", result.BookingNumber))

	return models.FromDomainBooking(result), nil
}

// applyPayment применяет переход awaiting_payment -> paid под блокировкой
func (s *Service) applyPayment(bookingID int64, transactionID string) (*domain.Booking, error) {
	now := s.clock.Now()

	var result *domain.Booking
	err := s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}
		if current.Status == domain.StatusPaid {
			// Гонка двух подтверждений: второе - no-op
			result = current.Clone()
			return nil
		}
		if !current.CanAcceptPayment() {
			return ErrInvalidTransition
		}

		current.Status = domain.StatusPaid
		current.PaymentStatus = domain.PaymentCompleted
		current.PaidAt = &now
		current.UpdatedAt = now
		if transactionID != "" {
			current.PaymentTransactionID = &transactionID
		}

		result = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("applyPayment: booking id=%d paid, transaction=%q", bookingID, transactionID)
	return result, nil
}
