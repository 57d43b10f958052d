package bookings

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	"github.com/m04kA/SMC-TrainingService/internal/service/bookings/models"
)

// AddMessage добавляет сообщение в тред бронирования
// Писать могут студент, тренер и администратор; тред append-only и
// остаётся доступным после терминальных состояний
func (s *Service) AddMessage(ctx context.Context, bookingID int64, req *models.AddMessageRequest) (*models.MessageResponse, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	if len(req.Content) > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: message content exceeds %d characters", ErrInvalidInput, domain.MaxMessageLength)
	}

	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, req.ActorID); err != nil {
		s.logger.Warn("AddMessage: access denied for actor=%d to booking id=%d", req.ActorID, bookingID)
		return nil, err
	}

	senderName := booking.UserName
	if req.ActorID != booking.UserID {
		senderName = booking.TrainerName
		if req.ActorID != booking.TrainerID {
			// Администратор пишет от своего имени
			actor, err := s.userClient.GetUser(ctx, req.ActorID)
			if err != nil {
				return nil, fmt.Errorf("%w: AddMessage - failed to get actor: %v", ErrInternal, err)
			}
			senderName = actor.Name
		}
	}

	now := s.clock.Now()
	var message domain.Message
	err = s.store.Do(func(tx *store.Txn) error {
		current, ok := tx.Booking(bookingID)
		if !ok {
			return ErrBookingNotFound
		}

		message = domain.Message{
			ID:         tx.NextMessageID(),
			SenderID:   req.ActorID,
			SenderName: senderName,
			Content:    req.Content,
			Timestamp:  now,
		}
		current.Messages = append(current.Messages, message)
		current.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AddMessage: booking id=%d, message id=%d from %d", bookingID, message.ID, req.ActorID)
	return models.FromDomainMessage(message), nil
}

// CallAccess возвращает производное правило доступа к видеозвонку.
// Тренер может начать звонок от callStartLead до начала и до конца занятия,
// студент может присоединиться в любой момент - оба только при статусе
// confirmed или paid.
func (s *Service) CallAccess(ctx context.Context, bookingID, actorID int64) (*models.CallAccessResponse, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.checkBookingAccess(ctx, booking, actorID); err != nil {
		s.logger.Warn("CallAccess: access denied for actor=%d to booking id=%d", actorID, bookingID)
		return nil, err
	}

	if !booking.AllowsCall() {
		return &models.CallAccessResponse{}, nil
	}

	now := s.clock.Now()
	start := booking.EffectiveDate()
	withinStartWindow := !now.Before(start.Add(-s.cfg.CallStartLead)) && !now.After(booking.EndTime())

	return &models.CallAccessResponse{
		CanStartCall: actorID == booking.TrainerID && withinStartWindow,
		CanJoinCall:  true,
	}, nil
}
