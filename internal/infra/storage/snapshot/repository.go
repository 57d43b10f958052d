package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m04kA/SMC-TrainingService/internal/domain"
	"github.com/m04kA/SMC-TrainingService/pkg/psqlbuilder"
)

// Repository шлюз персистентности: полная перезапись коллекций слотов и
// бронирований в Postgres и их загрузка при старте.
//
// Синхронизация - whole-collection overwrite в одной транзакции, поэтому
// повторный запуск цикла безопасен (at-least-once).
type Repository struct {
	db *sql.DB
}

// NewRepository создает новый экземпляр шлюза персистентности
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll перезаписывает обе коллекции целиком в одной транзакции
func (r *Repository) ReplaceAll(ctx context.Context, slots []*domain.Slot, bookings []*domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: ReplaceAll - begin: %v", ErrTx, err)
	}
	defer tx.Rollback()

	// Сообщения ссылаются на бронирования, удаляем в обратном порядке
	for _, table := range []string{"booking_messages", "bookings", "slots"} {
		query, args, err := psqlbuilder.Delete(table).ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceAll - build delete %s: %v", ErrBuildQuery, table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: ReplaceAll - delete %s: %v", ErrExecQuery, table, err)
		}
	}

	for _, slot := range slots {
		if err := r.insertSlot(ctx, tx, slot); err != nil {
			return err
		}
	}
	for _, booking := range bookings {
		if err := r.insertBooking(ctx, tx, booking); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: ReplaceAll - commit: %v", ErrTx, err)
	}
	return nil
}

func (r *Repository) insertSlot(ctx context.Context, tx *sql.Tx, slot *domain.Slot) error {
	query, args, err := psqlbuilder.Insert("slots").
		Columns(
			"id",
			"trainer_id",
			"start_time",
			"duration_minutes",
			"price",
			"is_booked",
			"booked_by_user_id",
			"created_at",
			"updated_at",
		).
		Values(
			slot.ID,
			slot.TrainerID,
			slot.StartTime,
			slot.DurationMinutes,
			slot.Price,
			slot.IsBooked,
			slot.BookedByUserID,
			slot.CreatedAt,
			slot.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertSlot - build insert: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertSlot - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) insertBooking(ctx context.Context, tx *sql.Tx, booking *domain.Booking) error {
	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"booking_number",
			"slot_id",
			"trainer_id",
			"trainer_name",
			"user_id",
			"user_name",
			"user_email",
			"requested_date",
			"confirmed_date",
			"duration_minutes",
			"price",
			"status",
			"payment_status",
			"payment_deadline",
			"payment_order_id",
			"payment_transaction_id",
			"payment_link",
			"paid_at",
			"needs_manual_refund",
			"reminded_at",
			"cancellation_reason",
			"cancelled_at",
			"created_at",
			"updated_at",
		).
		Values(
			booking.ID,
			booking.BookingNumber,
			booking.SlotID,
			booking.TrainerID,
			booking.TrainerName,
			booking.UserID,
			booking.UserName,
			booking.UserEmail,
			booking.RequestedDate,
			booking.ConfirmedDate,
			booking.DurationMinutes,
			booking.Price,
			booking.Status,
			booking.PaymentStatus,
			booking.PaymentDeadline,
			booking.PaymentOrderID,
			booking.PaymentTransactionID,
			booking.PaymentLink,
			booking.PaidAt,
			booking.NeedsManualRefund,
			booking.RemindedAt,
			booking.CancellationReason,
			booking.CancelledAt,
			booking.CreatedAt,
			booking.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertBooking - build insert: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertBooking - execute insert: %v", ErrExecQuery, err)
	}

	for _, message := range booking.Messages {
		query, args, err := psqlbuilder.Insert("booking_messages").
			Columns("id", "booking_id", "sender_id", "sender_name", "content", "sent_at", "is_read").
			Values(message.ID, booking.ID, message.SenderID, message.SenderName, message.Content, message.Timestamp, message.Read).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: insertBooking - build message insert: %v", ErrBuildQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insertBooking - execute message insert: %v", ErrExecQuery, err)
		}
	}
	return nil
}

// LoadAll загружает обе коллекции целиком (вызывается при старте сервиса)
func (r *Repository) LoadAll(ctx context.Context) ([]*domain.Slot, []*domain.Booking, error) {
	slots, err := r.loadSlots(ctx)
	if err != nil {
		return nil, nil, err
	}

	bookings, err := r.loadBookings(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := r.attachMessages(ctx, bookings); err != nil {
		return nil, nil, err
	}

	return slots, bookings, nil
}

func (r *Repository) loadSlots(ctx context.Context) ([]*domain.Slot, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"trainer_id",
		"start_time",
		"duration_minutes",
		"price",
		"is_booked",
		"booked_by_user_id",
		"created_at",
		"updated_at",
	).
		From("slots").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadSlots - build select: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadSlots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var slots []*domain.Slot
	for rows.Next() {
		var slot domain.Slot
		err := rows.Scan(
			&slot.ID,
			&slot.TrainerID,
			&slot.StartTime,
			&slot.DurationMinutes,
			&slot.Price,
			&slot.IsBooked,
			&slot.BookedByUserID,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: loadSlots - scan slot: %v", ErrScanRow, err)
		}
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadSlots - rows: %v", ErrScanRow, err)
	}
	return slots, nil
}

func (r *Repository) loadBookings(ctx context.Context) ([]*domain.Booking, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"booking_number",
		"slot_id",
		"trainer_id",
		"trainer_name",
		"user_id",
		"user_name",
		"user_email",
		"requested_date",
		"confirmed_date",
		"duration_minutes",
		"price",
		"status",
		"payment_status",
		"payment_deadline",
		"payment_order_id",
		"payment_transaction_id",
		"payment_link",
		"paid_at",
		"needs_manual_refund",
		"reminded_at",
		"cancellation_reason",
		"cancelled_at",
		"created_at",
		"updated_at",
	).
		From("bookings").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadBookings - build select: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBookings - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		var b domain.Booking
		err := rows.Scan(
			&b.ID,
			&b.BookingNumber,
			&b.SlotID,
			&b.TrainerID,
			&b.TrainerName,
			&b.UserID,
			&b.UserName,
			&b.UserEmail,
			&b.RequestedDate,
			&b.ConfirmedDate,
			&b.DurationMinutes,
			&b.Price,
			&b.Status,
			&b.PaymentStatus,
			&b.PaymentDeadline,
			&b.PaymentOrderID,
			&b.PaymentTransactionID,
			&b.PaymentLink,
			&b.PaidAt,
			&b.NeedsManualRefund,
			&b.RemindedAt,
			&b.CancellationReason,
			&b.CancelledAt,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: loadBookings - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBookings - rows: %v", ErrScanRow, err)
	}
	return bookings, nil
}

func (r *Repository) attachMessages(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"booking_id",
		"sender_id",
		"sender_name",
		"content",
		"sent_at",
		"is_read",
	).
		From("booking_messages").
		OrderBy("booking_id", "id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachMessages - build select: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachMessages - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			message   domain.Message
			bookingID int64
		)
		err := rows.Scan(
			&message.ID,
			&bookingID,
			&message.SenderID,
			&message.SenderName,
			&message.Content,
			&message.Timestamp,
			&message.Read,
		)
		if err != nil {
			return fmt.Errorf("%w: attachMessages - scan message: %v", ErrScanRow, err)
		}
		if booking, ok := byID[bookingID]; ok {
			booking.Messages = append(booking.Messages, message)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachMessages - rows: %v", ErrScanRow, err)
	}
	return nil
}
