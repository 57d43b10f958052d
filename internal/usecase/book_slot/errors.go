package book_slot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("book_slot: slot not found")

	// ErrSlotAlreadyBooked возвращается, когда слот уже занят другим студентом
	ErrSlotAlreadyBooked = errors.New("book_slot: slot already booked")

	// ErrLeadTime возвращается, когда слот начинается раньше минимального
	// интервала до начала занятия
	ErrLeadTime = errors.New("book_slot: slot starts too soon")

	// ErrUserNotFound возвращается, когда студент не найден
	ErrUserNotFound = errors.New("book_slot: user not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках use case
	ErrInternal = errors.New("book_slot: internal error")
)
