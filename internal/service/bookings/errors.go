package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTrainerNotFound возвращается, когда тренер не найден
	ErrTrainerNotFound = errors.New("trainer not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается, когда бронирование не в том состоянии,
	// которое допускает запрошенный переход
	ErrInvalidTransition = errors.New("booking state does not allow this transition")

	// ErrLeadTime возвращается, когда запрошенная дата ближе минимального
	// интервала до начала занятия
	ErrLeadTime = errors.New("requested date is too soon")

	// ErrCancellationWindow возвращается при попытке самостоятельной отмены
	// внутри 24-часового окна перед занятием
	ErrCancellationWindow = errors.New("cancellation window has closed")

	// ErrPaymentGateway возвращается, когда платёжный шлюз не смог
	// подтвердить платёж по return-коллбеку
	ErrPaymentGateway = errors.New("payment gateway error")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings service: internal error")
)
