package paygate

import "errors"

var (
	// ErrGatewayUnavailable возвращается при сетевых ошибках, таймаутах и 5xx от шлюза.
	// Не фатальна: lifecycle-менеджер переходит на ручную оплату (degraded path)
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrOrderNotFound возвращается, когда ордер не найден на стороне шлюза
	ErrOrderNotFound = errors.New("payment order not found")

	// ErrInvalidReturnURL возвращается, когда return URL не содержит ID ордера
	ErrInvalidReturnURL = errors.New("invalid payment return url")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("paygate client: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paygate client: internal error")
)
