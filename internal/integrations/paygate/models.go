package paygate

// CreateOrderRequest тело запроса на создание платёжного ордера
// bookingNumber попадает в описание платежа для сверки тренером
type CreateOrderRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	BookingNumber string  `json:"bookingNumber"`
	Description   string  `json:"description"`
}

// Order платёжный ордер, созданный шлюзом
type Order struct {
	OrderID     string `json:"orderId"`
	ApprovalURL string `json:"approvalUrl"` // ссылка для оплаты студентом
}

// Capture результат подтверждения платежа по ордеру
type Capture struct {
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// ErrorResponse модель ошибки от платёжного шлюза
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
