package paygate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client клиент платёжного шлюза
//
// Единственная интеграция с реальной задержкой: все вызовы идут с таймаутом
// httpClient, чтобы не блокировать sweep-цикл и переходы других бронирований.
type Client struct {
	baseURL    string
	currency   string
	httpClient *http.Client
	log        Logger
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NewClient создает новый экземпляр клиента платёжного шлюза
func NewClient(baseURL string, currency string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		currency: currency,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreateOrder создает платёжный ордер
// В описание платежа включается bookingNumber для сверки
func (c *Client) CreateOrder(ctx context.Context, amount float64, bookingNumber, description string) (*Order, error) {
	c.log.Info("CreateOrder: amount=%.2f, booking_number=%s", amount, bookingNumber)

	payload := CreateOrderRequest{
		Amount:        amount,
		Currency:      c.currency,
		BookingNumber: bookingNumber,
		Description:   description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	reqURL := fmt.Sprintf("%s/v1/orders", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Сетевые ошибки и таймауты - повод для degraded path, не падение
		return nil, fmt.Errorf("%w: create order: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusBadRequest:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: order rejected: %s", ErrInvalidResponse, string(respBody))
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: failed to decode order: %v", ErrInvalidResponse, err)
	}
	if order.OrderID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrInvalidResponse)
	}

	c.log.Info("CreateOrder: created order_id=%s for booking_number=%s", order.OrderID, bookingNumber)
	return &order, nil
}

// CaptureOrder подтверждает платёж по ордеру и возвращает transaction ID
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	c.log.Info("CaptureOrder: capturing order_id=%s", orderID)

	reqURL := fmt.Sprintf("%s/v1/orders/%s/capture", c.baseURL, url.PathEscape(orderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: capture order: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// Продолжаем обработку
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var capture Capture
	if err := json.NewDecoder(resp.Body).Decode(&capture); err != nil {
		return nil, fmt.Errorf("%w: failed to decode capture: %v", ErrInvalidResponse, err)
	}
	if capture.TransactionID == "" {
		return nil, fmt.Errorf("%w: empty transaction id", ErrInvalidResponse)
	}

	c.log.Info("CaptureOrder: captured order_id=%s, transaction_id=%s", orderID, capture.TransactionID)
	return &capture, nil
}

// ParseReturnURL извлекает ID ордера из provider-initiated return URL.
// Шлюз передает ордер в query-параметре token (или orderId).
func ParseReturnURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReturnURL, err)
	}

	query := parsed.Query()
	if token := query.Get("token"); token != "" {
		return token, nil
	}
	if orderID := query.Get("orderId"); orderID != "" {
		return orderID, nil
	}

	return "", fmt.Errorf("%w: missing order token", ErrInvalidReturnURL)
}
