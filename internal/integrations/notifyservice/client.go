package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент сервиса push-уведомлений
//
// Уведомления - fire-and-forget: отказ доставки логируется вызывающей
// стороной и никогда не влияет на бизнес-переход.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Notification тело уведомления
type Notification struct {
	UserID int64  `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// NewClient создает новый экземпляр клиента нотификаций
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send отправляет push-уведомление пользователю
func (c *Client) Send(ctx context.Context, userID int64, title, body string) error {
	payload, err := json.Marshal(Notification{UserID: userID, Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("notifyservice: marshal notification: %w", err)
	}

	reqURL := fmt.Sprintf("%s/internal/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notifyservice: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notifyservice: send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notifyservice: unexpected status code %d: %s", resp.StatusCode, string(respBody))
	}

	c.log.Info("Notification sent: user=%d, title=%q", userID, title)
	return nil
}
