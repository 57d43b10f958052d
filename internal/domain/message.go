package domain

import "time"

// Sender used for automated transitions (expiry, degraded payment path)
const (
	SystemSenderID   int64 = 0
	SystemSenderName       = "system"
)

// Message represents one entry of the per-booking conversation thread.
// The thread is append-only and survives terminal booking states.
type Message struct {
	ID         int64
	SenderID   int64
	SenderName string
	Content    string
	Timestamp  time.Time
	Read       bool
}

// IsSystem returns true if the message was appended by an automated transition
func (m *Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}

// NewSystemMessage создает системное сообщение для автоматических переходов
func NewSystemMessage(id int64, content string, now time.Time) Message {
	return Message{
		ID:         id,
		SenderID:   SystemSenderID,
		SenderName: SystemSenderName,
		Content:    content,
		Timestamp:  now,
	}
}
