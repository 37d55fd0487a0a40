// Package models contains domain entities and business models for the listener platform
package models

import (
	"time"
)

// ChatMessage is a single message inside a chat session. Earnings accrue per
// user-authored message, so each message carries its own settlement flag and
// the ledger entry is keyed by the message id.
type ChatMessage struct {
	ID     string `gorm:"primaryKey;size:128" json:"id"`
	ChatID string `gorm:"size:128;not null;index:idx_chat_messages_chat_id" json:"chat_id"`

	ListenerUID string `gorm:"size:128;not null;index:idx_chat_messages_listener_uid" json:"listener_uid"`
	UserID      string `gorm:"size:128;not null" json:"user_id"`
	UserName    string `gorm:"size:100" json:"user_name"`

	// SenderID distinguishes user-authored messages (which earn) from
	// listener replies (which do not).
	SenderID string `gorm:"size:128;not null" json:"sender_id"`

	Body string `gorm:"type:text" json:"body"`

	Settled *bool `gorm:"default:false;index:idx_chat_messages_settled" json:"settled"`

	SentAt    time.Time `gorm:"not null;index:idx_chat_messages_sent_at" json:"sent_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ChatMessageFilter represents filter criteria for chat message queries
type ChatMessageFilter struct {
	ID          *string
	ChatID      *string
	ListenerUID *string
	SenderID    *string
	Settled     *bool
	SentAfter   *time.Time
	SentBefore  *time.Time
}

// FromUser reports whether the message was authored by the user rather than
// the listener.
func (m *ChatMessage) FromUser() bool {
	return m.SenderID == m.UserID
}
