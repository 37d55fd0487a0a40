// Package models contains domain entities and business models for the listener platform
package models

import (
	"time"
)

// Earning session types.
const (
	SessionTypeCall    = "call"
	SessionTypeMessage = "message"
)

// EarningRecord is an immutable ledger entry. The source session identifier
// (call id for calls, message id for chat) is unique, so replaying a
// settlement trigger cannot create a second row. Rows are never updated or
// deleted once written.
type EarningRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// SourceID is the identifier of the session that produced this earning.
	SourceID    string `gorm:"size:128;not null;uniqueIndex:uk_earnings_source_id" json:"source_id"`
	SessionType string `gorm:"size:10;not null;index:idx_earnings_session_type" json:"session_type"`

	ListenerUID string `gorm:"size:128;not null;index:idx_earnings_listener_uid" json:"listener_uid"`

	// Amount is the listener payout, PlatformAmount the margin retained by
	// the platform. Both are rounded to two decimals at calculation time.
	Amount         float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	PlatformAmount float64 `gorm:"type:decimal(10,2);not null" json:"platform_amount"`

	// CounterpartyName is the display name of the user on the other side.
	CounterpartyName string `gorm:"size:100" json:"counterparty_name"`

	OccurredAt time.Time `gorm:"not null;index:idx_earnings_occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (EarningRecord) TableName() string {
	return "earning_records"
}

// EarningRecordFilter represents filter criteria for earning queries
type EarningRecordFilter struct {
	SourceID       *string
	SessionType    *string
	ListenerUID    *string
	OccurredAfter  *time.Time
	OccurredBefore *time.Time
}

// EarningTotals is the aggregate shape used by the admin dashboard.
type EarningTotals struct {
	ListenerTotal float64 `json:"listener_total"`
	PlatformTotal float64 `json:"platform_total"`
	Records       int64   `json:"records"`
	CallRecords   int64   `json:"call_records"`
	ChatRecords   int64   `json:"chat_records"`
}
