// Package models contains domain entities and business models for the listener platform
package models

import (
	"time"
)

// Call session status values mirror the client app's lifecycle.
const (
	CallStatusInitiated = "initiated"
	CallStatusAnswered  = "answered"
	CallStatusCompleted = "completed"
	CallStatusMissed    = "missed"
	CallStatusRejected  = "rejected"
)

// CallSession is a voice call between a user and a listener. Completed
// sessions are picked up by the settlement worker, which derives the duration
// from the start/end pair and writes the earning ledger entry. Settled is
// flipped in the same transaction as the ledger insert so the worker can poll
// with at-least-once semantics.
type CallSession struct {
	ID string `gorm:"primaryKey;size:128" json:"id"`

	ListenerUID string `gorm:"size:128;not null;index:idx_calls_listener_uid" json:"listener_uid"`
	UserID      string `gorm:"size:128;not null" json:"user_id"`
	UserName    string `gorm:"size:100" json:"user_name"`

	Status string `gorm:"size:20;not null;index:idx_calls_status" json:"status"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// DurationSeconds and Earnings are filled in at settlement time.
	DurationSeconds int     `gorm:"not null;default:0" json:"duration_seconds"`
	Earnings        float64 `gorm:"type:decimal(10,2);not null;default:0" json:"earnings"`

	Settled *bool `gorm:"default:false;index:idx_calls_settled" json:"settled"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_calls_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CallSession) TableName() string {
	return "call_sessions"
}

// CallSessionFilter represents filter criteria for call session queries
type CallSessionFilter struct {
	ID            *string
	ListenerUID   *string
	UserID        *string
	Status        *string
	Settled       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Duration returns the call length derived from the start/end pair. Zero when
// either timestamp is missing. An inverted pair yields a negative duration,
// which the earnings calculator rejects.
func (c *CallSession) Duration() time.Duration {
	if c.StartedAt == nil || c.EndedAt == nil {
		return 0
	}
	return c.EndedAt.Sub(*c.StartedAt)
}
