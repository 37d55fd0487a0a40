// Package models contains domain entities and business models for the listener platform
package models

import (
	"time"

	"github.com/lib/pq"
)

// Listener account status values. The account status is one-way except for
// admin-driven suspension: onboarding_required -> active (or pending, when the
// deployment requires a final manual review) -> suspended/rejected.
const (
	ListenerStatusOnboardingRequired = "onboarding_required"
	ListenerStatusPending            = "pending"
	ListenerStatusActive             = "active"
	ListenerStatusSuspended          = "suspended"
	ListenerStatusRejected           = "rejected"
)

// Live availability values shown to users in the app.
const (
	AvailabilityAvailable = "Available"
	AvailabilityBusy      = "Busy"
	AvailabilityBreak     = "Break"
	AvailabilityOffline   = "Offline"
)

// Listener is the authoritative record for an approved listener. Its UID is
// the identity service's account identifier, so exactly one profile can exist
// per identity.
type Listener struct {
	UID         string `gorm:"primaryKey;size:128" json:"uid"`
	DisplayName string `gorm:"size:100;not null" json:"display_name"`
	RealName    string `gorm:"size:255;not null" json:"real_name"`
	Phone       string `gorm:"size:16;not null;uniqueIndex:uk_listeners_phone" json:"phone"`

	Status       string `gorm:"size:30;not null;default:'onboarding_required';index:idx_listeners_status" json:"status"`
	Availability string `gorm:"size:20;not null;default:'Offline'" json:"availability"`

	IsAdmin            *bool `gorm:"default:false" json:"is_admin"`
	OnboardingComplete *bool `gorm:"default:false;index:idx_listeners_onboarding_complete" json:"onboarding_complete"`

	Profession string         `gorm:"size:100" json:"profession"`
	Languages  pq.StringArray `gorm:"type:text[]" json:"languages"`

	// Onboarding profile fields, filled in by the listener after approval.
	AvatarURL string `gorm:"size:512" json:"avatar_url"`
	City      string `gorm:"size:100" json:"city"`
	Age       int    `gorm:"default:0" json:"age"`

	// Payout details, copied from the application when present.
	BankAccount *string `gorm:"size:34" json:"bank_account,omitempty"`
	IFSC        *string `gorm:"size:11" json:"ifsc,omitempty"`
	BankName    *string `gorm:"size:100" json:"bank_name,omitempty"`
	UPIID       *string `gorm:"size:100" json:"upi_id,omitempty"`

	// Running totals, derived by the settlement flow. Incremented only when a
	// ledger row is actually created, never recomputed here.
	TotalEarnings float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total_earnings"`
	TotalCalls    int64   `gorm:"not null;default:0" json:"total_calls"`
	TotalMinutes  float64 `gorm:"type:decimal(12,2);not null;default:0" json:"total_minutes"`
	TotalMessages int64   `gorm:"not null;default:0" json:"total_messages"`

	NotifyCalls    *bool `gorm:"default:true" json:"notify_calls"`
	NotifyMessages *bool `gorm:"default:true" json:"notify_messages"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_listeners_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Earnings []EarningRecord `gorm:"foreignKey:ListenerUID" json:"-"`
}

func (Listener) TableName() string {
	return "listeners"
}

// ListenerFilter represents filter criteria for listener queries
type ListenerFilter struct {
	UID                *string
	Phone              *string
	Status             *string
	Availability       *string
	IsAdmin            *bool
	OnboardingComplete *bool
	CreatedAfter       *time.Time
	CreatedBefore      *time.Time
}

func (l *Listener) IsActive() bool {
	return l.Status == ListenerStatusActive
}

// AwaitingActivation reports whether the profile sits in the transitional
// state the onboarding watcher acts on.
func (l *Listener) AwaitingActivation() bool {
	return l.Status == ListenerStatusOnboardingRequired && l.OnboardingComplete != nil && *l.OnboardingComplete
}
