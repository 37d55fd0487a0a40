// Package models contains domain entities and business models for the listener platform
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Application status values. Transitions are one-way: pending -> approved or
// pending -> rejected, nothing else. Applications are never deleted; they are
// kept as the audit trail of who applied and what was decided.
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Application is a submitted request to become a listener.
type Application struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_applications_uuid" json:"uuid"`

	FullName    string `gorm:"size:255;not null" json:"full_name"`
	DisplayName string `gorm:"size:100;not null" json:"display_name"`

	// Phone is stored normalized with the country code (+91XXXXXXXXXX).
	// Unique across non-rejected applications, enforced by the submission flow.
	Phone string `gorm:"size:16;not null;index:idx_applications_phone" json:"phone"`

	Profession string         `gorm:"size:100;not null" json:"profession"`
	Languages  pq.StringArray `gorm:"type:text[];not null" json:"languages"`

	// Payout details: either the bank triple or a UPI id must be present.
	BankAccount *string `gorm:"size:34" json:"bank_account,omitempty"`
	IFSC        *string `gorm:"size:11" json:"ifsc,omitempty"`
	BankName    *string `gorm:"size:100" json:"bank_name,omitempty"`
	UPIID       *string `gorm:"size:100" json:"upi_id,omitempty"`

	Status          string  `gorm:"size:20;not null;default:'pending';index:idx_applications_status" json:"status"`
	RejectionReason *string `gorm:"type:text" json:"rejection_reason,omitempty"`

	// ListenerUID links an approved application to the provisioned profile.
	ListenerUID *string `gorm:"size:128;index:idx_applications_listener_uid" json:"listener_uid,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_applications_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}

// BeforeCreate ensures UUID is set
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}

// ApplicationFilter represents filter criteria for application queries
type ApplicationFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Phone         *string
	Status        *string
	ListenerUID   *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// HasBankDetails reports whether the full bank triple was provided.
func (a *Application) HasBankDetails() bool {
	return a.BankAccount != nil && a.IFSC != nil && a.BankName != nil
}
