// Package models contains domain entities and business models for the listener platform
package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ListenerUID *string         `gorm:"size:128;index:idx_audit_listener_uid" json:"listener_uid,omitempty"`
	AdminID     *uint           `gorm:"index:idx_audit_admin_id" json:"admin_id,omitempty"`
	Action      string          `gorm:"size:60;not null;index:idx_audit_action" json:"action"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress   *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent   *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID   *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata    json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`

	Success      *bool   `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionApplicationSubmitted = "application_submitted"
	AuditActionApplicationApproved  = "application_approved"
	AuditActionApplicationRejected  = "application_rejected"
	AuditActionApprovalFailed       = "approval_failed"
	AuditActionIdentityRolledBack   = "identity_rolled_back"
	AuditActionOnboardingCompleted  = "onboarding_completed"
	AuditActionListenerActivated    = "listener_activated"
	AuditActionListenerSuspended    = "listener_suspended"
	AuditActionAvailabilityChanged  = "availability_changed"
	AuditActionPreferencesUpdated   = "preferences_updated"
	AuditActionAdminRoleGranted     = "admin_role_granted"
	AuditActionAdminLoginSuccess    = "admin_login_success"
	AuditActionAdminLoginFailed     = "admin_login_failed"
	AuditActionEarningSettled       = "earning_settled"
	AuditActionEarningSettleFailed  = "earning_settle_failed"
	AuditActionApprovalSMSFailed    = "approval_sms_failed"
	AuditActionRejectionSMSFailed   = "rejection_sms_failed"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	ListenerUID   *string
	AdminID       *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
