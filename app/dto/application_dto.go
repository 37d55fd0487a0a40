// Package dto contains request and response types for the HTTP API
package dto

// SubmitApplicationRequest is the public application form for prospective listeners
type SubmitApplicationRequest struct {
	FullName    string   `json:"full_name" validate:"required,min=3,max=255" example:"Priya Sharma"`
	DisplayName string   `json:"display_name" validate:"required,min=2,max=100" example:"Priya"`
	Phone       string   `json:"phone" validate:"required" example:"+919876543210"`
	Profession  string   `json:"profession" validate:"required,min=2,max=100" example:"Counselor"`
	Languages   []string `json:"languages" validate:"required,min=1,dive,min=2,max=30" example:"hindi,english"`

	// Payout details: either the bank triple or a UPI id must be present.
	BankAccount *string `json:"bank_account,omitempty" validate:"omitempty,min=9,max=34"`
	IFSC        *string `json:"ifsc,omitempty" validate:"omitempty,len=11"`
	BankName    *string `json:"bank_name,omitempty" validate:"omitempty,max=100"`
	UPIID       *string `json:"upi_id,omitempty" validate:"omitempty,max=100"`

	ChallengeID  string  `json:"challenge_id" validate:"required"`
	CaptchaAngle float64 `json:"captcha_angle" validate:"required"`
}

// SubmitApplicationResponse acknowledges a received application
type SubmitApplicationResponse struct {
	Message       string `json:"message"`
	ApplicationID string `json:"application_id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Status        string `json:"status" example:"pending"`
}

// ApplicationDTO is the admin-facing view of a listener application
type ApplicationDTO struct {
	ID              uint     `json:"id" example:"42"`
	UUID            string   `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	FullName        string   `json:"full_name"`
	DisplayName     string   `json:"display_name"`
	Phone           string   `json:"phone"`
	Profession      string   `json:"profession"`
	Languages       []string `json:"languages"`
	BankAccount     *string  `json:"bank_account,omitempty"`
	IFSC            *string  `json:"ifsc,omitempty"`
	BankName        *string  `json:"bank_name,omitempty"`
	UPIID           *string  `json:"upi_id,omitempty"`
	Status          string   `json:"status" example:"pending"`
	RejectionReason *string  `json:"rejection_reason,omitempty"`
	ListenerUID     *string  `json:"listener_uid,omitempty"`
	CreatedAt       string   `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListApplicationsRequest filters the admin application queue
type ListApplicationsRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListApplicationsResponse wraps a page of applications
type ListApplicationsResponse struct {
	Items []ApplicationDTO `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
}

// ApproveApplicationRequest approves a pending application and provisions the listener
type ApproveApplicationRequest struct {
	ApplicationUUID string `json:"application_uuid" validate:"required,uuid4"`
}

// ApproveApplicationResponse reports the provisioned listener
type ApproveApplicationResponse struct {
	Message     string `json:"message"`
	ListenerUID string `json:"listener_uid"`
	Status      string `json:"status" example:"onboarding_required"`
}

// RejectApplicationRequest rejects a pending application
type RejectApplicationRequest struct {
	ApplicationUUID string `json:"application_uuid" validate:"required,uuid4"`
	Reason          string `json:"reason" validate:"omitempty,max=500"`
}

// RejectApplicationResponse acknowledges a rejection
type RejectApplicationResponse struct {
	Message string `json:"message"`
	Status  string `json:"status" example:"rejected"`
}
