// Package dto contains request and response types for the HTTP API
package dto

// ListenerDTO is the listener profile as returned by the API
type ListenerDTO struct {
	UID                string   `json:"uid" example:"acc_8f14e45fceea"`
	DisplayName        string   `json:"display_name" example:"Priya"`
	RealName           string   `json:"real_name"`
	Phone              string   `json:"phone" example:"+919876543210"`
	Profession         string   `json:"profession"`
	Languages          []string `json:"languages"`
	AvatarURL          string   `json:"avatar_url,omitempty"`
	City               string   `json:"city,omitempty"`
	Age                int      `json:"age,omitempty"`
	Status             string   `json:"status" example:"active"`
	Availability       string   `json:"availability" example:"Available"`
	OnboardingComplete bool     `json:"onboarding_complete"`
	TotalEarnings      float64  `json:"total_earnings"`
	TotalCalls         int64    `json:"total_calls"`
	TotalMinutes       float64  `json:"total_minutes"`
	TotalMessages      int64    `json:"total_messages"`
	NotifyCalls        bool     `json:"notify_calls"`
	NotifyMessages     bool     `json:"notify_messages"`
	IsAdmin            bool     `json:"is_admin"`
	CreatedAt          string   `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// UpdateAvailabilityRequest changes the listener's live availability state
type UpdateAvailabilityRequest struct {
	ListenerUID  string `json:"listener_uid" validate:"required"`
	Availability string `json:"availability" validate:"required,oneof=Available Busy Break Offline" example:"Available"`
}

// UpdateAvailabilityResponse acknowledges the change
type UpdateAvailabilityResponse struct {
	Message      string `json:"message"`
	Availability string `json:"availability"`
}

// UpdateNotificationPreferencesRequest toggles which session types the
// listener app alerts on
type UpdateNotificationPreferencesRequest struct {
	ListenerUID    string `json:"listener_uid" validate:"required"`
	NotifyCalls    *bool  `json:"notify_calls" validate:"required"`
	NotifyMessages *bool  `json:"notify_messages" validate:"required"`
}

// UpdateNotificationPreferencesResponse echoes the stored preferences
type UpdateNotificationPreferencesResponse struct {
	Message        string `json:"message"`
	NotifyCalls    bool   `json:"notify_calls"`
	NotifyMessages bool   `json:"notify_messages"`
}

// CompleteOnboardingRequest finalizes a listener's onboarding profile
type CompleteOnboardingRequest struct {
	ListenerUID string `json:"listener_uid" validate:"required"`
	DisplayName string `json:"display_name" validate:"omitempty,min=2,max=100"`
	AvatarURL   string `json:"avatar_url" validate:"omitempty,url,max=512"`
	City        string `json:"city" validate:"required,min=2,max=100"`
	Age         int    `json:"age" validate:"required,gte=18,lte=80"`
}

// CompleteOnboardingResponse reports the listener's status after onboarding
type CompleteOnboardingResponse struct {
	Message string `json:"message"`
	Status  string `json:"status" example:"active"`
}

// SetAdminRoleRequest grants or revokes admin privileges on a listener account
type SetAdminRoleRequest struct {
	ListenerUID string `json:"listener_uid" validate:"required"`
	IsAdmin     bool   `json:"is_admin"`
}

// SetAdminRoleResponse acknowledges the role change
type SetAdminRoleResponse struct {
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin"`
}

// ListListenersRequest filters the admin listener directory
type ListListenersRequest struct {
	Status       string `query:"status" validate:"omitempty,oneof=onboarding_required pending active suspended rejected"`
	Availability string `query:"availability" validate:"omitempty,oneof=Available Busy Break Offline"`
	Page         int    `query:"page" validate:"omitempty,gte=1"`
	PageSize     int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListListenersResponse wraps a page of listeners
type ListListenersResponse struct {
	Items []ListenerDTO `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
}

// SetListenerStatusRequest suspends or reinstates a listener account
type SetListenerStatusRequest struct {
	ListenerUID string `json:"listener_uid" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=active suspended"`
}

// SetListenerStatusResponse acknowledges the status change
type SetListenerStatusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
