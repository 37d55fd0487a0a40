// Package dto contains request and response types for the HTTP API
package dto

// DashboardStatsResponse is the admin overview of platform activity
type DashboardStatsResponse struct {
	PendingApplications int64 `json:"pending_applications"`
	ActiveListeners     int64 `json:"active_listeners"`
	OnboardingListeners int64 `json:"onboarding_listeners"`
	SuspendedListeners  int64 `json:"suspended_listeners"`
	AvailableListeners  int64 `json:"available_listeners"`

	TotalEarnings    float64 `json:"total_earnings"`
	PlatformEarnings float64 `json:"platform_earnings"`
	SettledCalls     int64   `json:"settled_calls"`
	SettledMessages  int64   `json:"settled_messages"`
	TotalTalkMinutes float64 `json:"total_talk_minutes"`
}

// ExportEarningsRequest selects the period for the XLSX earnings report
type ExportEarningsRequest struct {
	From string `query:"from" validate:"required,datetime=2006-01-02" example:"2024-01-01"`
	To   string `query:"to" validate:"required,datetime=2006-01-02" example:"2024-01-31"`
}
