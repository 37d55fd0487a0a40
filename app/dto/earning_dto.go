// Package dto contains request and response types for the HTTP API
package dto

// EarningDTO is a single settled earning ledger entry
type EarningDTO struct {
	ID               uint    `json:"id" example:"1001"`
	SourceID         string  `json:"source_id" example:"call_8f14e45fceea"`
	SessionType      string  `json:"session_type" example:"call"`
	Amount           float64 `json:"amount" example:"30.00"`
	PlatformAmount   float64 `json:"platform_amount" example:"82.80"`
	CounterpartyName string  `json:"counterparty_name,omitempty"`
	OccurredAt       string  `json:"occurred_at" example:"2024-01-15T10:30:00Z"`
	CreatedAt        string  `json:"created_at" example:"2024-01-15T10:30:05Z"`
}

// ListEarningsRequest pages through a listener's earning history
type ListEarningsRequest struct {
	ListenerUID string `query:"listener_uid" validate:"required"`
	Page        int    `query:"page" validate:"omitempty,gte=1"`
	PageSize    int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ListEarningsResponse wraps a page of earnings with aggregate totals
type ListEarningsResponse struct {
	Items []EarningDTO `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`

	TotalAmount  float64 `json:"total_amount"`
	CallCount    int64   `json:"call_count"`
	MessageCount int64   `json:"message_count"`
}
