package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// CaptchaTTL is the validity window for captcha challenges
	CaptchaTTL = 5 * time.Minute
)

// Phone number constants
const (
	// CountryCodePrefix is prepended to all stored phone numbers
	CountryCodePrefix = "+91"
)

// Currency and rounding
const (
	RupeeCurrency = "INR"
)

// Provisioning constants
const (
	// DefaultRejectionReason is recorded when an admin rejects an
	// application without giving one
	DefaultRejectionReason = "Application did not meet requirements."
)

// Settlement worker defaults
const (
	DefaultSettlementInterval = 30 * time.Second
	DefaultWatcherInterval    = time.Minute
	DefaultSettlementBatch    = 100
)

// HTTP constants
const (
	// CORSMaxAge is the preflight cache lifetime in seconds
	CORSMaxAge = 86400
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Request-scoped context keys set by HTTP handlers
const (
	RequestIDKey ContextKey = "request_id"
	UserAgentKey ContextKey = "user_agent"
	IPAddressKey ContextKey = "ip_address"
	EndpointKey  ContextKey = "endpoint"
)
