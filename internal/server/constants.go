package server

import "time"

// HTTP error messages for handler and middleware responses
const (
	ErrMsgUnauthorized          = "Unauthorized"
	ErrMsgTooManyRequests       = "Too Many Requests"
	ErrMsgInternal              = "internal error"
	ErrMsgDatabaseUnavailable   = "database unavailable"
	ErrMsgInvalidPeriodID       = "invalid period id"
	ErrMsgInvalidLimit          = "invalid limit"
	ErrMsgSettlementLogNotFound = "settlement log not found"
)

// Security alert message templates
const (
	SecurityAlertFailedAuth = "SECURITY ALERT: Multiple failed authentication attempts"
	SecurityAlertHighRate   = "SECURITY ALERT: Blocking high request rate"
)

// Log messages for server lifecycle and request handling
const (
	LogMsgServerStarting        = "Server starting"
	LogMsgRequestStarted        = "Request started"
	LogMsgRequestCompleted      = "Request completed"
	LogMsgAuthFailed            = "Authentication failed"
	LogMsgManualSettleRequested = "Manual settlement requested"
	LogMsgManualSettleFailed    = "Manual settlement failed"
)

// HTTP header names
const (
	HeaderAPIKey         = "X-API-Key"
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderContentType    = "X-Content-Type-Options"
	HeaderFrameOptions   = "X-Frame-Options"
	HeaderXSSProtection  = "X-XSS-Protection"
	HeaderReferrerPolicy = "Referrer-Policy"
)

// Security header values
const (
	HeaderValueNoSniff              = "nosniff"
	HeaderValueSameOrigin           = "SAMEORIGIN"
	HeaderValueXSSBlock             = "1; mode=block"
	HeaderValueReferrerStrictOrigin = "strict-origin-when-cross-origin"
)

// Public path prefixes that bypass authentication
var PublicPaths = []string{
	"/healthz",
	"/readyz",
	"/metrics",
}

// Rate limiting and alerting thresholds
const (
	FailedAuthAlertThreshold = 5
	RateLimitPerWindow       = 1000
	RateLimitWindow          = 5 * time.Minute
)

// Audit query paging
const (
	DefaultAuditQueryLimit = 100
	MaxAuditQueryLimit     = 1000
)
