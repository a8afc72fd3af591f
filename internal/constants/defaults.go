package constants

import "time"

// Centralized default values for timeouts and intervals.
// These provide sane defaults; environment/config may override where supported.

const (
	// Database
	DBReadTimeoutDefault  = 8 * time.Second
	DBWriteTimeoutDefault = 6 * time.Second

	// OpenAI assist
	AssistDefaultAPITimeout = 30 * time.Second
	AssistOperationTimeout  = 25 * time.Second
	AssistOpenFor           = 45 * time.Second
	AssistSlowCallThreshold = 10 * time.Second

	// API keys
	APIKeyDefaultExpiryDays = 365

	// Work reports
	WorkReportDefaultDays = 7

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second
)
