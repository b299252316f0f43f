// ABOUTME: Default values for minisync configuration
// ABOUTME: Timeouts and probe intervals used when the config file leaves them unset

package config

import "time"

const (
	// DefaultRequestTimeout bounds remote calls when no timeout is configured.
	DefaultRequestTimeout = 30 * time.Second

	// ProbeTimeout bounds the connectivity check; kept short so an offline
	// dispatch falls back to the queue quickly instead of hanging the caller.
	ProbeTimeout = 3 * time.Second
)
