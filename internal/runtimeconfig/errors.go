package runtimeconfig

import "errors"

// Sentinel errors for configuration validation.
var (
	ErrInvalidExecutionTime   = errors.New("invalid max execution time: must be non-negative")
	ErrInvalidHTTPTimeout     = errors.New("invalid HTTP timeout: must be non-negative")
	ErrInvalidMaxResponseSize = errors.New("invalid max response size: must be non-negative")
	ErrInvalidRepairAttempts  = errors.New("invalid max repair attempts: must be non-negative")
	ErrInvalidResolutionMode  = errors.New("invalid template_resolution_mode: must be \"strict\" or \"permissive\"")

	ErrConfigFileNotFound = errors.New("settings file not found")
	ErrConfigParseFailed  = errors.New("failed to parse settings file")
)
