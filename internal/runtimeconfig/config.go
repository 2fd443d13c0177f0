// Package runtimeconfig centralizes engine configuration: execution limits,
// network policy, and the template_resolution_mode precedence resolver of
// spec.md §6, grounded on the teacher's pkg/config profile-constructor
// pattern (Default/Development/Production/Testing).
package runtimeconfig

import (
	"os"
	"time"

	"github.com/pflowhq/pflow/internal/ir"
	"github.com/pflowhq/pflow/internal/netguard"
)

// ModeEnvVar is the environment variable PFLOW_TEMPLATE_RESOLUTION_MODE, the
// third tier of spec.md §6's settings resolution hierarchy.
const ModeEnvVar = "PFLOW_TEMPLATE_RESOLUTION_MODE"

// Config holds engine-wide settings loaded from a settings file and
// overridden per invocation.
type Config struct {
	MaxExecutionTime time.Duration
	HTTPTimeout      time.Duration
	MaxResponseSize  int64

	AllowHTTP bool
	NetGuard  netguard.Config

	MaxRepairAttempts int

	// Runtime holds the settings-file-level default for
	// template_resolution_mode — the second tier of the precedence chain.
	Runtime RuntimeSettings
}

// RuntimeSettings mirrors the "runtime" key of a settings file.
type RuntimeSettings struct {
	TemplateResolutionMode ir.ResolutionMode `yaml:"template_resolution_mode"`
}

// Default returns secure, production-ready defaults.
func Default() *Config {
	return &Config{
		MaxExecutionTime:  5 * time.Minute,
		HTTPTimeout:       30 * time.Second,
		MaxResponseSize:   10 * 1024 * 1024,
		AllowHTTP:         false,
		NetGuard:          netguard.DefaultConfig(),
		MaxRepairAttempts: 3,
	}
}

// Development relaxes network policy for local iteration.
func Development() *Config {
	cfg := Default()
	cfg.AllowHTTP = true
	cfg.NetGuard.BlockPrivateIPs = false
	cfg.NetGuard.BlockLoopback = false
	cfg.MaxExecutionTime = 10 * time.Minute
	return cfg
}

// Production enforces the strictest network policy.
func Production() *Config {
	cfg := Default()
	cfg.AllowHTTP = false
	return cfg
}

// Testing shortens timeouts for fast, hermetic test runs.
func Testing() *Config {
	cfg := Default()
	cfg.AllowHTTP = true
	cfg.NetGuard.BlockPrivateIPs = false
	cfg.NetGuard.BlockLoopback = false
	cfg.MaxExecutionTime = 1 * time.Minute
	cfg.HTTPTimeout = 5 * time.Second
	return cfg
}

// Validate checks the configuration's numeric invariants.
func (c *Config) Validate() error {
	if c.MaxExecutionTime < 0 {
		return ErrInvalidExecutionTime
	}
	if c.HTTPTimeout < 0 {
		return ErrInvalidHTTPTimeout
	}
	if c.MaxResponseSize < 0 {
		return ErrInvalidMaxResponseSize
	}
	if c.MaxRepairAttempts < 0 {
		return ErrInvalidRepairAttempts
	}
	if c.Runtime.TemplateResolutionMode != "" && !c.Runtime.TemplateResolutionMode.Valid() {
		return ErrInvalidResolutionMode
	}
	return nil
}

// ResolveMode implements spec.md §6's precedence chain: workflow IR key >
// settings file (runtime.template_resolution_mode) > environment variable
// PFLOW_TEMPLATE_RESOLUTION_MODE > "strict".
func ResolveMode(w *ir.Workflow, cfg *Config) ir.ResolutionMode {
	if w != nil && w.TemplateResolutionMode.Valid() {
		return w.TemplateResolutionMode
	}
	if cfg != nil && cfg.Runtime.TemplateResolutionMode.Valid() {
		return cfg.Runtime.TemplateResolutionMode
	}
	if envMode := ir.ResolutionMode(os.Getenv(ModeEnvVar)); envMode.Valid() {
		return envMode
	}
	return ir.ModeStrict
}
