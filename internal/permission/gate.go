package permission

import (
	"context"
	"fmt"

	"github.com/hushwire/voxd/internal/config"
)

// Gate reports microphone-access consent from the host platform.
//
// Implementations never return an error: a platform-level failure is reported
// as denied. Request is idempotent; a previously granted consent is
// re-confirmed without prompting again.
type Gate interface {
	// Request prompts for consent if the platform has not already cached it.
	Request(ctx context.Context) bool
	// Query reports cached consent without prompting.
	Query(ctx context.Context) bool
}

// FromConfig builds a gate for the configured mode.
func FromConfig(cfg config.PermissionConfig) (Gate, error) {
	switch cfg.Mode {
	case "static":
		return NewStaticGate(cfg.Granted), nil
	case "exec":
		return NewExecGate(cfg.Command)
	default:
		return nil, fmt.Errorf("unknown permission mode %q", cfg.Mode)
	}
}
