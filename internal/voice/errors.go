package voice

import (
	"errors"
	"fmt"

	"github.com/hushwire/voxd/internal/capture"
	"github.com/hushwire/voxd/internal/transcriber"
)

// ErrPermissionDenied reports denied or unavailable microphone consent.
// Recoverable by a fresh start call; never fatal to the process.
var ErrPermissionDenied = errors.New("microphone permission denied")

// InvalidStateError reports a command invoked in a state that does not permit
// it. The in-flight session is left untouched.
type InvalidStateError struct {
	Command string
	Status  Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Command, e.Status)
}

// Classify maps an error from the pipeline to its journal/diagnostic class.
func Classify(err error) string {
	var (
		invalidErr *InvalidStateError
		captureErr *capture.Error
		backendErr *transcriber.BackendError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "permission"
	case errors.As(err, &invalidErr):
		return "invalid_state"
	case errors.As(err, &captureErr):
		return "capture"
	case errors.Is(err, transcriber.ErrMissingCredential):
		return "auth"
	case errors.As(err, &backendErr):
		return "backend"
	default:
		return "internal"
	}
}
