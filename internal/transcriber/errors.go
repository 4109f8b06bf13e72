package transcriber

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned before any I/O when a remote backend is
// used without a configured credential.
var ErrMissingCredential = errors.New("no transcription credential configured")

// BackendError reports a failed remote transcription call, carrying the
// upstream status and message when the endpoint produced one.
type BackendError struct {
	Status  int
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transcription backend failed (status %d): %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("transcription backend failed: %v", e.Err)
	}
	return "transcription backend failed"
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
