package voice

import "time"

// Status is the single authoritative lifecycle state of the active capture
// session. Derived booleans in the published state are computed from it, so
// contradictory flag combinations cannot exist.
type Status string

const (
	StatusIdle               Status = "idle"
	StatusAwaitingPermission Status = "awaiting_permission"
	StatusRecording          Status = "recording"
	StatusStopped            Status = "stopped"
	StatusProcessing         Status = "processing"
)

// Session is one in-flight or completed capture attempt. At most one session
// is active at a time; the orchestrator owns it exclusively.
type Session struct {
	ID        string
	Status    Status
	AudioRef  string
	StartedAt time.Time
}
