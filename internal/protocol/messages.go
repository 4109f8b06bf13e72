package protocol

import "time"

// StateSnapshot is the voice pipeline state broadcast on the bus after every
// published change.
type StateSnapshot struct {
	SessionID     string    `json:"session_id,omitempty"`
	Recording     bool      `json:"recording"`
	Processing    bool      `json:"processing"`
	Text          string    `json:"text"`
	Error         string    `json:"error,omitempty"`
	RemoteBackend bool      `json:"remote_backend"`
	Timestamp     time.Time `json:"timestamp"`
}

// Transcript carries the final text of a completed capture session.
type Transcript struct {
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence,omitempty"`
	Language   string    `json:"language,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	SubjectCmdStart      = "voice.cmd.start"
	SubjectCmdStop       = "voice.cmd.stop"
	SubjectCmdClearText  = "voice.cmd.clear_text"
	SubjectCmdClearError = "voice.cmd.clear_error"
	SubjectState         = "voice.state"
	SubjectTranscript    = "voice.transcript.final"
)
