package transcriber

import (
	"context"
	"fmt"
	"time"

	"github.com/hushwire/voxd/internal/config"
)

// Result captures backend output. Text is always defined, even at zero
// confidence; a missing result is reported as an error instead.
type Result struct {
	Text       string
	Confidence float64
	Language   string
}

// Backend abstracts speech-to-text backends. Backends perform exactly one
// attempt per call; retry policy belongs to the caller.
type Backend interface {
	Transcribe(ctx context.Context, audioRef string) (Result, error)
	// Remote reports whether transcription leaves the host machine.
	Remote() bool
}

// FromConfig selects a backend. An explicit mode always wins; in auto mode a
// configured credential selects the remote Whisper backend and its absence
// selects the mock.
func FromConfig(cfg config.TranscriberConfig) (Backend, error) {
	switch cfg.Mode {
	case "mock":
		return NewMock(), nil
	case "whisper":
		return NewWhisper(cfg), nil
	case "google":
		return NewGoogle(cfg), nil
	case "auto", "":
		if cfg.Credential != "" {
			return NewWhisper(cfg), nil
		}
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown transcriber mode %q", cfg.Mode)
	}
}

func clientTimeout(cfg config.TranscriberConfig) time.Duration {
	if cfg.TimeoutMS <= 0 {
		return 60 * time.Second
	}
	return time.Duration(cfg.TimeoutMS) * time.Millisecond
}
