package transcriber

import (
	"testing"

	"github.com/hushwire/voxd/internal/config"
)

func TestFromConfigAutoWithoutCredential(t *testing.T) {
	backend, err := FromConfig(config.TranscriberConfig{Mode: "auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*Mock); !ok {
		t.Fatalf("expected mock backend, got %T", backend)
	}
	if backend.Remote() {
		t.Fatal("mock must not be remote")
	}
}

func TestFromConfigAutoWithCredential(t *testing.T) {
	backend, err := FromConfig(config.TranscriberConfig{Mode: "auto", Credential: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*Whisper); !ok {
		t.Fatalf("expected whisper backend, got %T", backend)
	}
	if !backend.Remote() {
		t.Fatal("whisper must be remote")
	}
}

func TestFromConfigExplicitOverride(t *testing.T) {
	// Explicit mode wins even when a credential would select remote.
	backend, err := FromConfig(config.TranscriberConfig{Mode: "mock", Credential: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*Mock); !ok {
		t.Fatalf("expected mock backend, got %T", backend)
	}

	backend, err = FromConfig(config.TranscriberConfig{Mode: "google", Credential: "key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*Google); !ok {
		t.Fatalf("expected google backend, got %T", backend)
	}
}

func TestFromConfigUnknownMode(t *testing.T) {
	if _, err := FromConfig(config.TranscriberConfig{Mode: "azure"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
