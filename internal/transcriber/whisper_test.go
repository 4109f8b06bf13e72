package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hushwire/voxd/internal/config"
)

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.wav")
	if err := os.WriteFile(path, []byte("RIFF-fake-audio"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestWhisperTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model field %q", got)
		}
		if got := r.FormValue("language"); got != "pt" {
			t.Errorf("unexpected language field %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello world","language":"pt"}`))
	}))
	defer server.Close()

	backend := NewWhisper(config.TranscriberConfig{
		Credential: "sk-test",
		Endpoint:   server.URL,
		Language:   "pt",
		TimeoutMS:  5000,
	})

	res, err := backend.Transcribe(context.Background(), writeArtifact(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello world" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Language != "pt" {
		t.Fatalf("unexpected language %q", res.Language)
	}
}

func TestWhisperMissingCredentialFailsFast(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	backend := NewWhisper(config.TranscriberConfig{Endpoint: server.URL, TimeoutMS: 5000})
	_, err := backend.Transcribe(context.Background(), writeArtifact(t))
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
	if called {
		t.Fatal("no network call may happen without a credential")
	}
}

func TestWhisperUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}))
	defer server.Close()

	backend := NewWhisper(config.TranscriberConfig{
		Credential: "sk-bad",
		Endpoint:   server.URL,
		TimeoutMS:  5000,
	})

	_, err := backend.Transcribe(context.Background(), writeArtifact(t))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if backendErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", backendErr.Status)
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("error text must carry status and upstream message, got %q", err.Error())
	}
}

func TestWhisperTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	backend := NewWhisper(config.TranscriberConfig{
		Credential: "sk-test",
		Endpoint:   server.URL,
		TimeoutMS:  1000,
	})

	_, err := backend.Transcribe(context.Background(), writeArtifact(t))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected backend error wrapping transport failure, got %v", err)
	}
	if backendErr.Err == nil {
		t.Fatal("transport failure must carry the underlying cause")
	}
}

func TestWhisperMissingArtifact(t *testing.T) {
	backend := NewWhisper(config.TranscriberConfig{Credential: "sk-test", TimeoutMS: 1000})
	if _, err := backend.Transcribe(context.Background(), "/nonexistent/capture.wav"); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}
