package transcriber

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hushwire/voxd/internal/config"
)

func TestGoogleTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "api-key" {
			t.Errorf("unexpected api key %q", got)
		}
		var req googleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Config.Encoding != "LINEAR16" {
			t.Errorf("unexpected encoding %q", req.Config.Encoding)
		}
		if req.Config.SampleRateHertz != 16000 {
			t.Errorf("unexpected sample rate %d", req.Config.SampleRateHertz)
		}
		if !req.Config.EnableAutomaticPunctuation {
			t.Error("automatic punctuation must be requested")
		}
		if _, err := base64.StdEncoding.DecodeString(req.Audio.Content); err != nil {
			t.Errorf("audio content is not valid base64: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"hello","confidence":0.95}]}]}`))
	}))
	defer server.Close()

	backend := NewGoogle(config.TranscriberConfig{
		Credential: "api-key",
		Endpoint:   server.URL,
		Language:   "pt-BR",
		SampleRate: 16000,
		TimeoutMS:  5000,
	})

	res, err := backend.Transcribe(context.Background(), writeArtifact(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "hello" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Confidence != 0.95 {
		t.Fatalf("unexpected confidence %v", res.Confidence)
	}
	if res.Language != "pt-BR" {
		t.Fatalf("unexpected language %q", res.Language)
	}
}

func TestGoogleEmptyResultsIsNoSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	backend := NewGoogle(config.TranscriberConfig{
		Credential: "api-key",
		Endpoint:   server.URL,
		TimeoutMS:  5000,
	})

	res, err := backend.Transcribe(context.Background(), writeArtifact(t))
	if err != nil {
		t.Fatalf("no speech must not be an error, got %v", err)
	}
	if res.Text != "" {
		t.Fatalf("expected empty transcript, got %q", res.Text)
	}
}

func TestGoogleUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	backend := NewGoogle(config.TranscriberConfig{
		Credential: "api-key",
		Endpoint:   server.URL,
		TimeoutMS:  5000,
	})

	_, err := backend.Transcribe(context.Background(), writeArtifact(t))
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if backendErr.Status != http.StatusForbidden {
		t.Fatalf("unexpected status %d", backendErr.Status)
	}
}

func TestGoogleMissingCredentialFailsFast(t *testing.T) {
	backend := NewGoogle(config.TranscriberConfig{TimeoutMS: 5000})
	_, err := backend.Transcribe(context.Background(), writeArtifact(t))
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}
