package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hushwire/voxd/internal/config"
)

const defaultWhisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// Whisper uploads the captured artifact to a hosted Whisper-style endpoint as
// a multipart form and parses the JSON transcript from the response.
type Whisper struct {
	endpoint   string
	model      string
	language   string
	credential string
	client     *http.Client
}

func NewWhisper(cfg config.TranscriberConfig) *Whisper {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultWhisperEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &Whisper{
		endpoint:   endpoint,
		model:      model,
		language:   cfg.Language,
		credential: cfg.Credential,
		client:     &http.Client{Timeout: clientTimeout(cfg)},
	}
}

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type whisperErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (w *Whisper) Transcribe(ctx context.Context, audioRef string) (Result, error) {
	if w.credential == "" {
		return Result{}, ErrMissingCredential
	}

	audio, err := os.ReadFile(audioRef)
	if err != nil {
		return Result{}, fmt.Errorf("read audio artifact: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioRef))
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Result{}, fmt.Errorf("write audio data: %w", err)
	}
	_ = writer.WriteField("model", w.model)
	if w.language != "" {
		_ = writer.WriteField("language", w.language)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, &buf)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.credential)

	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, &BackendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		var upstream whisperErrorResponse
		message := string(bytes.TrimSpace(body))
		if err := json.Unmarshal(body, &upstream); err == nil && upstream.Error.Message != "" {
			message = upstream.Error.Message
		}
		return Result{}, &BackendError{Status: resp.StatusCode, Message: message}
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, &BackendError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return Result{Text: parsed.Text, Language: parsed.Language}, nil
}

func (w *Whisper) Remote() bool { return true }
