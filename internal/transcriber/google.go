package transcriber

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/hushwire/voxd/internal/config"
)

const defaultGoogleEndpoint = "https://speech.googleapis.com/v1/speech:recognize"

// Google submits the captured artifact as a base64 JSON payload to a hosted
// recognize endpoint authenticated by an API key in the query string.
type Google struct {
	endpoint   string
	language   string
	sampleRate int
	credential string
	client     *http.Client
}

func NewGoogle(cfg config.TranscriberConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	language := cfg.Language
	if language == "" {
		language = "en-US"
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &Google{
		endpoint:   endpoint,
		language:   language,
		sampleRate: sampleRate,
		credential: cfg.Credential,
		client:     &http.Client{Timeout: clientTimeout(cfg)},
	}
}

type googleRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleAudio             `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type googleAudio struct {
	Content string `json:"content"`
}

type googleResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (g *Google) Transcribe(ctx context.Context, audioRef string) (Result, error) {
	if g.credential == "" {
		return Result{}, ErrMissingCredential
	}

	audio, err := os.ReadFile(audioRef)
	if err != nil {
		return Result{}, fmt.Errorf("read audio artifact: %w", err)
	}

	payload := googleRequest{
		Config: googleRecognitionConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            g.sampleRate,
			LanguageCode:               g.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: googleAudio{Content: base64.StdEncoding.EncodeToString(audio)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	endpoint := g.endpoint + "?key=" + url.QueryEscape(g.credential)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, &BackendError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return Result{}, &BackendError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(raw))}
	}

	var parsed googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, &BackendError{Err: fmt.Errorf("decode response: %w", err)}
	}

	// An empty result list means no speech was detected, which is a valid
	// empty transcript rather than a failure.
	if len(parsed.Results) == 0 || len(parsed.Results[0].Alternatives) == 0 {
		return Result{Language: g.language}, nil
	}

	best := parsed.Results[0].Alternatives[0]
	return Result{
		Text:       best.Transcript,
		Confidence: best.Confidence,
		Language:   g.language,
	}, nil
}

func (g *Google) Remote() bool { return true }
