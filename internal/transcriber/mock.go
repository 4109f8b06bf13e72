package transcriber

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	mockConfidence = 0.96
	mockLanguage   = "pt-BR"
	mockDelay      = 350 * time.Millisecond
)

var mockPhrases = []string{
	"Olá, este é um teste de transcrição.",
	"O microfone está funcionando corretamente.",
	"Gravação de voz concluída com sucesso.",
	"Por favor, confirme o texto transcrito.",
	"Este resultado foi gerado localmente.",
}

// Mock returns canned phrases after a fixed simulated processing delay.
// It ignores the audio reference entirely, which makes it usable offline.
type Mock struct {
	mu    sync.Mutex
	rng   *rand.Rand
	delay time.Duration
}

func NewMock() *Mock {
	return NewMockWithSeed(time.Now().UnixNano())
}

// NewMockWithSeed fixes the phrase sequence for tests.
func NewMockWithSeed(seed int64) *Mock {
	return &Mock{
		rng:   rand.New(rand.NewSource(seed)),
		delay: mockDelay,
	}
}

func (m *Mock) Transcribe(ctx context.Context, _ string) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-time.After(m.delay):
	}

	m.mu.Lock()
	phrase := mockPhrases[m.rng.Intn(len(mockPhrases))]
	m.mu.Unlock()

	return Result{
		Text:       phrase,
		Confidence: mockConfidence,
		Language:   mockLanguage,
	}, nil
}

func (m *Mock) Remote() bool { return false }
