package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when any input text matches
	FailOn string

	// Err, when set, is returned from every Embed call
	Err error

	// Default is returned for texts without an entry in Embeddings
	Default []float32

	mu    sync.Mutex
	calls int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Default:    []float32{0.1, 0.2, 0.3},
	}
}

func (m *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if m.FailOn != "" && text == m.FailOn {
			return nil, fmt.Errorf("mock embedding failure for: %s", text)
		}

		if emb, ok := m.Embeddings[text]; ok {
			out[i] = emb
			continue
		}

		// Return a default embedding for any text
		out[i] = append([]float32(nil), m.Default...)
	}

	return out, nil
}

// Calls returns how many times Embed was invoked.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEmbedder) Close() error {
	return nil
}
