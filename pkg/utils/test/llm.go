package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/kauni/pkg/llm"
)

// MockCaller is a test llm.Caller. It answers every request with Reply, or
// fails with Err when set.
type MockCaller struct {
	ProviderName string
	Reply        string
	Err          error

	mu       sync.Mutex
	requests []*llm.ChatRequest
}

func NewMockCaller(reply string) *MockCaller {
	return &MockCaller{
		ProviderName: llm.ProviderOpenAI,
		Reply:        reply,
	}
}

func (m *MockCaller) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &llm.ChatResponse{
		Model:   "mock",
		Message: llm.NewTextMessage("assistant", m.Reply),
	}, nil
}

func (m *MockCaller) Provider() string {
	return m.ProviderName
}

// Requests returns every request received so far.
func (m *MockCaller) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.ChatRequest(nil), m.requests...)
}

var _ llm.Caller = (*MockCaller)(nil)
