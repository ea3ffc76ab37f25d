package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/kauni/pkg/vector"
)

// MockVectorDriver is a test vector driver. Query serves QueryResults, Scan
// serves ScanResults or the stored documents when ScanResults is nil.
type MockVectorDriver struct {
	QueryResults []vector.QueryResult
	ScanResults  []vector.QueryResult

	UpsertErr error
	QueryErr  error
	ScanErr   error
	CountErr  error

	mu         sync.Mutex
	order      []string
	documents  map[string]vector.Document
	queryCalls int
	scanCalls  int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		documents: make(map[string]vector.Document),
	}
}

func (m *MockVectorDriver) Upsert(_ context.Context, docs []vector.Document) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		if _, ok := m.documents[doc.ID]; !ok {
			m.order = append(m.order, doc.ID)
		}
		m.documents[doc.ID] = doc
	}
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, k int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	m.queryCalls++
	m.mu.Unlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if len(m.QueryResults) < k {
		return m.QueryResults, nil
	}
	return m.QueryResults[:k], nil
}

func (m *MockVectorDriver) Scan(_ context.Context, k int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanCalls++

	if m.ScanErr != nil {
		return nil, m.ScanErr
	}

	results := m.ScanResults
	if results == nil {
		for _, id := range m.order {
			doc := m.documents[id]
			results = append(results, vector.QueryResult{ID: doc.ID, Content: doc.Content, Metadata: doc.Metadata})
		}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MockVectorDriver) Count(_ context.Context) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.documents), nil
}

// Documents returns the upserted documents in first-insertion order.
func (m *MockVectorDriver) Documents() []vector.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]vector.Document, 0, len(m.order))
	for _, id := range m.order {
		docs = append(docs, m.documents[id])
	}
	return docs
}

// QueryCalls and ScanCalls report how often each path was taken.
func (m *MockVectorDriver) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

func (m *MockVectorDriver) ScanCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanCalls
}

func (m *MockVectorDriver) Close() error {
	return nil
}

var _ vector.Driver = (*MockVectorDriver)(nil)
