package rag

import "github.com/papercomputeco/kauni/pkg/vector"

const (
	// PlaceholderID is the reserved identifier of the synthetic context
	// returned when the document store cannot be reached at all.
	PlaceholderID = "dummy_1"

	// PlaceholderContent is the body of the placeholder context.
	PlaceholderContent = "관광지 정보를 찾을 수 없습니다. 현재 데이터베이스가 설정되지 않았습니다."

	placeholderSource = "dummy"
)

// Placeholder returns a fresh placeholder context.
func Placeholder() vector.QueryResult {
	return vector.QueryResult{
		ID:       PlaceholderID,
		Content:  PlaceholderContent,
		Metadata: map[string]any{"source": placeholderSource},
		Distance: 0,
	}
}

// IsPlaceholder reports whether r is the placeholder context.
func IsPlaceholder(r vector.QueryResult) bool {
	return r.ID == PlaceholderID
}

// IsGrounded reports whether contexts carry real documents. Only the first
// context is inspected.
func IsGrounded(contexts []vector.QueryResult) bool {
	return len(contexts) > 0 && !IsPlaceholder(contexts[0])
}
