package rag_test

import "github.com/papercomputeco/kauni/pkg/vector"

func doc(id, content, source string, distance float32) vector.QueryResult {
	return vector.QueryResult{
		ID:       id,
		Content:  content,
		Metadata: map[string]any{"source": source},
		Distance: distance,
	}
}
