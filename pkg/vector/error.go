package vector

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a collection or table is not found in the store.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore is returned when the document store rejects or fails an operation.
	ErrStore = errors.New("document store failed")

	// ErrDimensionMismatch is returned when an embedding does not have the
	// configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnavailable is returned by every operation of an UnavailableDriver.
	ErrUnavailable = errors.New("document store unavailable")
)

// CheckDimensions verifies that every document embedding has exactly dims
// entries.
func CheckDimensions(docs []Document, dims int) error {
	for _, d := range docs {
		if len(d.Embedding) != dims {
			return fmt.Errorf("%w: document %q has %d dimensions, expected %d",
				ErrDimensionMismatch, d.ID, len(d.Embedding), dims)
		}
	}
	return nil
}
