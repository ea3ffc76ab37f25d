// Package ingest turns local files and upstream tourism records into
// documents and indexes them into the document store.
package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/kauni/pkg/vector"
)

var textExtensions = []string{".txt", ".md"}

// IsTextFile reports whether name has a plain-text or markdown extension.
func IsTextFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range textExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadTextFile reads one file into a document with {path, filename}
// metadata. The ID is left empty.
func ReadTextFile(path string) (vector.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vector.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	return vector.Document{
		Content: string(data),
		Metadata: map[string]any{
			"path":     path,
			"filename": filepath.Base(path),
		},
	}, nil
}

// ReadTextFiles walks root recursively and returns one document per text or
// markdown file, each with a fresh random ID.
func ReadTextFiles(root string) ([]vector.Document, error) {
	var docs []vector.Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsTextFile(d.Name()) {
			return nil
		}

		doc, err := ReadTextFile(path)
		if err != nil {
			return err
		}
		doc.ID = uuid.NewString()
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return docs, nil
}
