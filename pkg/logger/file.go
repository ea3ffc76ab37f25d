package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// OpenFile returns a JSON logger that appends to path. The returned closer
// releases the file.
func OpenFile(path string, opts ...Option) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	opts = append(opts, WithPretty(false), WithJSON(true), WithWriter(f))
	return New(opts...), f, nil
}
