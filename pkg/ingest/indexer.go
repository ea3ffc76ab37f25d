package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/papercomputeco/kauni/pkg/embeddings"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

const defaultBatchSize = 32

// IndexerConfig configures an Indexer.
type IndexerConfig struct {
	Embedder embeddings.Embedder
	Driver   vector.Driver
	Logger   *slog.Logger

	// Dimensions is the expected embedding size. Zero skips the check.
	Dimensions int

	// BatchSize bounds how many documents are embedded and upserted at once.
	BatchSize int
}

// Indexer embeds documents and upserts them into the store.
type Indexer struct {
	embedder   embeddings.Embedder
	driver     vector.Driver
	logger     *slog.Logger
	dimensions int
	batchSize  int
}

// NewIndexer creates an Indexer.
func NewIndexer(cfg IndexerConfig) *Indexer {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	return &Indexer{
		embedder:   cfg.Embedder,
		driver:     cfg.Driver,
		logger:     cfg.Logger,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}
}

// Index embeds and upserts docs, assigning random IDs to documents without
// one. It returns the number of documents written. An empty input is a no-op.
func (ix *Indexer) Index(ctx context.Context, docs []vector.Document) (int, error) {
	indexed := 0

	for start := 0; start < len(docs); start += ix.batchSize {
		end := min(start+ix.batchSize, len(docs))
		batch := make([]vector.Document, end-start)
		copy(batch, docs[start:end])

		texts := make([]string, len(batch))
		for i := range batch {
			if batch[i].ID == "" {
				batch[i].ID = uuid.NewString()
			}
			texts[i] = batch[i].Content
		}

		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if len(vectors) != len(batch) {
			return indexed, fmt.Errorf("%w: got %d embeddings for %d documents",
				vector.ErrEmbedding, len(vectors), len(batch))
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}

		if ix.dimensions > 0 {
			if err := vector.CheckDimensions(batch, ix.dimensions); err != nil {
				return indexed, err
			}
		}

		if err := ix.driver.Upsert(ctx, batch); err != nil {
			return indexed, fmt.Errorf("upserting batch at %d: %w", start, err)
		}

		indexed += len(batch)
		ix.logger.Debug("indexed batch",
			"batch_start", start,
			"batch_size", len(batch),
		)
	}

	if indexed > 0 {
		ix.logger.Info("indexed documents", "count", indexed)
	}
	return indexed, nil
}
