package rag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/kauni/pkg/embeddings"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

// Stage names a step of the retrieval cascade.
type Stage string

const (
	StageEmbed Stage = "embed"
	StageQuery Stage = "query"
	StageScan  Stage = "scan"
)

// Diagnostic records why the cascade left a stage.
type Diagnostic struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// Trail is the ordered list of degradations taken by one retrieval.
type Trail []Diagnostic

// Degraded reports whether any stage failed.
func (t Trail) Degraded() bool {
	return len(t) > 0
}

// RetrieverConfig configures a Retriever.
type RetrieverConfig struct {
	Embedder embeddings.Embedder
	Driver   vector.Driver
	Logger   *slog.Logger

	// Timeout bounds each outbound call. Zero disables it.
	Timeout time.Duration
}

// Retriever returns the contexts for a query. It never fails: ranked search
// degrades to an unranked scan, and a scan failure degrades to the
// placeholder context.
type Retriever struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *slog.Logger
	timeout  time.Duration
}

// NewRetriever creates a Retriever.
func NewRetriever(cfg RetrieverConfig) *Retriever {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Retriever{
		embedder: cfg.Embedder,
		driver:   cfg.Driver,
		logger:   cfg.Logger,
		timeout:  cfg.Timeout,
	}
}

// Retrieve returns at most k contexts for query, nearest first when ranked
// search succeeds. k below 1 is treated as 1.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]vector.QueryResult, Trail) {
	if k < 1 {
		k = 1
	}

	var trail Trail

	results, err := r.ranked(ctx, query, k, &trail)
	if err == nil {
		return limit(results, k), trail
	}

	scanCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	results, err = r.driver.Scan(scanCtx, k)
	if err != nil {
		trail = r.degrade(trail, StageScan, err)
		return []vector.QueryResult{Placeholder()}, trail
	}

	results = limit(results, k)
	unranked := make([]vector.QueryResult, len(results))
	for i, res := range results {
		res.Distance = 0
		unranked[i] = res
	}
	return unranked, trail
}

// ranked embeds query and runs the nearest-neighbor search, recording the
// failing stage on trail.
func (r *Retriever) ranked(ctx context.Context, query string, k int, trail *Trail) ([]vector.QueryResult, error) {
	embedCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	vectors, err := r.embedder.Embed(embedCtx, []string{query})
	if err == nil && len(vectors) != 1 {
		err = fmt.Errorf("%w: expected 1 embedding, got %d", vector.ErrEmbedding, len(vectors))
	}
	if err != nil {
		*trail = r.degrade(*trail, StageEmbed, err)
		return nil, err
	}

	queryCtx, cancelQuery := r.withTimeout(ctx)
	defer cancelQuery()

	results, err := r.driver.Query(queryCtx, vectors[0], k)
	if err != nil {
		*trail = r.degrade(*trail, StageQuery, err)
		return nil, err
	}
	return results, nil
}

func (r *Retriever) degrade(trail Trail, stage Stage, err error) Trail {
	r.logger.Warn("retrieval degraded",
		"stage", string(stage),
		"error", err,
	)
	return append(trail, Diagnostic{Stage: stage, Reason: err.Error()})
}

func (r *Retriever) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func limit(results []vector.QueryResult, k int) []vector.QueryResult {
	if results == nil {
		return []vector.QueryResult{}
	}
	if len(results) > k {
		return results[:k]
	}
	return results
}
