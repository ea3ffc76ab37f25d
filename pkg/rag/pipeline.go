package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/papercomputeco/kauni/pkg/eventstream"
	"github.com/papercomputeco/kauni/pkg/logger"
	"github.com/papercomputeco/kauni/pkg/vector"
)

// Answer sources.
const (
	SourceGuardrail = "guardrail"
	SourceRAG       = "rag"
	SourceFallback  = "fallback"
)

// Answer confidence levels.
const (
	ConfidenceHigh = "high"
	ConfidenceLow  = "low"
)

// DefaultTopK is the number of contexts retrieved per chat query.
const DefaultTopK = 4

// ChatResult is the outcome of answering one query.
type ChatResult struct {
	Answer     string               `json:"answer"`
	Contexts   []vector.QueryResult `json:"contexts"`
	Source     string               `json:"source"`
	Confidence string               `json:"confidence"`

	// Trail lists retrieval degradations. It is kept out of the wire format.
	Trail Trail `json:"-"`
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Retriever *Retriever
	Generator *Generator
	Personas  *PersonaStore

	// Publisher receives an event per answered query. Optional.
	Publisher eventstream.Publisher
	Logger    *slog.Logger

	// TopK defaults to DefaultTopK.
	TopK int
}

// Pipeline answers chat queries: guardrail, retrieval, then generation when
// the retrieved contexts are real documents.
type Pipeline struct {
	retriever *Retriever
	generator *Generator
	personas  *PersonaStore
	publisher eventstream.Publisher
	logger    *slog.Logger
	topK      int
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.TopK < 1 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Personas == nil {
		cfg.Personas = NewPersonaStore(DefaultPersona())
	}

	return &Pipeline{
		retriever: cfg.Retriever,
		generator: cfg.Generator,
		personas:  cfg.Personas,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		topK:      cfg.TopK,
	}
}

// Answer runs the pipeline for query. It always produces a result.
func (p *Pipeline) Answer(ctx context.Context, query string) ChatResult {
	started := time.Now()
	result := p.answer(ctx, query)

	p.logger.Info("answered chat query",
		"source", result.Source,
		"confidence", result.Confidence,
		"contexts", len(result.Contexts),
		"degraded", result.Trail.Degraded(),
		"duration", time.Since(started),
	)

	p.publish(ctx, query, result, started)
	return result
}

func (p *Pipeline) answer(ctx context.Context, query string) ChatResult {
	if !IsOnTopic(query) {
		return ChatResult{
			Answer:     FallbackResponse(query),
			Contexts:   []vector.QueryResult{},
			Source:     SourceGuardrail,
			Confidence: ConfidenceHigh,
		}
	}

	contexts, trail := p.retriever.Retrieve(ctx, query, p.topK)

	if !IsGrounded(contexts) {
		return ChatResult{
			Answer:     NoDataAnswer,
			Contexts:   contexts,
			Source:     SourceFallback,
			Confidence: ConfidenceLow,
			Trail:      trail,
		}
	}

	prompt := AssemblePrompt(p.personas.Get(), query, contexts)
	return ChatResult{
		Answer:     p.generator.Generate(ctx, prompt),
		Contexts:   contexts,
		Source:     SourceRAG,
		Confidence: ConfidenceHigh,
		Trail:      trail,
	}
}

func (p *Pipeline) publish(ctx context.Context, query string, result ChatResult, started time.Time) {
	if p.publisher == nil {
		return
	}

	ids := make([]string, 0, len(result.Contexts))
	for _, c := range result.Contexts {
		ids = append(ids, c.ID)
	}
	stages := make([]string, 0, len(result.Trail))
	for _, d := range result.Trail {
		stages = append(stages, string(d.Stage))
	}

	event := eventstream.NewChatAnsweredEvent(eventstream.ChatAnswer{
		Query:          query,
		Answer:         result.Answer,
		Source:         result.Source,
		Confidence:     result.Confidence,
		ContextIDs:     ids,
		DegradedStages: stages,
		DurationMs:     time.Since(started).Milliseconds(),
	})

	if err := p.publisher.PublishChat(ctx, event); err != nil {
		p.logger.Warn("failed to publish chat event",
			"event_id", event.EventID,
			"error", err,
		)
	}
}
