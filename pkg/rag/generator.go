package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/papercomputeco/kauni/pkg/credentials"
	"github.com/papercomputeco/kauni/pkg/llm"
	"github.com/papercomputeco/kauni/pkg/logger"
)

const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.4
)

var providerDisplayNames = map[string]string{
	llm.ProviderOpenAI:    "OpenAI",
	llm.ProviderAnthropic: "Anthropic",
	llm.ProviderOllama:    "Ollama",
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Caller llm.Caller
	Logger *slog.Logger

	// Timeout bounds a single model call. Zero disables it.
	Timeout time.Duration

	// BreakerTimeout is how long the breaker stays open before probing
	// the provider again. Defaults to 30 seconds.
	BreakerTimeout time.Duration
}

// Generator turns an assembled prompt into answer text. Failures are
// reported as answer text rather than errors.
type Generator struct {
	caller  llm.Caller
	logger  *slog.Logger
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// NewGenerator creates a Generator whose calls run through a circuit breaker
// that opens after five consecutive failures.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	g := &Generator{
		caller:  cfg.Caller,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm-" + cfg.Caller.Provider(),
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Missing keys do not count against provider health.
			return err == nil || errors.Is(err, llm.ErrMissingCredentials)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn("generation breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return g
}

// Generate returns the model's answer to prompt.
func (g *Generator) Generate(ctx context.Context, prompt string) string {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (any, error) {
		resp, err := g.caller.Chat(ctx, &llm.ChatRequest{
			System:      SystemRole,
			Messages:    []llm.Message{llm.NewTextMessage("user", prompt)},
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		})
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(resp.Message.Content)
		if text == "" {
			return nil, fmt.Errorf("%w: empty completion", llm.ErrGeneration)
		}
		return text, nil
	})
	if err != nil {
		return g.failureText(err)
	}

	return out.(string)
}

func (g *Generator) failureText(err error) string {
	provider := g.caller.Provider()

	if errors.Is(err, llm.ErrMissingCredentials) {
		envVar := credentials.EnvVarForProvider(provider)
		if envVar == "" {
			envVar = "API 키"
		}
		return envVar + "가 필요합니다"
	}

	g.logger.Error("generation failed",
		"provider", provider,
		"error", err,
	)

	name, ok := providerDisplayNames[provider]
	if !ok {
		name = provider
	}
	return fmt.Sprintf("%s API 호출 오류: %v", name, err)
}
