package config

import "time"

const (
	defaultAPIListen       = ":8000"
	defaultClientAPITarget = "http://localhost:8000"

	defaultStoreProvider      = "postgres"
	defaultStoreTable         = "documents"
	defaultStoreMatchFunction = "match_documents"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "all-minilm"
	defaultEmbeddingDimensions = 384
	defaultEmbeddingCacheSize  = 1024

	defaultLLMProvider = "openai"
	defaultLLMModel    = "gpt-4o-mini"
	defaultLLMTarget   = "https://api.openai.com"

	defaultKTONumRows  = 100
	defaultKTOMaxPages = 1
	defaultKTORate     = 5

	defaultRAGTopK    = 4
	defaultRAGTimeout = 30 * time.Second

	defaultEventsProvider = "none"
	defaultEventsTopic    = "kauni.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Store: StoreConfig{
			Provider:      defaultStoreProvider,
			Table:         defaultStoreTable,
			MatchFunction: defaultStoreMatchFunction,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
			CacheSize:  defaultEmbeddingCacheSize,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
			Target:   defaultLLMTarget,
		},
		KTO: KTOConfig{
			NumRows:  defaultKTONumRows,
			MaxPages: defaultKTOMaxPages,
			Rate:     defaultKTORate,
		},
		RAG: RAGConfig{
			TopK:    defaultRAGTopK,
			Timeout: defaultRAGTimeout.String(),
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
