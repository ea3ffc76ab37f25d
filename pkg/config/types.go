package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent kauni configuration stored as config.toml
// in the .kauni/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	API       APIConfig       `toml:"api"`
	Client    ClientConfig    `toml:"client"`
	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	KTO       KTOConfig       `toml:"kto"`
	RAG       RAGConfig       `toml:"rag"`
	Events    EventsConfig    `toml:"events"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (e.g. kauni chat, kauni search).
// Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	// Provider is one of "postgres", "sqlite", "chroma", "qdrant", "memory".
	Provider string `toml:"provider,omitempty"`

	// Target is a connection string, file path or URL depending on provider.
	Target string `toml:"target,omitempty"`

	// Table is the table or collection holding documents.
	Table string `toml:"table,omitempty"`

	// MatchFunction is the server-side ranking function (postgres only).
	MatchFunction string `toml:"match_function,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	CacheSize  uint   `toml:"cache_size,omitempty"`
}

// LLMConfig holds generation provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	Target   string `toml:"target,omitempty"`
}

// KTOConfig holds Korea Tourism Organization open-data API settings.
// The service key itself lives in credentials.toml or KTO_SERVICE_KEY.
type KTOConfig struct {
	NumRows  uint    `toml:"num_rows,omitempty"`
	MaxPages uint    `toml:"max_pages,omitempty"`
	Rate     float64 `toml:"rate,omitempty"`
}

// RAGConfig holds answer pipeline settings.
type RAGConfig struct {
	TopK    uint   `toml:"top_k,omitempty"`
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout, falling back to the default on empty or
// invalid values.
func (r RAGConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return defaultRAGTimeout
	}
	return d
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string `toml:"provider,omitempty"`

	// Brokers is a comma separated list of broker addresses.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

type namedKey struct {
	name string
	info configKeyInfo
}

// configKeyOrder lists every supported key in TOML section order.
var configKeyOrder = []namedKey{
	{"api.listen", stringKey(func(c *Config) *string { return &c.API.Listen })},
	{"client.api_target", stringKey(func(c *Config) *string { return &c.Client.APITarget })},
	{"store.provider", stringKey(func(c *Config) *string { return &c.Store.Provider })},
	{"store.target", stringKey(func(c *Config) *string { return &c.Store.Target })},
	{"store.table", stringKey(func(c *Config) *string { return &c.Store.Table })},
	{"store.match_function", stringKey(func(c *Config) *string { return &c.Store.MatchFunction })},
	{"embedding.provider", stringKey(func(c *Config) *string { return &c.Embedding.Provider })},
	{"embedding.target", stringKey(func(c *Config) *string { return &c.Embedding.Target })},
	{"embedding.model", stringKey(func(c *Config) *string { return &c.Embedding.Model })},
	{"embedding.dimensions", uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions })},
	{"embedding.cache_size", uintKey("embedding.cache_size", func(c *Config) *uint { return &c.Embedding.CacheSize })},
	{"llm.provider", stringKey(func(c *Config) *string { return &c.LLM.Provider })},
	{"llm.model", stringKey(func(c *Config) *string { return &c.LLM.Model })},
	{"llm.target", stringKey(func(c *Config) *string { return &c.LLM.Target })},
	{"kto.num_rows", uintKey("kto.num_rows", func(c *Config) *uint { return &c.KTO.NumRows })},
	{"kto.max_pages", uintKey("kto.max_pages", func(c *Config) *uint { return &c.KTO.MaxPages })},
	{"kto.rate", configKeyInfo{
		get: func(c *Config) string {
			if c.KTO.Rate == 0 {
				return ""
			}
			return strconv.FormatFloat(c.KTO.Rate, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for kto.rate: %w", err)
			}
			c.KTO.Rate = f
			return nil
		},
	}},
	{"rag.top_k", uintKey("rag.top_k", func(c *Config) *uint { return &c.RAG.TopK })},
	{"rag.timeout", configKeyInfo{
		get: func(c *Config) string { return c.RAG.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for rag.timeout: %w", err)
			}
			c.RAG.Timeout = v
			return nil
		},
	}},
	{"events.provider", stringKey(func(c *Config) *string { return &c.Events.Provider })},
	{"events.brokers", stringKey(func(c *Config) *string { return &c.Events.Brokers })},
	{"events.topic", stringKey(func(c *Config) *string { return &c.Events.Topic })},
}

// configKeys indexes configKeyOrder by name.
var configKeys = func() map[string]configKeyInfo {
	m := make(map[string]configKeyInfo, len(configKeyOrder))
	for _, k := range configKeyOrder {
		m[k.name] = k.info
	}
	return m
}()
