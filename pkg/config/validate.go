package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is returned for missing or invalid configuration. It is
// fatal at startup or first use and is never retried.
var ErrConfiguration = errors.New("configuration error")

// Validate checks that every key required by the configured providers is set.
// The returned error wraps ErrConfiguration and names each missing key.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrConfiguration)
	}

	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("store.provider", cfg.Store.Provider)
	if cfg.Store.Provider != "memory" {
		require("store.target", cfg.Store.Target)
	}

	require("embedding.provider", cfg.Embedding.Provider)
	require("embedding.model", cfg.Embedding.Model)
	if cfg.Embedding.Dimensions == 0 {
		missing = append(missing, "embedding.dimensions")
	}
	if cfg.Embedding.Provider == "ollama" {
		require("embedding.target", cfg.Embedding.Target)
	}

	require("llm.provider", cfg.LLM.Provider)
	require("llm.model", cfg.LLM.Model)

	if cfg.Events.Provider == "kafka" {
		require("events.brokers", cfg.Events.Brokers)
		require("events.topic", cfg.Events.Topic)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration keys: %s", ErrConfiguration, strings.Join(missing, ", "))
	}

	return nil
}
