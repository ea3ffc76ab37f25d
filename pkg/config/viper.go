package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/kauni/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the KAUNI_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (KAUNI_STORE_TARGET, KAUNI_LLM_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("KAUNI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper precedence chain.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Store: StoreConfig{
			Provider:      v.GetString("store.provider"),
			Target:        v.GetString("store.target"),
			Table:         v.GetString("store.table"),
			MatchFunction: v.GetString("store.match_function"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
			CacheSize:  v.GetUint("embedding.cache_size"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Model:    v.GetString("llm.model"),
			Target:   v.GetString("llm.target"),
		},
		KTO: KTOConfig{
			NumRows:  v.GetUint("kto.num_rows"),
			MaxPages: v.GetUint("kto.max_pages"),
			Rate:     v.GetFloat64("kto.rate"),
		},
		RAG: RAGConfig{
			TopK:    v.GetUint("rag.top_k"),
			Timeout: v.GetString("rag.timeout"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers every key's default using the same string form
// "kauni config get" prints, so NewDefaultConfig stays the only source.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, k := range configKeyOrder {
		v.SetDefault(k.name, k.info.get(d))
	}
}
