package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --store-target
// on both "kauni serve" and "kauni ingest fs").
type Flag struct {
	// Name is the long flag name (e.g. "store-target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "store.target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagAPITarget      = "api-target"
	FlagStoreProv      = "store-provider"
	FlagStoreTgt       = "store-target"
	FlagStoreTable     = "store-table"
	FlagEmbeddingProv  = "embedding-provider"
	FlagEmbeddingTgt   = "embedding-target"
	FlagEmbeddingModel = "embedding-model"
	FlagEmbeddingDims  = "embedding-dimensions"
	FlagLLMProv        = "llm-provider"
	FlagLLMModel       = "llm-model"
	FlagLLMTgt         = "llm-target"
	FlagKTONumRows     = "kto-num-rows"
	FlagKTOMaxPages    = "kto-max-pages"
	FlagTopK           = "top-k"
	FlagEventsProv     = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
)

// Flags is the registry of every flag shared across kauni commands.
var Flags = FlagSet{
	FlagListen:         {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:      {Name: "api-target", ViperKey: "client.api_target", Description: "Kauni API server URL"},
	FlagStoreProv:      {Name: "store-provider", ViperKey: "store.provider", Description: "Document store provider (postgres, sqlite, chroma, qdrant, memory)"},
	FlagStoreTgt:       {Name: "store-target", ViperKey: "store.target", Description: "Document store connection string, path or URL"},
	FlagStoreTable:     {Name: "store-table", ViperKey: "store.table", Description: "Document table or collection name"},
	FlagEmbeddingProv:  {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama)"},
	FlagEmbeddingTgt:   {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	FlagEmbeddingModel: {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	FlagEmbeddingDims:  {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding vector dimensions"},
	FlagLLMProv:        {Name: "llm-provider", ViperKey: "llm.provider", Description: "Generation provider (openai, anthropic, ollama)"},
	FlagLLMModel:       {Name: "llm-model", ViperKey: "llm.model", Description: "Generation model name"},
	FlagLLMTgt:         {Name: "llm-target", ViperKey: "llm.target", Description: "Generation provider base URL"},
	FlagKTONumRows:     {Name: "num-rows", ViperKey: "kto.num_rows", Description: "Rows per KTO API page"},
	FlagKTOMaxPages:    {Name: "max-pages", ViperKey: "kto.max_pages", Description: "Maximum KTO API pages per endpoint"},
	FlagTopK:           {Name: "top", Shorthand: "k", ViperKey: "rag.top_k", Description: "Number of contexts to retrieve"},
	FlagEventsProv:     {Name: "events-provider", ViperKey: "events.provider", Description: "Event stream provider (none, kafka)"},
	FlagEventsBrokers:  {Name: "events-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka broker addresses"},
	FlagEventsTopic:    {Name: "events-topic", ViperKey: "events.topic", Description: "Kafka topic for chat events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
