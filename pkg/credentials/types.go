package credentials

// Credentials is the on-disk layout of credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for a single provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}

// Provider describes a service kauni holds a key for.
type Provider struct {
	Name    string
	EnvVar  string
	Purpose string
}

// Source reports where a resolved key came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceStored Source = "stored"
	SourceEnv    Source = "env"
)

// providers is ordered the way auth lists them.
var providers = []Provider{
	{Name: "openai", EnvVar: "OPENAI_API_KEY", Purpose: "embeddings and answer generation"},
	{Name: "anthropic", EnvVar: "ANTHROPIC_API_KEY", Purpose: "answer generation"},
	{Name: "kto", EnvVar: "KTO_SERVICE_KEY", Purpose: "Korea Tourism Organization open API"},
	{Name: "qdrant", EnvVar: "QDRANT_API_KEY", Purpose: "Qdrant Cloud document store"},
}
