// Package credentials stores provider API keys in credentials.toml and
// resolves them against the environment.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/kauni/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Providers returns every provider kauni can hold a key for.
func Providers() []Provider {
	return append([]Provider(nil), providers...)
}

// LookupProvider finds a provider by name.
func LookupProvider(name string) (Provider, bool) {
	for _, p := range providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// SupportedProviders returns the provider names.
func SupportedProviders() []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name
	}
	return names
}

// IsSupportedProvider reports whether name is a known provider.
func IsSupportedProvider(name string) bool {
	_, ok := LookupProvider(name)
	return ok
}

// EnvVarForProvider returns the environment variable read for provider, or
// "" for unknown providers.
func EnvVarForProvider(name string) string {
	p, _ := LookupProvider(name)
	return p.EnvVar
}

// Manager reads and writes credentials.toml inside a .kauni/ directory.
type Manager struct {
	path string
}

// NewManager resolves the .kauni/ directory (override first, then the usual
// dotdir lookup, then ~/.kauni/) and returns a Manager for its
// credentials.toml.
func NewManager(override string) (*Manager, error) {
	ddm := dotdir.NewManager()

	dir, err := ddm.Target(override)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		if dir, err = ddm.HomeDir(); err != nil {
			return nil, err
		}
	}

	return &Manager{path: filepath.Join(dir, credentialsFile)}, nil
}

// GetTarget returns the path of credentials.toml.
func (m *Manager) GetTarget() string {
	return m.path
}

// Load reads credentials.toml. A missing file yields empty credentials.
func (m *Manager) Load() (*Credentials, error) {
	creds := &Credentials{Version: currentVersion}

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading credentials: %w", err)
	default:
		if err := toml.Unmarshal(data, creds); err != nil {
			return nil, fmt.Errorf("parsing credentials: %w", err)
		}
	}

	if creds.Providers == nil {
		creds.Providers = make(map[string]ProviderCredential)
	}
	return creds, nil
}

// Save writes creds with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.WriteFile(m.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

func (m *Manager) update(fn func(map[string]ProviderCredential)) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}
	fn(creds.Providers)
	return m.Save(creds)
}

// SetKey stores key for provider.
func (m *Manager) SetKey(provider, key string) error {
	return m.update(func(p map[string]ProviderCredential) {
		p[provider] = ProviderCredential{APIKey: key}
	})
}

// RemoveKey deletes the stored key for provider.
func (m *Manager) RemoveKey(provider string) error {
	return m.update(func(p map[string]ProviderCredential) {
		delete(p, provider)
	})
}

// GetKey returns the stored key for provider, or "" when none is stored.
func (m *Manager) GetKey(provider string) (string, error) {
	creds, err := m.Load()
	if err != nil {
		return "", err
	}
	return creds.Providers[provider].APIKey, nil
}

// ListProviders returns the sorted names of providers with stored keys.
func (m *Manager) ListProviders() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(creds.Providers))
	for name := range creds.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Lookup returns the key for provider and where it was found. A stored key
// wins over the environment. An unreadable credentials file is treated as
// empty.
func (m *Manager) Lookup(provider string) (string, Source) {
	if key, err := m.GetKey(provider); err == nil && key != "" {
		return key, SourceStored
	}
	if env := EnvVarForProvider(provider); env != "" {
		if key := os.Getenv(env); key != "" {
			return key, SourceEnv
		}
	}
	return "", SourceNone
}

// Resolve returns the key for provider, or "" when none is configured.
func (m *Manager) Resolve(provider string) string {
	key, _ := m.Lookup(provider)
	return key
}
