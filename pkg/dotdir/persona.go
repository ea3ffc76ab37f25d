package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	personaFile = "persona.json"
)

// PersonaState is the persisted persona override. Empty fields mean the
// built-in default is used for that field.
type PersonaState struct {
	// System replaces the persona system prompt.
	System string `json:"system,omitempty"`

	// Style replaces the answer style guidance.
	Style string `json:"style,omitempty"`
}

// LoadPersonaState loads the persona override from a target .kauni/persona.json.
// Returns nil, nil if no override exists.
func (m *Manager) LoadPersonaState(overrideDir string) (*PersonaState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, personaFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading persona state: %w", err)
	}

	state := &PersonaState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing persona state: %w", err)
	}

	return state, nil
}

// SavePersonaState persists the persona override to a target .kauni/persona.json.
// When no .kauni/ directory resolves, ~/.kauni/ is created.
func (m *Manager) SavePersonaState(state *PersonaState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil persona state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}
	if dir == "" {
		dir, err = m.HomeDir()
		if err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling persona state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, personaFile), data, 0o600); err != nil {
		return fmt.Errorf("writing persona state: %w", err)
	}

	return nil
}
