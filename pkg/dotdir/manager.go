// Package dotdir manages the .kauni/ and ~/.kauni directories.
//
// The directory holds config.toml, credentials.toml, and the persisted persona
// override written by PUT /api/persona.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the kauni directory.
	dirName = ".kauni"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .kauni/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.kauni/ dir
//  3. Home ~/.kauni/ dir
//
// If none is found, Target returns an empty string and no error.
func (m *Manager) Target(overrideDir string) (string, error) {
	switch {
	case overrideDir != "":
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating kauni directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", nil
	}

	return dir, nil
}

// HomeDir returns ~/.kauni, creating it when it does not exist.
func (m *Manager) HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating kauni directory %s: %w", dir, err)
	}

	return dir, nil
}

// localDirExists checks whether a .kauni/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
