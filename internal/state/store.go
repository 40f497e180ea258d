// Package state persists the engine state document between watch cycles.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/model"
)

// Store manages persistence of the engine state. The state is one small
// JSON document read and written whole.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a state store in the user cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Store{path: filepath.Join(dir, "state.json")}, nil
}

// NewStoreAt creates a state store at an explicit path. Used by tests and
// by callers that relocate the cache dir.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Load reads the engine state from disk. A missing or unreadable document
// yields the zero state; the engine then behaves as on first run.
func (s *Store) Load() (model.EngineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.EngineState{}, nil
		}
		return model.EngineState{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var st model.EngineState
	if err := json.Unmarshal(data, &st); err != nil {
		log.Debug("could not parse state file, starting fresh", "error", err)
		return model.EngineState{}, nil
	}

	return st, nil
}

// Save writes the engine state to disk.
func (s *Store) Save(st model.EngineState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Reset removes the persisted state document.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
