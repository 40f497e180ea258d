// Package store persists the notification queue, the read set and the
// badge counter as a single JSON document.
package store

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

// document is the on-disk shape. List, read set and badge live in one
// file so a merge persists them together.
type document struct {
	Notifications []model.StoredNotification `json:"notifications"`
	Read          map[string]bool            `json:"read"`
	Badge         int                        `json:"badge"`
}

// Store manages the persisted notification list. All operations load
// state into memory once and write the whole document back.
type Store struct {
	path string
	doc  document
	mu   sync.RWMutex
}

// NewStore creates a notification store in the user cache directory.
func NewStore() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(cacheDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return NewStoreAt(filepath.Join(dir, "notifications.json")), nil
}

// NewStoreAt creates a notification store backed by the given path.
func NewStoreAt(path string) *Store {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		log.Debug("could not load notification store, starting fresh", "error", err)
	}
	s.normalize()
	return s
}

// load reads the document from disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// normalize repairs any document shape a decode could leave behind. A
// corrupted file is treated as empty rather than aborting.
func (s *Store) normalize() {
	if s.doc.Read == nil {
		s.doc.Read = make(map[string]bool)
	}
	if s.doc.Badge < 0 {
		s.doc.Badge = 0
	}
}

// save writes the document to disk atomically.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal notification store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write notification store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace notification store: %w", err)
	}

	return nil
}

// Merge appends candidates whose id is not already listed, in the order
// given, and advances the badge by the number appended. Candidates with
// an already-listed id are skipped without touching the stored entry.
// Returns the number appended.
func (s *Store) Merge(candidates []model.StoredNotification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.doc.Notifications))
	for _, n := range s.doc.Notifications {
		existing[n.ID] = true
	}

	added := 0
	for _, c := range candidates {
		if existing[c.ID] {
			continue
		}
		s.doc.Notifications = append(s.doc.Notifications, c)
		existing[c.ID] = true
		added++
	}

	s.doc.Badge += added

	if err := s.save(); err != nil {
		return 0, err
	}
	return added, nil
}

// Acknowledge removes the notification from the list, records the id in
// the read set and decrements the badge, floored at zero. Acknowledging
// an id that is already read and no longer listed changes nothing.
func (s *Store) Acknowledge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, n := range s.doc.Notifications {
		if n.ID == id {
			idx = i
			break
		}
	}

	if idx < 0 && s.doc.Read[id] {
		return nil
	}

	if idx >= 0 {
		s.doc.Notifications = append(s.doc.Notifications[:idx], s.doc.Notifications[idx+1:]...)
	}
	s.doc.Read[id] = true
	if s.doc.Badge > 0 {
		s.doc.Badge--
	}

	return s.save()
}

// MarkAllRead acknowledges every listed notification at once. Returns the
// number cleared.
func (s *Store) MarkAllRead() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := len(s.doc.Notifications)
	for _, n := range s.doc.Notifications {
		s.doc.Read[n.ID] = true
	}
	s.doc.Notifications = nil
	s.doc.Badge = 0

	if err := s.save(); err != nil {
		return 0, err
	}
	return cleared, nil
}

// Clear wipes the list, the read set and the badge.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = document{Read: make(map[string]bool)}
	return s.save()
}

// All returns a copy of the notification list in stored order.
func (s *Store) All() []model.StoredNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.StoredNotification, len(s.doc.Notifications))
	copy(out, s.doc.Notifications)
	return out
}

// Find returns the listed notification with the given id.
func (s *Store) Find(id string) (model.StoredNotification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.doc.Notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.StoredNotification{}, false
}

// Badge returns the current badge counter.
func (s *Store) Badge() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Badge
}

// IsRead reports whether the id has been acknowledged.
func (s *Store) IsRead(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Read[id]
}

// Count returns the number of listed notifications.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.doc.Notifications)
}
