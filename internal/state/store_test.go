package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spiffcs/vigil/internal/model"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewStoreAt(path)

	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Save(model.EngineState{LastCheckedAt: checked, Viewer: "octocat"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !got.LastCheckedAt.Equal(checked) {
		t.Errorf("LastCheckedAt = %v, want %v", got.LastCheckedAt, checked)
	}
	if got.Viewer != "octocat" {
		t.Errorf("Viewer = %q, want %q", got.Viewer, "octocat")
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := NewStoreAt(filepath.Join(t.TempDir(), "absent.json"))

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.HasChecked() {
		t.Errorf("expected zero state, got %+v", got)
	}
	if got.Viewer != "" {
		t.Errorf("Viewer = %q, want empty", got.Viewer)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not json {"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStoreAt(path)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.HasChecked() || got.Viewer != "" {
		t.Errorf("expected zero state for corrupt file, got %+v", got)
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s := NewStoreAt(path)

	if err := s.Save(model.EngineState{Viewer: "octocat"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected state file to be removed")
	}

	// Resetting again is fine
	if err := s.Reset(); err != nil {
		t.Errorf("second Reset() error: %v", err)
	}
}
