package model

import "time"

// EngineState is the document the watch cycle carries between runs. It is
// passed into RunCycle and a (possibly advanced) copy is returned; the
// engine never mutates shared state behind the caller's back.
type EngineState struct {
	// LastCheckedAt is the start time of the last fully successful cycle.
	// Zero means no cycle has completed yet.
	LastCheckedAt time.Time `json:"lastCheckedAt"`

	// Viewer is the authenticated user's login, cached after the first
	// successful lookup.
	Viewer string `json:"viewer,omitempty"`
}

// HasChecked reports whether any cycle has completed successfully.
func (s EngineState) HasChecked() bool {
	return !s.LastCheckedAt.IsZero()
}
