package model

import "time"

// Snapshot describes a brain persisted by the store.
type Snapshot struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Version   float64   `json:"version,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Counts    Counts    `json:"counts"`
}
