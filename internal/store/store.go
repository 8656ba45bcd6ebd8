// Package store persists compiled brains as snapshots in SQLite.
package store

import (
	"context"

	"github.com/rcliao/rivebrain/internal/model"
)

// SaveParams holds parameters for saving a brain.
type SaveParams struct {
	Source string // directory or file the brain was loaded from
	Brain  *model.Brain
}

// ListParams holds parameters for listing snapshots.
type ListParams struct {
	Source string
	Limit  int
}

// Store defines the snapshot storage interface.
type Store interface {
	// Save persists a brain as a new snapshot.
	Save(ctx context.Context, p SaveParams) (*model.Snapshot, error)

	// Load restores a snapshot. An empty id loads the latest one.
	Load(ctx context.Context, id string) (*model.Brain, *model.Snapshot, error)

	// List lists snapshots, newest first.
	List(ctx context.Context, p ListParams) ([]model.Snapshot, error)

	// Rm deletes a snapshot and everything in it.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
