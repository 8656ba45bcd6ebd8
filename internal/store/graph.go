package store

import (
	"context"
	"strings"
)

// Edge relations between topics.
const (
	relIncludes = "includes"
	relInherits = "inherits"
)

// EdgeParams holds parameters for listing topic edges.
type EdgeParams struct {
	SnapshotID string // empty means latest
	Topic      string // edges from or to this topic; empty for all
}

// Edge is an includes or inherits relation between two topics.
type Edge struct {
	Topic  string `json:"topic"`
	Rel    string `json:"rel"`
	Target string `json:"target"`
}

// Edges returns the topic graph of a snapshot in declaration order.
func (s *SQLiteStore) Edges(ctx context.Context, p EdgeParams) ([]Edge, error) {
	snap, err := s.Snapshot(ctx, p.SnapshotID)
	if err != nil {
		return nil, err
	}

	where := []string{"snapshot_id = ?"}
	args := []interface{}{snap.ID}
	if p.Topic != "" {
		where = append(where, "(topic = ? OR target = ?)")
		args = append(args, p.Topic, p.Topic)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, rel, target FROM topic_edges WHERE `+strings.Join(where, " AND ")+
			` ORDER BY topic, rel, seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Topic, &e.Rel, &e.Target); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
