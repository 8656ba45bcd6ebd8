package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchParams holds parameters for searching a snapshot.
type SearchParams struct {
	SnapshotID string // empty means latest
	Query      string
	Topic      string
	Limit      int
}

// SearchResult is a trigger whose pattern or a reply matched the query.
type SearchResult struct {
	Topic    string `json:"topic"`
	Previous string `json:"previous,omitempty"`
	Pattern  string `json:"pattern"`
	Reply    string `json:"reply,omitempty"`
}

// Search finds triggers whose pattern or replies contain the query substring.
// One result per trigger; Reply is the first matching reply, or the first
// reply when only the pattern matched.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	snap, err := s.Snapshot(ctx, p.SnapshotID)
	if err != nil {
		return nil, err
	}

	like := "%" + p.Query + "%"
	where := []string{"t.snapshot_id = ?"}
	args := []interface{}{like, snap.ID}
	if p.Topic != "" {
		where = append(where, "t.topic = ?")
		args = append(args, p.Topic)
	}
	args = append(args, like, like)

	sql := fmt.Sprintf(`
		SELECT t.id, t.topic, t.previous, t.pattern, COALESCE(r.text, ''), COALESCE(r.text LIKE ?, 0)
		FROM triggers t
		LEFT JOIN replies r ON r.trigger_id = t.id
		WHERE %s AND (t.pattern LIKE ? OR r.text LIKE ?)
		ORDER BY t.topic, t.previous, t.pattern, r.seq`, strings.Join(where, " AND "))

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	seen := map[string]int{}
	hits := map[string]bool{}
	for rows.Next() {
		var id string
		var r SearchResult
		var hit bool
		if err := rows.Scan(&id, &r.Topic, &r.Previous, &r.Pattern, &r.Reply, &hit); err != nil {
			return nil, err
		}

		if i, ok := seen[id]; ok {
			if hit && !hits[id] {
				results[i].Reply = r.Reply
				hits[id] = true
			}
			continue
		}
		if len(results) >= limit {
			continue
		}
		seen[id] = len(results)
		hits[id] = hit
		results = append(results, r)
	}
	return results, rows.Err()
}
