package store

import (
	"context"
	"errors"
	"os"

	"github.com/rcliao/rivebrain/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string          `json:"db_path"`
	DBSizeBytes int64           `json:"db_size_bytes"`
	Snapshots   int             `json:"snapshots"`
	Triggers    int             `json:"triggers"`
	Replies     int             `json:"replies"`
	Latest      *model.Snapshot `json:"latest,omitempty"`
	Topics      []TopicStats    `json:"topics,omitempty"`
}

// TopicStats holds per-topic counts for the latest snapshot.
type TopicStats struct {
	Topic    string `json:"topic"`
	Triggers int    `json:"triggers"`
	Previous int    `json:"previous"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&st.Snapshots)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triggers`).Scan(&st.Triggers)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&st.Replies)

	latest, err := s.Snapshot(ctx, "")
	if errors.Is(err, ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	st.Latest = latest

	rows, err := s.db.QueryContext(ctx, `
		SELECT topic,
		       SUM(CASE WHEN previous = '' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN previous != '' THEN 1 ELSE 0 END)
		FROM triggers WHERE snapshot_id = ?
		GROUP BY topic ORDER BY COUNT(*) DESC, topic`, latest.ID)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts TopicStats
		rows.Scan(&ts.Topic, &ts.Triggers, &ts.Previous)
		st.Topics = append(st.Topics, ts)
	}

	return st, nil
}
