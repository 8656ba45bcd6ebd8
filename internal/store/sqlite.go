package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/rivebrain/internal/model"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// timeFormat sorts lexically in time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Variable kinds as stored in the variables table.
const (
	kindGlobal = "global"
	kindVar    = "var"
	kindSub    = "sub"
	kindPerson = "person"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id          TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		version     REAL NOT NULL DEFAULT 0,
		counts      TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots(source);

	CREATE TABLE IF NOT EXISTS topics (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, name)
	);

	CREATE TABLE IF NOT EXISTS topic_edges (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		topic       TEXT NOT NULL,
		rel         TEXT NOT NULL,
		target      TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		PRIMARY KEY (snapshot_id, topic, rel, target)
	);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON topic_edges(snapshot_id, target);

	CREATE TABLE IF NOT EXISTS triggers (
		id          TEXT PRIMARY KEY,
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		topic       TEXT NOT NULL,
		previous    TEXT NOT NULL DEFAULT '',
		pattern     TEXT NOT NULL,
		redirect    TEXT,
		UNIQUE (snapshot_id, topic, previous, pattern)
	);

	CREATE TABLE IF NOT EXISTS replies (
		trigger_id  TEXT NOT NULL REFERENCES triggers(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		text        TEXT NOT NULL,
		PRIMARY KEY (trigger_id, seq)
	);

	CREATE TABLE IF NOT EXISTS conditions (
		trigger_id  TEXT NOT NULL REFERENCES triggers(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		text        TEXT NOT NULL,
		PRIMARY KEY (trigger_id, seq)
	);

	CREATE TABLE IF NOT EXISTS variables (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		value       TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, kind, name)
	);

	CREATE TABLE IF NOT EXISTS arrays (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		items       TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, name)
	);

	CREATE TABLE IF NOT EXISTS objects (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		lang        TEXT,
		code        TEXT,
		PRIMARY KEY (snapshot_id, name)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Save(ctx context.Context, p SaveParams) (*model.Snapshot, error) {
	if p.Brain == nil {
		return nil, fmt.Errorf("save: no brain")
	}
	b := p.Brain

	snap := &model.Snapshot{
		ID:        s.newID(),
		Source:    p.Source,
		Version:   b.Version,
		CreatedAt: time.Now().UTC(),
		Counts:    b.Count(),
	}
	counts, _ := json.Marshal(snap.Counts)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, version, counts, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.Version, string(counts), snap.CreatedAt.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	for _, name := range b.TopicNames() {
		topic := b.Topics[name]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (snapshot_id, name) VALUES (?, ?)`, snap.ID, name); err != nil {
			return nil, fmt.Errorf("insert topic: %w", err)
		}
		if err := insertEdges(ctx, tx, snap.ID, name, relIncludes, topic.Includes); err != nil {
			return nil, err
		}
		if err := insertEdges(ctx, tx, snap.ID, name, relInherits, topic.Inherits); err != nil {
			return nil, err
		}
		for _, pattern := range sortedKeys(topic.Triggers) {
			if err := s.insertTrigger(ctx, tx, snap.ID, name, "", pattern, topic.Triggers[pattern]); err != nil {
				return nil, err
			}
		}
	}

	for _, topic := range sortedKeys(b.Previous) {
		byPrev := b.Previous[topic]
		for _, prev := range sortedKeys(byPrev) {
			for _, pattern := range sortedKeys(byPrev[prev]) {
				if err := s.insertTrigger(ctx, tx, snap.ID, topic, prev, pattern, byPrev[prev][pattern]); err != nil {
					return nil, err
				}
			}
		}
	}

	tables := []struct {
		kind  string
		table map[string]string
	}{
		{kindGlobal, b.Globals},
		{kindVar, b.Vars},
		{kindSub, b.Subs},
		{kindPerson, b.Person},
	}
	for _, t := range tables {
		for name, value := range t.table {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO variables (snapshot_id, kind, name, value) VALUES (?, ?, ?, ?)`,
				snap.ID, t.kind, name, value); err != nil {
				return nil, fmt.Errorf("insert variable: %w", err)
			}
		}
	}

	for name, items := range b.Arrays {
		data, _ := json.Marshal(items)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO arrays (snapshot_id, name, items) VALUES (?, ?, ?)`,
			snap.ID, name, string(data)); err != nil {
			return nil, fmt.Errorf("insert array: %w", err)
		}
	}

	for name, obj := range b.Objects {
		code, _ := json.Marshal(obj.Code)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO objects (snapshot_id, name, lang, code) VALUES (?, ?, ?, ?)`,
			snap.ID, name, obj.Lang, string(code)); err != nil {
			return nil, fmt.Errorf("insert object: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return snap, nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, snapshotID, topic, rel string, targets []string) error {
	for i, target := range targets {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO topic_edges (snapshot_id, topic, rel, target, seq) VALUES (?, ?, ?, ?, ?)`,
			snapshotID, topic, rel, target, i)
		if err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) insertTrigger(ctx context.Context, tx *sql.Tx, snapshotID, topic, previous, pattern string, trig *model.Trigger) error {
	id := s.newID()

	var redirect *string
	if trig.Redirect != "" {
		redirect = &trig.Redirect
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO triggers (id, snapshot_id, topic, previous, pattern, redirect) VALUES (?, ?, ?, ?, ?, ?)`,
		id, snapshotID, topic, previous, pattern, redirect)
	if err != nil {
		return fmt.Errorf("insert trigger: %w", err)
	}

	for i, text := range trig.Replies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO replies (trigger_id, seq, text) VALUES (?, ?, ?)`, id, i, text); err != nil {
			return fmt.Errorf("insert reply: %w", err)
		}
	}
	for i, text := range trig.Conditions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conditions (trigger_id, seq, text) VALUES (?, ?, ?)`, id, i, text); err != nil {
			return fmt.Errorf("insert condition: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*model.Brain, *model.Snapshot, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	b := model.NewBrain()
	b.Version = snap.Version

	if err := s.loadTopics(ctx, snap.ID, b); err != nil {
		return nil, nil, err
	}
	if err := s.loadTriggers(ctx, snap.ID, b); err != nil {
		return nil, nil, err
	}
	if err := s.loadDefinitions(ctx, snap.ID, b); err != nil {
		return nil, nil, err
	}
	return b, snap, nil
}

func (s *SQLiteStore) loadTopics(ctx context.Context, snapshotID string, b *model.Brain) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM topics WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		b.EnsureTopic(name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	edges, err := s.Edges(ctx, EdgeParams{SnapshotID: snapshotID})
	if err != nil {
		return err
	}
	for _, e := range edges {
		topic := b.EnsureTopic(e.Topic)
		switch e.Rel {
		case relIncludes:
			topic.Includes = append(topic.Includes, e.Target)
		case relInherits:
			topic.Inherits = append(topic.Inherits, e.Target)
		}
	}
	return nil
}

func (s *SQLiteStore) loadTriggers(ctx context.Context, snapshotID string, b *model.Brain) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, topic, previous, pattern, redirect FROM triggers WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byID := map[string]*model.Trigger{}
	for rows.Next() {
		var id, topic, previous, pattern string
		var redirect sql.NullString
		if err := rows.Scan(&id, &topic, &previous, &pattern, &redirect); err != nil {
			return err
		}
		trig := b.EnsureTrigger(topic, previous, pattern)
		if redirect.Valid {
			trig.Redirect = redirect.String
		}
		byID[id] = trig
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return s.loadLines(ctx, snapshotID, byID)
}

// loadLines fills replies and conditions in declaration order.
func (s *SQLiteStore) loadLines(ctx context.Context, snapshotID string, byID map[string]*model.Trigger) error {
	for _, table := range []string{"replies", "conditions"} {
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
			SELECT x.trigger_id, x.text FROM %s x
			INNER JOIN triggers t ON t.id = x.trigger_id
			WHERE t.snapshot_id = ?
			ORDER BY x.trigger_id, x.seq`, table), snapshotID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var id, text string
			if err := rows.Scan(&id, &text); err != nil {
				rows.Close()
				return err
			}
			trig, ok := byID[id]
			if !ok {
				continue
			}
			if table == "replies" {
				trig.Replies = append(trig.Replies, text)
			} else {
				trig.Conditions = append(trig.Conditions, text)
			}
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) loadDefinitions(ctx context.Context, snapshotID string, b *model.Brain) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, name, value FROM variables WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, name, value string
		if err := rows.Scan(&kind, &name, &value); err != nil {
			return err
		}
		switch kind {
		case kindGlobal:
			b.Globals[name] = value
		case kindVar:
			b.Vars[name] = value
		case kindSub:
			b.Subs[name] = value
		case kindPerson:
			b.Person[name] = value
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	arows, err := s.db.QueryContext(ctx, `SELECT name, items FROM arrays WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		var name, items string
		if err := arows.Scan(&name, &items); err != nil {
			return err
		}
		var fields []string
		if err := json.Unmarshal([]byte(items), &fields); err != nil {
			return fmt.Errorf("array %s: %w", name, err)
		}
		b.Arrays[name] = fields
	}
	if err := arows.Err(); err != nil {
		return err
	}

	orows, err := s.db.QueryContext(ctx, `SELECT name, lang, code FROM objects WHERE snapshot_id = ?`, snapshotID)
	if err != nil {
		return err
	}
	defer orows.Close()
	for orows.Next() {
		var name string
		var lang, code sql.NullString
		if err := orows.Scan(&name, &lang, &code); err != nil {
			return err
		}
		obj := &model.Object{Name: name, Lang: lang.String}
		if code.Valid {
			if err := json.Unmarshal([]byte(code.String), &obj.Code); err != nil {
				return fmt.Errorf("object %s: %w", name, err)
			}
		}
		b.Objects[name] = obj
	}
	return orows.Err()
}

// Snapshot returns the snapshot record for id, or the latest one when id is
// empty.
func (s *SQLiteStore) Snapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	var row *sql.Row
	if id == "" {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, source, version, counts, created_at FROM snapshots ORDER BY id DESC LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, source, version, counts, created_at FROM snapshots WHERE id = ?`, id)
	}

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		if id == "" {
			return nil, fmt.Errorf("%w: no snapshots saved yet", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Snapshot, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, source, version, counts, created_at FROM snapshots`
	args := []interface{}{}
	if p.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, p.Source)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (model.Snapshot, error) {
	var snap model.Snapshot
	var counts sql.NullString
	var createdAt string

	if err := row.Scan(&snap.ID, &snap.Source, &snap.Version, &counts, &createdAt); err != nil {
		return snap, err
	}
	snap.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if counts.Valid {
		json.Unmarshal([]byte(counts.String), &snap.Counts)
	}
	return snap, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
