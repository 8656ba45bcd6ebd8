package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rcliao/rivebrain/internal/model"
	"github.com/rcliao/rivebrain/internal/parser"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const sampleDoc = `
! version = 2.0
! global debug = false
! var name = Rive
! sub what's = what is
! person i am = you are
! array colors = red|light blue
^ green

> begin
+ request
- {ok}
< begin

+ hello
- Hi there!
- Hey!

+ what is my name
* <get name> != undefined => Your name is <get name>.
- I don't know.

+ hey
@ hello

+ yes
% do you like pie
- Me too!

> topic sports includes random inherits games
+ *
- Let's talk sports.
< topic

> object upper javascript
// joins and upper-cases
return args.join(" ").toUpperCase();

< object
`

func sampleBrain(t *testing.T) *model.Brain {
	t.Helper()
	brain := model.NewBrain()
	p := parser.New(brain, parser.Options{})
	if err := p.Parse("sample.rs", strings.Split(sampleDoc, "\n")); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return brain
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	brain := sampleBrain(t)

	snap, err := s.Save(ctx, SaveParams{Source: "sample", Brain: brain})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.ID == "" {
		t.Error("expected non-empty ID")
	}
	if snap.Counts.Topics != len(brain.Topics) {
		t.Errorf("expected %d topics, got %d", len(brain.Topics), snap.Counts.Topics)
	}

	got, gotSnap, err := s.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotSnap.Source != "sample" {
		t.Errorf("expected source 'sample', got %q", gotSnap.Source)
	}
	if diff := cmp.Diff(brain, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	brain := sampleBrain(t)

	s.Save(ctx, SaveParams{Source: "sample", Brain: brain})
	got, _, err := s.Load(ctx, "")
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}

	replies := got.Topic(model.DefaultTopic).Triggers["hello"].Replies
	if !reflect.DeepEqual(replies, []string{"Hi there!", "Hey!"}) {
		t.Errorf("unexpected replies %v", replies)
	}
	colors, _ := got.Array("colors")
	if !reflect.DeepEqual(colors, []string{"red", "light blue", "green"}) {
		t.Errorf("unexpected colors %v", colors)
	}
	prev := got.PreviousTriggers(model.DefaultTopic, "do you like pie")
	if prev["yes"] == nil || prev["yes"].Replies[0] != "Me too!" {
		t.Errorf("previous index not restored: %+v", prev)
	}
	if got.Topic(model.DefaultTopic).Triggers["hey"].Redirect != "hello" {
		t.Error("redirect not restored")
	}
}

func TestLoadLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := model.NewBrain()
	first.Globals["which"] = "first"
	second := model.NewBrain()
	second.Globals["which"] = "second"

	s.Save(ctx, SaveParams{Source: "a", Brain: first})
	snap2, _ := s.Save(ctx, SaveParams{Source: "a", Brain: second})

	got, snap, err := s.Load(ctx, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.ID != snap2.ID {
		t.Errorf("expected latest %s, got %s", snap2.ID, snap.ID)
	}
	if v, _ := got.Global("which"); v != "second" {
		t.Errorf("expected 'second', got %q", v)
	}
}

func TestLoadEmpty(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Load(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, SaveParams{Source: "a", Brain: model.NewBrain()})
	s.Save(ctx, SaveParams{Source: "b", Brain: model.NewBrain()})
	last, _ := s.Save(ctx, SaveParams{Source: "a", Brain: model.NewBrain()})

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}
	if all[0].ID != last.ID {
		t.Errorf("expected newest first")
	}

	onlyA, _ := s.List(ctx, ListParams{Source: "a"})
	if len(onlyA) != 2 {
		t.Errorf("expected 2, got %d", len(onlyA))
	}

	limited, _ := s.List(ctx, ListParams{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1, got %d", len(limited))
	}
}

func TestRm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap, _ := s.Save(ctx, SaveParams{Source: "sample", Brain: sampleBrain(t)})
	if err := s.Rm(ctx, snap.ID); err != nil {
		t.Fatalf("rm: %v", err)
	}

	if _, _, err := s.Load(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after rm, got %v", err)
	}

	var n int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM replies`).Scan(&n)
	if n != 0 {
		t.Errorf("expected replies to cascade, %d left", n)
	}

	if err := s.Rm(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second rm, got %v", err)
	}
}

func TestEdges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Save(ctx, SaveParams{Source: "sample", Brain: sampleBrain(t)})

	edges, err := s.Edges(ctx, EdgeParams{})
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	want := []Edge{
		{Topic: "sports", Rel: "includes", Target: "random"},
		{Topic: "sports", Rel: "inherits", Target: "games"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("expected %v, got %v", want, edges)
	}

	toGames, _ := s.Edges(ctx, EdgeParams{Topic: "games"})
	if len(toGames) != 1 {
		t.Errorf("expected 1 edge touching games, got %d", len(toGames))
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.Save(ctx, SaveParams{Source: "sample", Brain: sampleBrain(t)})

	results, err := s.Search(ctx, SearchParams{Query: "hey"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// "hello" via its reply "Hey!", "hey" via its pattern.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if r.Pattern == "hello" && r.Reply != "Hey!" {
			t.Errorf("expected matching reply 'Hey!', got %q", r.Reply)
		}
	}

	results, _ = s.Search(ctx, SearchParams{Query: "sports", Topic: "sports"})
	if len(results) != 1 || results[0].Pattern != "*" {
		t.Errorf("unexpected topic-filtered results %+v", results)
	}

	// %Previous text is not searched, only patterns and replies.
	results, _ = s.Search(ctx, SearchParams{Query: "pie"})
	if len(results) != 0 {
		t.Errorf("unexpected results for previous text %+v", results)
	}

	results, _ = s.Search(ctx, SearchParams{Query: "e", Limit: 2})
	if len(results) != 2 {
		t.Errorf("expected limit 2, got %d", len(results))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats on empty db: %v", err)
	}
	if st.Snapshots != 0 || st.Latest != nil {
		t.Errorf("expected empty stats, got %+v", st)
	}

	s.Save(ctx, SaveParams{Source: "sample", Brain: sampleBrain(t)})
	st, err = s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Snapshots != 1 {
		t.Errorf("expected 1 snapshot, got %d", st.Snapshots)
	}
	if st.Latest == nil || st.Latest.Source != "sample" {
		t.Errorf("expected latest snapshot, got %+v", st.Latest)
	}
	var random *TopicStats
	for i := range st.Topics {
		if st.Topics[i].Topic == model.DefaultTopic {
			random = &st.Topics[i]
		}
	}
	if random == nil || random.Triggers != 3 || random.Previous != 1 {
		t.Errorf("unexpected random topic stats %+v", random)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	brain := sampleBrain(t)
	s.Save(ctx, SaveParams{Source: "sample", Brain: brain})

	data, err := s.Export(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other := newTestStore(t)
	snap, err := other.Import(ctx, data, "import")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	got, _, err := other.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(brain, got); diff != "" {
		t.Errorf("import mismatch (-want +got):\n%s", diff)
	}

	if _, err := other.Import(ctx, []byte("{"), "bad"); err == nil {
		t.Error("expected error for invalid json")
	}
}

func TestImportNullEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte(`{
		"topics": {"random": {"triggers": {"hi": null}}},
		"previous": {"random": {"do you like pie": {"yes": null}}},
		"objects": {"upper": null}
	}`)
	snap, err := s.Import(ctx, data, "nulls")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	got, _, err := s.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Topic(model.DefaultTopic).Triggers["hi"] == nil {
		t.Error("expected empty trigger for null topic entry")
	}
	if got.PreviousTriggers(model.DefaultTopic, "do you like pie")["yes"] == nil {
		t.Error("expected empty trigger for null previous entry")
	}
	if obj := got.Objects["upper"]; obj == nil || obj.Name != "upper" {
		t.Errorf("expected named empty object, got %+v", obj)
	}
}
