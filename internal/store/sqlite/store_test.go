package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testClock hands out strictly increasing timestamps so ordering by time
// is deterministic.
type testClock struct{ now time.Time }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Next() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

// makeTestContent creates a domain.Content with sensible defaults for testing.
func makeTestContent(id string, typ domain.ContentType, slug string, status domain.ContentStatus, at time.Time) *domain.Content {
	return &domain.Content{
		ID:          id,
		Title:       "Title " + slug,
		Slug:        slug,
		Description: "About " + slug,
		Type:        typ,
		Status:      status,
		Body:        "# " + slug,
		Metadata:    map[string]any{"source": "test"},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func mustCreateTag(t *testing.T, s *Store, id, slug string) *domain.Tag {
	t.Helper()
	tag := makeTestTag(id, slug)
	if err := s.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("CreateTag(%s): %v", slug, err)
	}
	return tag
}

func mustCreateContent(t *testing.T, s *Store, c *domain.Content, tagIDs ...string) {
	t.Helper()
	if err := s.CreateContent(context.Background(), c, tagIDs); err != nil {
		t.Fatalf("CreateContent(%s): %v", c.ID, err)
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	for _, table := range []string{"content", "tags", "content_to_tags", "likes", "saves"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "content.db")

	s1, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s1.Close()

	s2, err := Open(dbPath, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	if err := s2.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestTimeLayout_SortsChronologically(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 5, time.UTC)
	b := time.Date(2024, 1, 1, 0, 0, 0, 500_000_000, time.UTC)
	if !(formatTime(a) < formatTime(b)) {
		t.Errorf("expected %q < %q", formatTime(a), formatTime(b))
	}

	got, err := parseTime(formatTime(b))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !got.Equal(b) {
		t.Errorf("round trip: got %v, want %v", got, b)
	}
}

func TestChunks(t *testing.T) {
	ids := make([]string, maxParams*2+3)
	for i := range ids {
		ids[i] = "x"
	}
	got := chunks(ids)
	if len(got) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(got))
	}
	if len(got[2]) != 3 {
		t.Errorf("last chunk: got %d, want 3", len(got[2]))
	}
	if chunks(nil) != nil {
		t.Error("expected no chunks for nil input")
	}
}
