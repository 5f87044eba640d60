package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/itsmingjie/sveltesociety.dev/internal/domain"
	"github.com/itsmingjie/sveltesociety.dev/internal/query"
)

type fixedCandidates []string

func (f fixedCandidates) Search(context.Context, string) ([]string, error) { return f, nil }

// listIDs builds and executes the list and count statements for f.
func listIDs(t *testing.T, s *Store, b *query.Builder, f query.Filter) ([]string, int) {
	t.Helper()
	ctx := context.Background()

	stmt, err := b.BuildList(ctx, f)
	if err != nil {
		t.Fatalf("BuildList: %v", err)
	}
	previews, err := s.ListContent(ctx, stmt)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}

	countStmt, err := b.BuildCount(ctx, f)
	if err != nil {
		t.Fatalf("BuildCount: %v", err)
	}
	total, err := s.CountContent(ctx, countStmt)
	if err != nil {
		t.Fatalf("CountContent: %v", err)
	}

	ids := make([]string, len(previews))
	for i, p := range previews {
		ids[i] = p.ID
	}
	return ids, total
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// seedListing creates:
//
//	p1 article   published  tags a,b    likes 5 saves 0
//	p2 article   published  tags a      likes 5 saves 1
//	p3 recipe    published  tags a,b,c  likes 1
//	d1 article   draft      tags a,b
//	x1 video     archived
func seedListing(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	ctx := context.Background()
	clock := newTestClock()

	mustCreateTag(t, s, "ta", "a")
	mustCreateTag(t, s, "tb", "b")
	mustCreateTag(t, s, "tc", "c")

	mustCreateContent(t, s, makeTestContent("p1", domain.ContentTypeArticle, "p1", domain.StatusPublished, clock.Next()), "ta", "tb")
	mustCreateContent(t, s, makeTestContent("p2", domain.ContentTypeArticle, "p2", domain.StatusPublished, clock.Next()), "ta")
	mustCreateContent(t, s, makeTestContent("p3", domain.ContentTypeRecipe, "p3", domain.StatusPublished, clock.Next()), "ta", "tb", "tc")
	mustCreateContent(t, s, makeTestContent("d1", domain.ContentTypeArticle, "d1", domain.StatusDraft, clock.Next()), "ta", "tb")
	mustCreateContent(t, s, makeTestContent("x1", domain.ContentTypeVideo, "x1", domain.StatusArchived, clock.Next()))

	setCounters := func(id string, likes, saves int) {
		if _, err := s.db.ExecContext(ctx, `UPDATE content SET likes = ?, saves = ? WHERE id = ?`, likes, saves, id); err != nil {
			t.Fatalf("set counters: %v", err)
		}
	}
	setCounters("p1", 5, 0)
	setCounters("p2", 5, 1)
	setCounters("p3", 1, 0)
	return s
}

func TestListContent_DefaultsToPublishedLatest(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	ids, total := listIDs(t, s, b, query.Filter{})
	assertIDs(t, ids, "p3", "p2", "p1")
	if total != 3 {
		t.Errorf("total: got %d, want 3", total)
	}
}

func TestListContent_StatusSwitch(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	ids, total := listIDs(t, s, b, query.Filter{Status: query.StatusAll, Sort: query.SortOldest})
	if total != 5 || len(ids) != 5 {
		t.Errorf("all: got %v (total %d)", ids, total)
	}

	ids, _ = listIDs(t, s, b, query.Filter{Status: "draft"})
	assertIDs(t, ids, "d1")

	ids, _ = listIDs(t, s, b, query.Filter{Status: "archived", Type: "video"})
	assertIDs(t, ids, "x1")
}

func TestListContent_TagsRequireEverySlug(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	ids, total := listIDs(t, s, b, query.Filter{Tags: []string{"a", "b"}, Sort: query.SortOldest})
	assertIDs(t, ids, "p1", "p3")
	if total != 2 {
		t.Errorf("total: got %d, want 2 (counts items, not joined rows)", total)
	}

	ids, _ = listIDs(t, s, b, query.Filter{Tags: []string{"a", "b", "c"}})
	assertIDs(t, ids, "p3")

	// Repeating a tag does not change the result.
	ids, _ = listIDs(t, s, b, query.Filter{Tags: []string{"a", "b", "a"}, Sort: query.SortOldest})
	assertIDs(t, ids, "p1", "p3")

	ids, total = listIDs(t, s, b, query.Filter{Tags: []string{"c", "missing"}})
	if len(ids) != 0 || total != 0 {
		t.Errorf("unknown tag: got %v (total %d)", ids, total)
	}

	ids, _ = listIDs(t, s, b, query.Filter{Tags: []string{"c"}})
	assertIDs(t, ids, "p3")
}

func TestListContent_PopularBreaksTiesBySaves(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	ids, _ := listIDs(t, s, b, query.Filter{Sort: query.SortPopular})
	assertIDs(t, ids, "p2", "p1", "p3")
}

func TestListContent_Pagination(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	ids, total := listIDs(t, s, b, query.Filter{}.WithPage(2, 1))
	assertIDs(t, ids, "p2", "p1")
	if total != 3 {
		t.Errorf("total ignores pagination: got %d", total)
	}

	// Offset without limit is ignored.
	ids, _ = listIDs(t, s, b, query.Filter{Offset: query.Int(2)})
	assertIDs(t, ids, "p3", "p2", "p1")

	// Tags with pagination still count grouped items.
	ids, total = listIDs(t, s, b, query.Filter{Tags: []string{"a"}, Sort: query.SortOldest}.WithPage(1, 1))
	assertIDs(t, ids, "p2")
	if total != 3 {
		t.Errorf("tagged total: got %d, want 3", total)
	}
}

func TestListContent_SearchCandidates(t *testing.T) {
	s := seedListing(t)

	b := query.NewBuilder(fixedCandidates{"p1", "d1", "unknown"}, query.Options{})
	ids, total := listIDs(t, s, b, query.Filter{Search: "anything"})
	assertIDs(t, ids, "p1")
	if total != 1 {
		t.Errorf("total: got %d", total)
	}

	empty := query.NewBuilder(fixedCandidates{}, query.Options{})
	ids, total = listIDs(t, s, empty, query.Filter{Search: "nothing"})
	if len(ids) != 0 || total != 0 {
		t.Errorf("empty search: got %v (total %d)", ids, total)
	}
}

func TestListContentPage(t *testing.T) {
	s := seedListing(t)
	ctx := context.Background()
	b := query.NewBuilder(nil, query.Options{})

	stmts, err := b.BuildPage(ctx, query.Filter{Tags: []string{"a", "b"}}.WithPage(1, 0))
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	previews, total, err := s.ListContentPage(ctx, stmts)
	if err != nil {
		t.Fatalf("ListContentPage: %v", err)
	}
	if len(previews) != 1 || previews[0].ID != "p3" {
		t.Errorf("items: got %d, first %v", len(previews), previews)
	}
	if total != 2 {
		t.Errorf("total: got %d, want 2", total)
	}
	if len(previews) == 1 && len(previews[0].Tags) != 3 {
		t.Errorf("tags: got %v", domain.TagSlugs(previews[0].Tags))
	}

	previews, total, err = s.ListContentPage(ctx, query.PageStatements{
		List:  query.Statement{Empty: true},
		Count: query.Statement{Empty: true},
	})
	if err != nil {
		t.Fatalf("empty page: %v", err)
	}
	if previews == nil || len(previews) != 0 || total != 0 {
		t.Errorf("empty page: got %v (total %d)", previews, total)
	}
}

func TestListContent_AttachesTags(t *testing.T) {
	s := seedListing(t)
	b := query.NewBuilder(nil, query.Options{})

	stmt, err := b.BuildList(context.Background(), query.Filter{Type: "recipe"})
	if err != nil {
		t.Fatalf("BuildList: %v", err)
	}
	previews, err := s.ListContent(context.Background(), stmt)
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(previews) != 1 {
		t.Fatalf("got %d previews", len(previews))
	}
	if got := domain.TagSlugs(previews[0].Tags); len(got) != 3 {
		t.Errorf("tags: got %v", got)
	}
	if previews[0].PublishedAt == nil {
		t.Error("published preview should carry PublishedAt")
	}
}

func TestListContentUpdatedSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	clock := newTestClock()

	mustCreateContent(t, s, makeTestContent("old", domain.ContentTypeArticle, "old", domain.StatusDraft, clock.Next()))
	mark := clock.Next()
	mustCreateContent(t, s, makeTestContent("new", domain.ContentTypeArticle, "new", domain.StatusDraft, clock.Next()))

	got, err := s.ListContentUpdatedSince(ctx, mark)
	if err != nil {
		t.Fatalf("ListContentUpdatedSince: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("got %d items", len(got))
	}

	all, err := s.ListContentUpdatedSince(ctx, time.Time{})
	if err != nil {
		t.Fatalf("ListContentUpdatedSince(zero): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("zero time: got %d items", len(all))
	}

	everything, err := s.ListAllContent(ctx)
	if err != nil {
		t.Fatalf("ListAllContent: %v", err)
	}
	if len(everything) != 2 || everything[0].ID != "new" {
		t.Errorf("ListAllContent: got %d items", len(everything))
	}
}
