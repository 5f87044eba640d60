package query

import (
	"context"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
	"github.com/itsmingjie/sveltesociety.dev/internal/util"
	"github.com/itsmingjie/sveltesociety.dev/internal/validation"
)

// PreviewColumns is the ordered column list selected by list statements.
// Scanners of list results must read columns in this order.
const PreviewColumns = `c.id, c.title, c.slug, c.description, c.type, c.status, ` +
	`c.created_at, c.updated_at, c.published_at, c.likes, c.saves`

const (
	fromContent = "FROM content c"
	joinTags    = "JOIN content_to_tags ct ON ct.content_id = c.id JOIN tags t ON t.id = ct.tag_id"
	groupByID   = "GROUP BY c.id"
)

var orderBy = map[Sort]string{
	SortLatest:  "ORDER BY c.published_at DESC, c.created_at DESC, c.id ASC",
	SortOldest:  "ORDER BY c.published_at ASC, c.created_at ASC, c.id ASC",
	SortPopular: "ORDER BY c.likes DESC, c.saves DESC, c.id ASC",
}

// DefaultMaxLimit caps Filter.Limit when Options.MaxLimit is unset.
const DefaultMaxLimit = 100

// CandidateSource resolves free text to an ordered list of content IDs.
// An empty result means nothing matched.
type CandidateSource interface {
	Search(ctx context.Context, q string) ([]string, error)
}

// Statement is a ready-to-execute SQL statement.
//
// Empty is set when a search matched nothing; the statement then has no
// SQL and callers must report zero rows (or a zero count) without
// querying the store.
type Statement struct {
	SQL   string
	Args  []any
	Empty bool
}

// Options configures a Builder.
type Options struct {
	MaxLimit  int
	Validator *validation.Validator
}

// Builder turns Filters into list and count statements.
type Builder struct {
	candidates CandidateSource
	validator  *validation.Validator
	maxLimit   int
}

// NewBuilder creates a builder. candidates may be nil when search is
// disabled; filters with a search query are then rejected.
func NewBuilder(candidates CandidateSource, opts Options) *Builder {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	return &Builder{
		candidates: candidates,
		validator:  opts.Validator,
		maxLimit:   opts.MaxLimit,
	}
}

// plan is the predicate set shared by the list and count variants.
type plan struct {
	empty   bool
	where   Fragment
	tagged  bool
	having  Fragment
	sort    Sort
	limit   Fragment
	offset  Fragment
	grouped bool
}

// PageStatements pairs the list and count statements of one filter. Both
// come from a single plan, so a search resolves its candidates once.
type PageStatements struct {
	List  Statement
	Count Statement
}

// BuildPage returns the list and count statements for f.
func (b *Builder) BuildPage(ctx context.Context, f Filter) (PageStatements, error) {
	p, err := b.plan(ctx, f)
	if err != nil {
		return PageStatements{}, err
	}
	return PageStatements{List: p.list(), Count: p.count()}, nil
}

// BuildList returns the statement selecting PreviewColumns for f.
//
// Arguments are bound in clause order: candidate IDs, status, type, tag
// slugs, tag count, limit, offset.
func (b *Builder) BuildList(ctx context.Context, f Filter) (Statement, error) {
	p, err := b.plan(ctx, f)
	if err != nil {
		return Statement{}, err
	}
	return p.list(), nil
}

// BuildCount returns the statement counting the items BuildList would
// return without pagination. With tag grouping the count is taken over
// the grouped subquery, so it counts content items rather than joined rows.
func (b *Builder) BuildCount(ctx context.Context, f Filter) (Statement, error) {
	p, err := b.plan(ctx, f)
	if err != nil {
		return Statement{}, err
	}
	return p.count(), nil
}

func (p *plan) list() Statement {
	if p.empty {
		return Statement{Empty: true}
	}
	stmt := join(" ",
		raw("SELECT "+PreviewColumns),
		raw(fromContent),
		p.joins(),
		prefixed("WHERE", p.where),
		p.groupBy(),
		raw(orderBy[p.sort]),
		p.limit,
		p.offset,
	)
	return Statement{SQL: stmt.SQL(), Args: stmt.Args()}
}

func (p *plan) count() Statement {
	if p.empty {
		return Statement{Empty: true}
	}

	var stmt Fragment
	if p.grouped {
		inner := join(" ",
			raw("SELECT c.id"),
			raw(fromContent),
			p.joins(),
			prefixed("WHERE", p.where),
			p.groupBy(),
		)
		stmt = join("",
			raw("SELECT COUNT(*) FROM ("),
			inner,
			raw(") AS grouped"),
		)
	} else {
		stmt = join(" ",
			raw("SELECT COUNT(*)"),
			raw(fromContent),
			p.joins(),
			prefixed("WHERE", p.where),
		)
	}
	return Statement{SQL: stmt.SQL(), Args: stmt.Args()}
}

func (p *plan) joins() Fragment {
	if !p.tagged {
		return Fragment{}
	}
	return raw(joinTags)
}

func (p *plan) groupBy() Fragment {
	if !p.grouped {
		return Fragment{}
	}
	return join(" ", raw(groupByID), prefixed("HAVING", p.having))
}

func (b *Builder) plan(ctx context.Context, f Filter) (*plan, error) {
	if err := b.validate(f); err != nil {
		return nil, err
	}

	tags, err := normalizeTags(f.Tags)
	if err != nil {
		return nil, err
	}

	p := &plan{sort: ParseSort(string(f.Sort))}
	var where []Fragment

	// 1. Search candidates
	if f.HasSearch() {
		if b.candidates == nil {
			return nil, domainerrors.Validation("search is not available")
		}
		ids, err := b.candidates.Search(ctx, strings.TrimSpace(f.Search))
		if err != nil {
			return nil, domainerrors.ReadFailure(err, "search candidates")
		}
		ids = dedupe(ids)
		if len(ids) == 0 {
			return &plan{empty: true}, nil
		}
		where = append(where, in(colID, ids))
	}

	// 2. Status: unset means published only, "all" means unrestricted.
	switch f.Status {
	case "":
		where = append(where, eq(colStatus, DefaultStatus))
	case StatusAll:
	default:
		where = append(where, eq(colStatus, f.Status))
	}

	// 3. Type
	if f.Type != "" {
		where = append(where, eq(colType, f.Type))
	}

	// 4. Tags: one tag is a plain join, several require every slug.
	switch len(tags) {
	case 0:
	case 1:
		p.tagged = true
		where = append(where, eq(colTagSlug, tags[0]))
	default:
		p.tagged = true
		p.grouped = true
		where = append(where, in(colTagSlug, tags))
		p.having = bind("COUNT(DISTINCT t.slug) =", len(tags))
	}

	p.where = join(" AND ", where...)

	// 5. Pagination
	if f.Limit != nil {
		p.limit = bind("LIMIT", *f.Limit)
		if f.Offset != nil {
			p.offset = bind("OFFSET", *f.Offset)
		}
	}

	return p, nil
}

func (b *Builder) validate(f Filter) error {
	if err := b.validator.Validate(f); err != nil {
		return err
	}
	if f.Limit != nil {
		if err := b.validator.Var("limit", *f.Limit, fmt.Sprintf("lte=%d", b.maxLimit)); err != nil {
			return err
		}
	}
	return nil
}

// normalizeTags canonicalizes slugs and drops duplicates, keeping the
// first occurrence.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(tags))
	for i, tag := range tags {
		slug := util.Slugify(tag)
		if slug == "" {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{fmt.Sprintf("tags[%d]", i): "is not a valid tag slug"})
		}
		if seen.Add(slug) {
			out = append(out, slug)
		}
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := mapset.NewThreadUnsafeSetWithSize[string](len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id != "" && seen.Add(id) {
			out = append(out, id)
		}
	}
	return out
}
