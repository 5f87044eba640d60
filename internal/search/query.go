package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/itsmingjie/sveltesociety.dev/internal/util"
)

// Search resolves q to content IDs ordered by relevance, best first, ties
// broken by ID. At most MaxCandidates IDs are returned.
//
// A blank query, or one that produces no searchable terms, yields an empty
// slice and no error. Errors are reserved for a closed index and a
// cancelled context.
func (s *Index) Search(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []string{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(q), s.maxCandidates, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, bleve.ErrorIndexClosed) {
			return nil, fmt.Errorf("execute search: %w", err)
		}
		// Bleve reports malformed queries at execution time. Nothing
		// matches such a query.
		s.logger.Warn("search query rejected", "query", q, "error", err)
		return []string{}, nil
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// buildSearchQuery matches q against titles (boosted), descriptions and
// bodies, with fuzzy and prefix title matching for typos and partial
// input, plus an exact tag slug match.
func buildSearchQuery(q string) query.Query {
	var queries []query.Query

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	queries = append(queries, titleMatch)

	descMatch := bleve.NewMatchQuery(q)
	descMatch.SetField("description")
	descMatch.SetBoost(1.5)
	queries = append(queries, descMatch)

	bodyMatch := bleve.NewMatchQuery(q)
	bodyMatch.SetField("body")
	queries = append(queries, bodyMatch)

	// Fuzzy matching for typo tolerance on single words
	if !strings.ContainsAny(q, " \t") {
		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)
		queries = append(queries, fuzzyQuery)
	}

	// Prefix query for partial input (minimum 2 chars)
	if len(q) >= 2 {
		prefixQuery := bleve.NewPrefixQuery(strings.ToLower(q))
		prefixQuery.SetField("title")
		prefixQuery.SetBoost(0.5)
		queries = append(queries, prefixQuery)
	}

	if slug := util.Slugify(q); slug != "" {
		tagQuery := bleve.NewTermQuery(slug)
		tagQuery.SetField("tags")
		tagQuery.SetBoost(2.0)
		queries = append(queries, tagQuery)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
