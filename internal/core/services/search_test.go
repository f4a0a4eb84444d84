package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
	"github.com/custodia-labs/sphinxsync/internal/runtime"
)

// newTestSearch wires the facade against the real mapper and registry.
func newTestSearch(t *testing.T, cacheSize int) (driving.SearchService, *mocks.MockSearchDaemon) {
	t.Helper()

	snapshot := mapperSnapshot()
	cfg, err := NewMapper(MapperConfig{}).BuildConfiguration(snapshot)
	if err != nil {
		t.Fatalf("failed to build configuration: %v", err)
	}

	registry := runtime.NewRegistry()
	registry.Rebuild(snapshot, cfg)

	daemon := mocks.NewMockSearchDaemon()
	return NewSearchService(registry, daemon, cacheSize), daemon
}

func TestSearchService_Search(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	var gotIndexes []string
	daemon.SearchFn = func(indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
		gotIndexes = indexes
		return &domain.SearchResult{
			Matches:    []domain.Match{{DocID: 42, Weight: 100}},
			Total:      1,
			TotalFound: 1,
		}, nil
	}

	result, err := svc.Search(context.Background(), "Article", "breaking news", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The query is scoped to every index covering Article, ancestors
	// included, primaries before deltas.
	want := []string{"content", "article", "content_delta", "article_delta"}
	if !sameStrings(gotIndexes, want) {
		t.Errorf("expected search scoped to %v, got %v", want, gotIndexes)
	}

	if result.Query != "breaking news" {
		t.Errorf("expected query echoed back, got %q", result.Query)
	}
	if !sameStrings(result.Indexes, want) {
		t.Errorf("expected searched indexes recorded, got %v", result.Indexes)
	}
	if len(result.Matches) != 1 || result.Matches[0].DocID != 42 {
		t.Errorf("unexpected matches: %v", result.Matches)
	}
	if result.Took <= 0 {
		t.Error("expected Took to be positive")
	}
}

func TestSearchService_Search_DirtyFilter(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	var gotOpts domain.SearchOptions
	daemon.SearchFn = func(indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
		gotOpts = opts
		return &domain.SearchResult{}, nil
	}

	// Without an explicit dirty filter the facade hides stale primary
	// copies.
	callerFilters := map[string][]int64{"author_id": {7}}
	_, err := svc.Search(context.Background(), "Article", "q", domain.SearchOptions{Filters: callerFilters})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gotOpts.Filters[domain.DirtyAttr]; len(got) != 1 || got[0] != 0 {
		t.Errorf("expected dirty filter [0], got %v", got)
	}
	if got := gotOpts.Filters["author_id"]; len(got) != 1 || got[0] != 7 {
		t.Errorf("expected caller filter preserved, got %v", got)
	}
	// The caller's own map must stay untouched.
	if _, ok := callerFilters[domain.DirtyAttr]; ok {
		t.Error("expected the caller's filter map to be left alone")
	}

	// An explicit dirty filter wins over the default.
	_, err = svc.Search(context.Background(), "Article", "q", domain.SearchOptions{
		Filters: map[string][]int64{domain.DirtyAttr: {0, 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gotOpts.Filters[domain.DirtyAttr]; len(got) != 2 {
		t.Errorf("expected explicit dirty filter kept, got %v", got)
	}
}

func TestSearchService_Search_DefaultsAndLimits(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	var gotOpts domain.SearchOptions
	daemon.SearchFn = func(indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
		gotOpts = opts
		return &domain.SearchResult{}, nil
	}

	if _, err := svc.Search(context.Background(), "Content", "q", domain.SearchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOpts.Mode != domain.MatchExtended {
		t.Errorf("expected extended match by default, got %s", gotOpts.Mode)
	}
	if gotOpts.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", gotOpts.Limit)
	}

	if _, err := svc.Search(context.Background(), "Content", "q", domain.SearchOptions{Limit: 200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOpts.Limit != 100 {
		t.Errorf("expected limit capped at 100, got %d", gotOpts.Limit)
	}
}

func TestSearchService_Search_UnknownType(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	_, err := svc.Search(context.Background(), "Ghost", "q", domain.SearchOptions{})
	if !errors.Is(err, domain.ErrTypeNotRegistered) {
		t.Errorf("expected ErrTypeNotRegistered, got %v", err)
	}

	daemon.SearchFn = func([]string, string, domain.SearchOptions) (*domain.SearchResult, error) {
		t.Error("daemon must not be queried for unknown types")
		return nil, nil
	}
	_, _ = svc.Search(context.Background(), "Ghost", "q", domain.SearchOptions{})
}

func TestSearchService_Excerpts(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	var gotIndex string
	var gotOpts domain.ExcerptOptions
	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		gotIndex = index
		gotOpts = opts
		out := make([]string, len(docs))
		for i, doc := range docs {
			out[i] = "[" + doc + "]"
		}
		return out, nil
	}

	docs := []string{"first text", "second text"}
	snippets, err := svc.Excerpts(context.Background(), "NewsArticle", docs, "text", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snippets) != 2 || snippets[0] != "[first text]" || snippets[1] != "[second text]" {
		t.Errorf("unexpected snippets: %v", snippets)
	}
	// Snippet building borrows the tokenization settings of the type's own
	// primary index.
	if gotIndex != "newsarticle" {
		t.Errorf("expected excerpt scope newsarticle, got %q", gotIndex)
	}
	// Empty options are filled with the daemon defaults.
	if gotOpts.BeforeMatch != "<b>" || gotOpts.Around != 5 {
		t.Errorf("expected default excerpt options, got %+v", gotOpts)
	}
}

func TestSearchService_Excerpts_CacheReuse(t *testing.T) {
	svc, daemon := newTestSearch(t, 16)

	calls := 0
	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		calls++
		out := make([]string, len(docs))
		for i, doc := range docs {
			out[i] = fmt.Sprintf("snippet(%s)", doc)
		}
		return out, nil
	}

	first, err := svc.Excerpts(context.Background(), "Content", []string{"a", "b"}, "w", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one daemon call, got %d", calls)
	}

	// A repeat of the same batch is served entirely from cache.
	second, err := svc.Excerpts(context.Background(), "Content", []string{"a", "b"}, "w", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected no further daemon calls, got %d", calls)
	}
	if second[0] != first[0] || second[1] != first[1] {
		t.Errorf("expected cached snippets to match: %v vs %v", first, second)
	}

	// A mixed batch only sends the unseen document to the daemon.
	var lastDocs []string
	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		calls++
		lastDocs = docs
		out := make([]string, len(docs))
		for i, doc := range docs {
			out[i] = fmt.Sprintf("snippet(%s)", doc)
		}
		return out, nil
	}
	mixed, err := svc.Excerpts(context.Background(), "Content", []string{"a", "c"}, "w", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || len(lastDocs) != 1 || lastDocs[0] != "c" {
		t.Errorf("expected one daemon call for just %q, got calls=%d docs=%v", "c", calls, lastDocs)
	}
	if mixed[0] != "snippet(a)" || mixed[1] != "snippet(c)" {
		t.Errorf("expected cached and fresh snippets in order, got %v", mixed)
	}

	// Different highlight options miss the cache.
	_, err = svc.Excerpts(context.Background(), "Content", []string{"a"}, "w", domain.ExcerptOptions{BeforeMatch: "*", AfterMatch: "*", Limit: 64, Around: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected a daemon call for changed options, got %d calls", calls)
	}
}

func TestSearchService_Excerpts_CacheDisabled(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	calls := 0
	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		calls++
		return make([]string, len(docs)), nil
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Excerpts(context.Background(), "Content", []string{"same doc"}, "w", domain.ExcerptOptions{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("expected every call to reach the daemon without a cache, got %d", calls)
	}
}

func TestSearchService_Excerpts_EmptyBatch(t *testing.T) {
	svc, daemon := newTestSearch(t, 16)

	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		t.Error("daemon must not be called for an empty batch")
		return nil, nil
	}

	snippets, err := svc.Excerpts(context.Background(), "Content", nil, "w", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snippets) != 0 {
		t.Errorf("expected no snippets, got %v", snippets)
	}
}

func TestSearchService_Excerpt(t *testing.T) {
	svc, _ := newTestSearch(t, 0)

	// The default mock wraps matched words with the highlight markers.
	snippet, err := svc.Excerpt(context.Background(), "Content", "plain text here", "text", domain.ExcerptOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snippet != "plain <b>text</b> here" {
		t.Errorf("unexpected snippet: %q", snippet)
	}
}

func TestSearchService_Excerpt_BatchMismatch(t *testing.T) {
	svc, daemon := newTestSearch(t, 0)

	daemon.ExcerptsFn = func(index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
		return []string{"one", "two"}, nil
	}

	if _, err := svc.Excerpt(context.Background(), "Content", "doc", "w", domain.ExcerptOptions{}); err == nil {
		t.Error("expected an error when the daemon returns a mismatched batch")
	}
}
