package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driving"
	"github.com/custodia-labs/sphinxsync/internal/metrics"
)

// DefaultExcerptCacheSize bounds the excerpt cache when the caller does not
// choose a size. Excerpt building is deterministic for a given (index, words,
// options, text) tuple, so cached snippets never go stale.
const DefaultExcerptCacheSize = 1000

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// searchService implements type-scoped search over the daemon
type searchService struct {
	registry driven.IndexRegistry
	daemon   driven.SearchDaemon
	cache    *lru.Cache[string, string] // nil when caching is disabled
}

// NewSearchService creates a new SearchService. cacheSize bounds the excerpt
// cache; zero or negative disables caching entirely.
func NewSearchService(
	registry driven.IndexRegistry,
	daemon driven.SearchDaemon,
	cacheSize int,
) driving.SearchService {
	var cache *lru.Cache[string, string]
	if cacheSize > 0 {
		cache, _ = lru.New[string, string](cacheSize)
	}
	return &searchService{
		registry: registry,
		daemon:   daemon,
		cache:    cache,
	}
}

// Search runs a query against every index covering the named type.
func (s *searchService) Search(ctx context.Context, typeName string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := time.Now()

	// Apply defaults
	if opts.Mode == "" {
		opts.Mode = domain.MatchExtended
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}

	indexes, err := s.registry.IndexesFor(typeName)
	if err != nil {
		metrics.SearchQueries.WithLabelValues("error").Inc()
		return nil, err
	}

	// Stale primary copies carry dirty=1 while their fresh delta twins carry
	// dirty=0, so filtering on clean leaves exactly one live copy of each
	// document visible. Callers filtering on dirty themselves keep their
	// scope untouched.
	if _, ok := opts.Filters[domain.DirtyAttr]; !ok {
		filters := make(map[string][]int64, len(opts.Filters)+1)
		for k, v := range opts.Filters {
			filters[k] = v
		}
		filters[domain.DirtyAttr] = []int64{0}
		opts.Filters = filters
	}

	result, err := s.daemon.Search(ctx, domain.IndexNames(indexes), query, opts)
	if err != nil {
		metrics.SearchQueries.WithLabelValues("error").Inc()
		return nil, err
	}

	result.Query = query
	result.Indexes = domain.IndexNames(indexes)
	result.Took = time.Since(start)
	metrics.SearchQueries.WithLabelValues("ok").Inc()
	return result, nil
}

// Excerpts highlights the query words inside each document text. Snippets
// for texts seen before come from the cache; the rest are built by the
// daemon in one batched call.
func (s *searchService) Excerpts(ctx context.Context, typeName string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
	if len(docs) == 0 {
		return []string{}, nil
	}
	if (opts == domain.ExcerptOptions{}) {
		opts = domain.DefaultExcerptOptions()
	}

	index, err := s.excerptIndex(typeName)
	if err != nil {
		return nil, err
	}

	results := make([]string, len(docs))
	uncachedIndices := make([]int, 0, len(docs))
	uncachedDocs := make([]string, 0, len(docs))

	// First pass: serve what the cache already has.
	for i, doc := range docs {
		key := excerptKey(index, words, opts, doc)
		if s.cache != nil {
			if snippet, ok := s.cache.Get(key); ok {
				metrics.ExcerptCache.WithLabelValues("hit").Inc()
				results[i] = snippet
				continue
			}
			metrics.ExcerptCache.WithLabelValues("miss").Inc()
		}
		uncachedIndices = append(uncachedIndices, i)
		uncachedDocs = append(uncachedDocs, doc)
	}

	if len(uncachedDocs) == 0 {
		return results, nil
	}

	snippets, err := s.daemon.BuildExcerpts(ctx, index, uncachedDocs, words, opts)
	if err != nil {
		return nil, err
	}
	if len(snippets) != len(uncachedDocs) {
		return nil, fmt.Errorf("daemon returned %d excerpts for %d documents", len(snippets), len(uncachedDocs))
	}

	for j, idx := range uncachedIndices {
		results[idx] = snippets[j]
		if s.cache != nil {
			s.cache.Add(excerptKey(index, words, opts, docs[idx]), snippets[j])
		}
	}
	return results, nil
}

// Excerpt is the single-document convenience over Excerpts.
func (s *searchService) Excerpt(ctx context.Context, typeName string, doc string, words string, opts domain.ExcerptOptions) (string, error) {
	snippets, err := s.Excerpts(ctx, typeName, []string{doc}, words, opts)
	if err != nil {
		return "", err
	}
	if len(snippets) != 1 {
		return "", fmt.Errorf("expected one excerpt, got %d", len(snippets))
	}
	return snippets[0], nil
}

// excerptIndex picks the index whose tokenization settings the daemon uses
// for snippet building: the type's own primary index, which is the last
// covering primary in chain order.
func (s *searchService) excerptIndex(typeName string) (string, error) {
	primaries, err := s.registry.PrimaryIndexesFor(typeName)
	if err != nil {
		return "", err
	}
	if len(primaries) == 0 {
		return "", fmt.Errorf("%w: no primary index covers type %q", domain.ErrNoIndexes, typeName)
	}
	return primaries[len(primaries)-1].Name, nil
}

// excerptKey hashes everything the daemon's snippet output depends on.
func excerptKey(index, words string, opts domain.ExcerptOptions, doc string) string {
	combined := fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%s\x00%d\x00%d\x00%s",
		index, words, opts.BeforeMatch, opts.AfterMatch, opts.ChunkSeparator, opts.Limit, opts.Around, doc)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])
}
