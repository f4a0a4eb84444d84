package driven

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// SearchDaemon is the control channel to the search daemon (searchd gateway
// plus indexer agent). One external call per operation; retries and timeouts
// belong to the adapter boundary, never to callers.
type SearchDaemon interface {
	// UpdateAttributes sets one integer attribute for the given documents
	// across every named index in a single call. Returns the number of
	// documents actually updated.
	UpdateAttributes(ctx context.Context, indexes []string, attr string, values map[domain.DocumentID]int64) (int, error)

	// TriggerReindex asks the indexer agent to rebuild exactly the named
	// indexes. Returns once the trigger is accepted, not when the rebuild
	// completes.
	TriggerReindex(ctx context.Context, indexes []string) error

	// Search runs a query scoped to the named indexes.
	Search(ctx context.Context, indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error)

	// BuildExcerpts highlights the query words inside each document text
	// using the named index's tokenization settings. Returns one snippet
	// per input document, in order.
	BuildExcerpts(ctx context.Context, index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error)

	// HealthCheck verifies the daemon is reachable.
	HealthCheck(ctx context.Context) error
}
