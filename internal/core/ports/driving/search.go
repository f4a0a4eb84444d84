package driving

import (
	"context"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

// SearchService handles type-scoped search and highlighting
type SearchService interface {
	// Search runs a query against every index covering the named type
	Search(ctx context.Context, typeName string, query string, opts domain.SearchOptions) (*domain.SearchResult, error)

	// Excerpts highlights the query words inside each document text
	Excerpts(ctx context.Context, typeName string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error)

	// Excerpt is the single-document convenience over Excerpts
	Excerpt(ctx context.Context, typeName string, doc string, words string, opts domain.ExcerptOptions) (string, error)
}
