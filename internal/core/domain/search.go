package domain

import "time"

// MatchMode selects how the daemon interprets the query text.
type MatchMode string

const (
	MatchAll      MatchMode = "all"      // every word must match
	MatchAny      MatchMode = "any"      // any word may match
	MatchPhrase   MatchMode = "phrase"   // exact phrase
	MatchExtended MatchMode = "extended" // daemon query syntax (default)
)

// SearchOptions configures a search request
type SearchOptions struct {
	Mode   MatchMode `json:"mode"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`

	// Filters restricts matches to documents whose attribute value is in
	// the given set.
	Filters map[string][]int64 `json:"filters,omitempty"`

	// SortBy names an attribute to sort on, descending. Empty sorts by
	// relevance.
	SortBy string `json:"sort_by,omitempty"`
}

// DefaultSearchOptions returns sensible defaults
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Mode:   MatchExtended,
		Limit:  20,
		Offset: 0,
	}
}

// Match is one ranked document in a result set.
type Match struct {
	DocID  DocumentID       `json:"doc_id"`
	Weight int              `json:"weight"`
	Attrs  map[string]int64 `json:"attrs,omitempty"`
}

// SearchResult represents the result of a search query
type SearchResult struct {
	Query   string    `json:"query"`
	Indexes []string  `json:"indexes"`
	Matches []Match   `json:"matches"`
	// Total is the number of matches returned, TotalFound the number the
	// daemon knows about.
	Total      int           `json:"total"`
	TotalFound int           `json:"total_found"`
	Took       time.Duration `json:"took" swaggertype:"integer" example:"1500000"`
}

// ExcerptOptions configures snippet building.
type ExcerptOptions struct {
	BeforeMatch    string `json:"before_match,omitempty"`
	AfterMatch     string `json:"after_match,omitempty"`
	ChunkSeparator string `json:"chunk_separator,omitempty"`
	Limit          int    `json:"limit,omitempty"`  // max snippet length in characters
	Around         int    `json:"around,omitempty"` // words kept around each match
}

// DefaultExcerptOptions returns the daemon's documented defaults.
func DefaultExcerptOptions() ExcerptOptions {
	return ExcerptOptions{
		BeforeMatch:    "<b>",
		AfterMatch:     "</b>",
		ChunkSeparator: " ... ",
		Limit:          256,
		Around:         5,
	}
}
