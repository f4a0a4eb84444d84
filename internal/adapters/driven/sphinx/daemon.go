package sphinx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchDaemon = (*Daemon)(nil)

// Daemon implements driven.SearchDaemon against the sphinxsync gateway, the
// small HTTP sidecar that fronts searchd's native protocol and shells out to
// the indexer binary for rebuilds.
type Daemon struct {
	baseURL    string
	agentURL   string
	httpClient *http.Client

	// reindexLimiter spaces out TriggerReindex calls. Every document write
	// outside bulk mode triggers a delta rebuild, and the indexer binary
	// handles concurrent invocations for the same index badly.
	reindexLimiter *rate.Limiter
}

// Config holds gateway connection configuration
type Config struct {
	// BaseURL is the gateway endpoint (e.g., http://localhost:9307)
	BaseURL string

	// AgentURL is the indexer agent endpoint reindex triggers go to.
	// Empty means the agent listens behind the gateway URL.
	AgentURL string

	// Timeout for HTTP requests
	Timeout time.Duration

	// ReindexInterval is the minimum spacing between reindex triggers.
	ReindexInterval time.Duration

	// ReindexBurst is how many triggers may fire back to back before the
	// interval applies.
	ReindexBurst int
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		ReindexInterval: time.Second,
		ReindexBurst:    1,
	}
}

// NewDaemon creates a new gateway-backed SearchDaemon
func NewDaemon(cfg Config) *Daemon {
	interval := cfg.ReindexInterval
	if interval <= 0 {
		interval = time.Second
	}
	burst := cfg.ReindexBurst
	if burst <= 0 {
		burst = 1
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	agentURL := strings.TrimSuffix(cfg.AgentURL, "/")
	if agentURL == "" {
		agentURL = baseURL
	}
	return &Daemon{
		baseURL:  baseURL,
		agentURL: agentURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		reindexLimiter: rate.NewLimiter(rate.Every(interval), burst),
	}
}

// updateRequest is the attribute update payload. Document IDs travel as
// decimal strings because JSON object keys cannot be numbers.
type updateRequest struct {
	Indexes []string         `json:"indexes"`
	Attr    string           `json:"attr"`
	Values  map[string]int64 `json:"values"`
}

type updateResponse struct {
	Updated int `json:"updated"`
}

// UpdateAttributes sets one integer attribute for the given documents across
// every named index in a single gateway call.
func (d *Daemon) UpdateAttributes(ctx context.Context, indexes []string, attr string, values map[domain.DocumentID]int64) (int, error) {
	updateReq := updateRequest{
		Indexes: indexes,
		Attr:    attr,
		Values:  make(map[string]int64, len(values)),
	}
	for id, v := range values {
		updateReq.Values[strconv.FormatUint(uint64(id), 10)] = v
	}

	body, err := json.Marshal(updateReq)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/api/update", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("sphinx update failed: %s - %s", resp.Status, string(respBody))
	}

	var updateResp updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&updateResp); err != nil {
		return 0, err
	}

	return updateResp.Updated, nil
}

type reindexRequest struct {
	Indexes []string `json:"indexes"`
}

// TriggerReindex asks the indexer agent to rebuild exactly the named indexes.
// Returns once the gateway accepts the trigger, not when the rebuild
// completes.
func (d *Daemon) TriggerReindex(ctx context.Context, indexes []string) error {
	if err := d.reindexLimiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(reindexRequest{Indexes: indexes})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/reindex", d.agentURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sphinx reindex failed: %s - %s", resp.Status, string(respBody))
	}

	return nil
}

type searchRequest struct {
	Indexes []string           `json:"indexes"`
	Query   string             `json:"query"`
	Mode    string             `json:"mode,omitempty"`
	Limit   int                `json:"limit,omitempty"`
	Offset  int                `json:"offset,omitempty"`
	Filters map[string][]int64 `json:"filters,omitempty"`
	SortBy  string             `json:"sort_by,omitempty"`
}

// searchResponse mirrors the gateway's result format
type searchResponse struct {
	Matches []struct {
		ID     uint64           `json:"id"`
		Weight int              `json:"weight"`
		Attrs  map[string]int64 `json:"attrs,omitempty"`
	} `json:"matches"`
	Total      int   `json:"total"`
	TotalFound int   `json:"total_found"`
	TookMs     int64 `json:"took_ms"`
}

// Search runs a query scoped to the named indexes.
func (d *Daemon) Search(ctx context.Context, indexes []string, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		Indexes: indexes,
		Query:   query,
		Mode:    string(opts.Mode),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		Filters: opts.Filters,
		SortBy:  opts.SortBy,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/search", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sphinx search failed: %s - %s", resp.Status, string(respBody))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, err
	}

	// Convert to domain objects
	matches := make([]domain.Match, 0, len(searchResp.Matches))
	for _, hit := range searchResp.Matches {
		matches = append(matches, domain.Match{
			DocID:  domain.DocumentID(hit.ID),
			Weight: hit.Weight,
			Attrs:  hit.Attrs,
		})
	}

	return &domain.SearchResult{
		Query:      query,
		Indexes:    indexes,
		Matches:    matches,
		Total:      searchResp.Total,
		TotalFound: searchResp.TotalFound,
		Took:       time.Duration(searchResp.TookMs) * time.Millisecond,
	}, nil
}

type excerptsRequest struct {
	Index   string   `json:"index"`
	Docs    []string `json:"docs"`
	Words   string   `json:"words"`
	Options struct {
		BeforeMatch    string `json:"before_match,omitempty"`
		AfterMatch     string `json:"after_match,omitempty"`
		ChunkSeparator string `json:"chunk_separator,omitempty"`
		Limit          int    `json:"limit,omitempty"`
		Around         int    `json:"around,omitempty"`
	} `json:"options"`
}

type excerptsResponse struct {
	Excerpts []string `json:"excerpts"`
}

// BuildExcerpts highlights the query words inside each document text using
// the named index's tokenization settings.
func (d *Daemon) BuildExcerpts(ctx context.Context, index string, docs []string, words string, opts domain.ExcerptOptions) ([]string, error) {
	excerptsReq := excerptsRequest{
		Index: index,
		Docs:  docs,
		Words: words,
	}
	excerptsReq.Options.BeforeMatch = opts.BeforeMatch
	excerptsReq.Options.AfterMatch = opts.AfterMatch
	excerptsReq.Options.ChunkSeparator = opts.ChunkSeparator
	excerptsReq.Options.Limit = opts.Limit
	excerptsReq.Options.Around = opts.Around

	body, err := json.Marshal(excerptsReq)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/excerpts", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sphinx excerpts failed: %s - %s", resp.Status, string(respBody))
	}

	var excerptsResp excerptsResponse
	if err := json.NewDecoder(resp.Body).Decode(&excerptsResp); err != nil {
		return nil, err
	}

	if len(excerptsResp.Excerpts) != len(docs) {
		return nil, fmt.Errorf("sphinx excerpts returned %d snippets for %d docs", len(excerptsResp.Excerpts), len(docs))
	}

	return excerptsResp.Excerpts, nil
}

// HealthCheck verifies the gateway is reachable
func (d *Daemon) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sphinx gateway not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sphinx gateway unhealthy: %s", resp.Status)
	}

	return nil
}
