package sphinx

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

//go:embed templates/sphinx.conf.tmpl
var templateFS embed.FS

// Verify interface compliance
var _ driven.ConfigDeployer = (*Deployer)(nil)

// Deployer implements driven.ConfigDeployer. It renders the structured
// index configuration into daemon syntax and uploads the artifact to the
// indexer agent, which writes it to disk and reloads searchd.
type Deployer struct {
	agentURL   string
	httpClient *http.Client
	settings   DeployerConfig
}

// DatabaseSettings is the connection the indexer binary uses to pull rows.
// Rendered into every source block verbatim.
type DatabaseSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// DeployerConfig holds indexer agent connection and rendering settings
type DeployerConfig struct {
	// AgentURL is the indexer agent endpoint (e.g., http://localhost:9308)
	AgentURL string

	// Timeout for HTTP requests
	Timeout time.Duration

	Database DatabaseSettings

	// IndexDir is where the daemon keeps index files, rendered into every
	// index path.
	IndexDir string

	// Listen is the searchd listen address rendered into the daemon block.
	Listen string

	// LogDir receives searchd and query logs.
	LogDir string

	// PidFile is the searchd pid file path.
	PidFile string

	// MemLimit caps indexer memory usage (daemon syntax, e.g. "256M").
	MemLimit string
}

// DefaultDeployerConfig returns sensible defaults
func DefaultDeployerConfig(agentURL string) DeployerConfig {
	return DeployerConfig{
		AgentURL: agentURL,
		Timeout:  60 * time.Second,
		IndexDir: "/var/lib/sphinxsync/indexes",
		Listen:   "127.0.0.1:9312",
		LogDir:   "/var/log/sphinxsync",
		PidFile:  "/var/run/sphinxsync/searchd.pid",
		MemLimit: "256M",
	}
}

// NewDeployer creates a new agent-backed ConfigDeployer
func NewDeployer(cfg DeployerConfig) *Deployer {
	defaults := DefaultDeployerConfig(cfg.AgentURL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.IndexDir == "" {
		cfg.IndexDir = defaults.IndexDir
	}
	if cfg.Listen == "" {
		cfg.Listen = defaults.Listen
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaults.LogDir
	}
	if cfg.PidFile == "" {
		cfg.PidFile = defaults.PidFile
	}
	if cfg.MemLimit == "" {
		cfg.MemLimit = defaults.MemLimit
	}
	return &Deployer{
		agentURL: strings.TrimSuffix(cfg.AgentURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		settings: cfg,
	}
}

// confData is the fully resolved view the template renders. All SQL is
// built here; the template only lays out blocks.
type confData struct {
	BuiltAt  string
	Sources  []confSource
	Database DatabaseSettings
	IndexDir string
	Listen   string
	LogDir   string
	PidFile  string
	MemLimit string
}

type confSource struct {
	Name       string
	IndexName  string
	Query      string
	PostIndex  string
	Attrs      []confAttr
	MultiAttrs []string
	Deltas     []confDelta
}

type confAttr struct {
	Directive string
	AttrName  string
}

type confDelta struct {
	Name        string
	IndexName   string
	Parent      string
	ParentIndex string
	Query       string
}

// Render produces the daemon configuration file for the given build without
// touching the agent.
func (d *Deployer) Render(cfg *domain.IndexConfiguration) (string, error) {
	if cfg == nil || len(cfg.Sources) == 0 {
		return "", fmt.Errorf("%w: configuration has no sources", domain.ErrNoIndexes)
	}

	tmplContent, err := templateFS.ReadFile("templates/sphinx.conf.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read configuration template: %w", err)
	}

	tmpl, err := template.New("sphinx.conf").Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse configuration template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d.buildConfData(cfg)); err != nil {
		return "", fmt.Errorf("failed to render configuration: %w", err)
	}

	return buf.String(), nil
}

func (d *Deployer) buildConfData(cfg *domain.IndexConfiguration) confData {
	data := confData{
		BuiltAt:  cfg.BuiltAt.UTC().Format(time.RFC3339),
		Database: d.settings.Database,
		IndexDir: d.settings.IndexDir,
		Listen:   d.settings.Listen,
		LogDir:   d.settings.LogDir,
		PidFile:  d.settings.PidFile,
		MemLimit: d.settings.MemLimit,
	}

	for _, src := range cfg.Sources {
		section := confSource{
			Name:      sourceName(src.Primary.Name),
			IndexName: src.Primary.Name,
			Query:     selectQuery(src),
			PostIndex: fmt.Sprintf("UPDATE %s SET %s = true", src.Table, domain.IndexedFlagColumn),
			Attrs:     attrDeclarations(src),
		}

		for _, rel := range src.Relations {
			section.MultiAttrs = append(section.MultiAttrs, multiAttr(rel))
		}

		// Delta sources inherit connection settings and attribute
		// declarations; only the row scope changes.
		for _, delta := range src.Delta {
			section.Deltas = append(section.Deltas, confDelta{
				Name:        sourceName(delta.Name),
				IndexName:   delta.Name,
				Parent:      section.Name,
				ParentIndex: section.IndexName,
				Query:       selectQuery(src) + deltaScope(src),
			})
		}

		data.Sources = append(data.Sources, section)
	}

	return data
}

func sourceName(indexName string) string {
	return indexName + "_src"
}

// selectQuery builds the primary sql_query for a source. The first column
// must be the global document ID: the type's namespace hash in the high 32
// bits, the row ID in the low 32.
func selectQuery(src domain.DocumentSource) string {
	cols := []string{fmt.Sprintf("((%d::bigint << 32) | %s.id) AS id", src.BaseID, src.Table)}

	for _, f := range src.Fields {
		switch f.Kind {
		case domain.KindText:
			cols = append(cols, f.Name)
		case domain.KindBoolean:
			cols = append(cols, fmt.Sprintf("%s::int AS %s", f.Name, f.Name))
		case domain.KindTimestamp:
			cols = append(cols, fmt.Sprintf("floor(extract(epoch FROM %s))::int AS %s", f.Name, f.Name))
		case domain.KindForeignKey:
			cols = append(cols, f.Name)
		case domain.KindNumericHash:
			cols = append(cols, fmt.Sprintf("(hashtext(%s) & 2147483647) AS %s", f.Name, f.Name))
		}
	}

	// Every freshly built copy starts clean; the coordinator flips dirty at
	// runtime when a delta supersedes a primary row.
	cols = append(cols, "0 AS "+domain.DirtyAttr)

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), src.Table)
}

// deltaScope restricts a delta source to rows the last primary build has
// not covered.
func deltaScope(src domain.DocumentSource) string {
	return fmt.Sprintf(" WHERE NOT %s.%s", src.Table, domain.IndexedFlagColumn)
}

func attrDeclarations(src domain.DocumentSource) []confAttr {
	attrs := []confAttr{{Directive: "sql_attr_uint", AttrName: domain.DirtyAttr}}
	for _, f := range src.Fields {
		switch f.Kind {
		case domain.KindBoolean:
			attrs = append(attrs, confAttr{Directive: "sql_attr_bool", AttrName: f.Name})
		case domain.KindTimestamp:
			attrs = append(attrs, confAttr{Directive: "sql_attr_timestamp", AttrName: f.Name})
		case domain.KindForeignKey:
			attrs = append(attrs, confAttr{Directive: "sql_attr_bigint", AttrName: f.Name})
		case domain.KindNumericHash:
			attrs = append(attrs, confAttr{Directive: "sql_attr_uint", AttrName: f.Name})
		}
	}
	return attrs
}

// multiAttr renders one multi-valued attribute declaration. The ranged
// query pairs each owning document's global ID with one related row ID.
func multiAttr(rel domain.RelationDescriptor) string {
	q := rel.Query
	return fmt.Sprintf("uint %s from query; SELECT ((%d::bigint << 32) | %s) AS id, %s FROM %s",
		rel.Name, q.BaseID, q.JoinColumn, q.SelectColumn, q.Table)
}

// deployRequest is the artifact upload payload
type deployRequest struct {
	Checksum string `json:"checksum"`
	Config   string `json:"config"`
}

type deployResponse struct {
	Message string `json:"message,omitempty"`
}

// Deploy renders and uploads the configuration to the indexer agent.
func (d *Deployer) Deploy(ctx context.Context, cfg *domain.IndexConfiguration) (*domain.DeployResult, error) {
	rendered, err := d.Render(cfg)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(rendered))
	checksum := hex.EncodeToString(sum[:])

	body, err := json.Marshal(deployRequest{
		Checksum: checksum,
		Config:   rendered,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/config", d.agentURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deployment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sphinx deploy failed: %s - %s", resp.Status, string(respBody))
	}

	var deployResp deployResponse
	_ = json.NewDecoder(resp.Body).Decode(&deployResp)

	indexes := domain.IndexNames(cfg.AllIndexes())
	message := deployResp.Message
	if message == "" {
		message = fmt.Sprintf("deployed %d indexes", len(indexes))
	}

	return &domain.DeployResult{
		Success:  true,
		Checksum: checksum,
		Indexes:  indexes,
		Message:  message,
	}, nil
}

// HealthCheck verifies the indexer agent is reachable
func (d *Deployer) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", d.agentURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sphinx agent not available: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sphinx agent unhealthy: %s", resp.Status)
	}

	return nil
}
