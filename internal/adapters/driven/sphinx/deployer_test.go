package sphinx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
)

func testDeployerConfig(agentURL string) DeployerConfig {
	cfg := DefaultDeployerConfig(agentURL)
	cfg.Database = DatabaseSettings{
		Host:     "localhost",
		Port:     5432,
		User:     "sphinx",
		Password: "secret",
		Name:     "app",
	}
	return cfg
}

func testConfiguration() *domain.IndexConfiguration {
	primary, delta := domain.IndexPair("Article")
	return &domain.IndexConfiguration{
		BuiltAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Sources: []domain.DocumentSource{{
			Type:   "Article",
			Table:  "articles",
			BaseID: domain.BaseID("Article"),
			Fields: []domain.FieldDescriptor{
				{Name: "title", Owner: "Article", Kind: domain.KindText},
				{Name: "body", Owner: "Article", Kind: domain.KindText},
				{Name: "featured", Owner: "Article", Kind: domain.KindBoolean},
				{Name: "published_at", Owner: "Article", Kind: domain.KindTimestamp},
				{Name: "author_id", Owner: "Article", Kind: domain.KindForeignKey},
				{Name: "class_name", Owner: "Article", Kind: domain.KindNumericHash},
			},
			Relations: []domain.RelationDescriptor{{
				Name:  "tag_ids",
				Owner: "Article",
				Kind:  domain.RelationManyMany,
				Query: domain.QuerySpec{
					Table:        "article_tags",
					JoinColumn:   "article_id",
					SelectColumn: "tag_id",
					BaseID:       domain.BaseID("Article"),
				},
			}},
			Primary: primary,
			Delta:   []domain.IndexDescriptor{delta},
		}},
	}
}

func TestDeployer_Render(t *testing.T) {
	d := NewDeployer(testDeployerConfig("http://localhost:9308"))

	conf, err := d.Render(testConfiguration())
	require.NoError(t, err)

	baseID := domain.BaseID("Article")
	wants := []string{
		"source article_src",
		"source article_delta_src : article_src",
		fmt.Sprintf("((%d::bigint << 32) | articles.id) AS id", baseID),
		"0 AS dirty",
		"sql_attr_uint\t= dirty",
		"sql_attr_bool\t= featured",
		"sql_attr_timestamp\t= published_at",
		"sql_attr_bigint\t= author_id",
		"sql_attr_uint\t= class_name",
		"floor(extract(epoch FROM published_at))::int AS published_at",
		"(hashtext(class_name) & 2147483647) AS class_name",
		fmt.Sprintf("uint tag_ids from query; SELECT ((%d::bigint << 32) | article_id) AS id, tag_id FROM article_tags", baseID),
		"sql_query_post_index\t= UPDATE articles SET sphinx_primary_indexed = true",
		"WHERE NOT articles.sphinx_primary_indexed",
		"index article\n{",
		"index article_delta : article",
		"= /var/lib/sphinxsync/indexes/article_delta",
		"= 127.0.0.1:9312",
		"= 256M",
		"= app",
		"2026-08-01T12:00:00Z",
	}
	for _, want := range wants {
		assert.Contains(t, conf, want)
	}

	assert.NotContains(t, conf, "{{", "rendered configuration contains unexpanded template syntax")
}

func TestDeployer_Render_TextFieldsAreNotAttributes(t *testing.T) {
	d := NewDeployer(testDeployerConfig("http://localhost:9308"))

	conf, err := d.Render(testConfiguration())
	require.NoError(t, err)

	for _, field := range []string{"title", "body"} {
		assert.NotContains(t, conf, "= "+field+"\n", "text field %s must not be declared as an attribute", field)
	}
}

func TestDeployer_Render_Deterministic(t *testing.T) {
	d := NewDeployer(testDeployerConfig("http://localhost:9308"))

	first, err := d.Render(testConfiguration())
	require.NoError(t, err)
	second, err := d.Render(testConfiguration())
	require.NoError(t, err)

	assert.Equal(t, first, second, "expected identical output for identical configuration")
}

func TestDeployer_Render_Empty(t *testing.T) {
	d := NewDeployer(testDeployerConfig("http://localhost:9308"))

	_, err := d.Render(&domain.IndexConfiguration{})
	assert.ErrorIs(t, err, domain.ErrNoIndexes)
}

func TestDeployer_Deploy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/config", r.URL.Path)

		var req deployRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Config, "source article_src")
		sum := sha256.Sum256([]byte(req.Config))
		assert.Equal(t, hex.EncodeToString(sum[:]), req.Checksum, "checksum does not match uploaded configuration")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(deployResponse{Message: "configuration reloaded"})
	}))
	defer server.Close()

	d := NewDeployer(testDeployerConfig(server.URL))
	result, err := d.Deploy(context.Background(), testConfiguration())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Checksum, 64, "expected hex sha256 checksum")
	assert.Equal(t, []string{"article", "article_delta"}, result.Indexes)
	assert.Equal(t, "configuration reloaded", result.Message)
}

func TestDeployer_Deploy_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("indexer rejected configuration"))
	}))
	defer server.Close()

	d := NewDeployer(testDeployerConfig(server.URL))
	_, err := d.Deploy(context.Background(), testConfiguration())
	require.Error(t, err, "expected error for 422 response")
	assert.Contains(t, err.Error(), "sphinx deploy failed")
	assert.Contains(t, err.Error(), "indexer rejected configuration")
}

func TestDeployer_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
	}))
	defer server.Close()

	d := NewDeployer(testDeployerConfig(server.URL))
	assert.NoError(t, d.HealthCheck(context.Background()))
}

func TestDeployer_HealthCheck_Unhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDeployer(testDeployerConfig(server.URL))
	assert.Error(t, d.HealthCheck(context.Background()), "expected error for unhealthy agent")
}
