package schemafile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.WatchableSchemaSource = (*Source)(nil)

// Source loads schema snapshots from a YAML declaration file and can watch
// the file for edits. Deployments that want declaration-as-code use this
// instead of the Postgres registration rows.
type Source struct {
	path   string
	logger *slog.Logger
}

// schemaFile is the YAML document shape: a flat list of type declarations.
type schemaFile struct {
	Types []*domain.TypeDescriptor `yaml:"types"`
}

// NewSource creates a file-backed schema source for the given path.
func NewSource(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, logger: logger}
}

// Path returns the declaration file path.
func (s *Source) Path() string {
	return s.path
}

// Snapshot parses the declaration file into a schema snapshot.
func (s *Source) Snapshot(ctx context.Context) (*domain.SchemaSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", s.path, err)
	}

	var parsed schemaFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", s.path, err)
	}

	return domain.NewSchemaSnapshot(parsed.Types), nil
}

// Watch reports edits to the declaration file. The directory is watched
// rather than the file itself because editors replace files on save, which
// drops a direct file watch. Bursts coalesce into one pending notification.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	base := filepath.Base(s.path)
	changes := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()
		defer close(changes)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				s.logger.Debug("schema file changed", "path", s.path, "op", event.Op.String())
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("schema file watch error", "path", s.path, "error", err)
			}
		}
	}()

	return changes, nil
}
