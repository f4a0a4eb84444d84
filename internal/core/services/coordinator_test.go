package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sphinxsync/internal/runtime"
)

// newTestCoordinator wires a coordinator against the real mapper and
// registry, with only the daemon mocked.
func newTestCoordinator(t *testing.T) (*Coordinator, *mocks.MockSearchDaemon) {
	t.Helper()

	snapshot := mapperSnapshot()
	cfg, err := NewMapper(MapperConfig{}).BuildConfiguration(snapshot)
	if err != nil {
		t.Fatalf("failed to build configuration: %v", err)
	}

	registry := runtime.NewRegistry()
	registry.Rebuild(snapshot, cfg)

	daemon := mocks.NewMockSearchDaemon()
	coord := NewCoordinator(CoordinatorConfig{
		Registry: registry,
		Daemon:   daemon,
	})
	return coord, daemon
}

func sameStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestCoordinatorOnWriteMarksDirtyThenReindexes(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updates := daemon.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected exactly one attribute update, got %d", len(updates))
	}
	if !sameStrings(updates[0].Indexes, []string{"content", "article"}) {
		t.Errorf("expected update scoped to all covering primaries, got %v", updates[0].Indexes)
	}
	if updates[0].Attr != domain.DirtyAttr {
		t.Errorf("expected %q attribute, got %q", domain.DirtyAttr, updates[0].Attr)
	}

	// Article descends from Content, so the document ID lives in Content's
	// namespace.
	wantID, err := domain.NewDocumentID("Content", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates[0].Values) != 1 || updates[0].Values[wantID] != 1 {
		t.Errorf("expected {%d: 1}, got %v", wantID, updates[0].Values)
	}

	reindexes := daemon.Reindexes()
	if len(reindexes) != 1 {
		t.Fatalf("expected exactly one reindex trigger, got %d", len(reindexes))
	}
	if !sameStrings(reindexes[0], []string{"content_delta", "article_delta"}) {
		t.Errorf("expected reindex scoped to all covering deltas, got %v", reindexes[0])
	}
}

func TestCoordinatorOnDeleteFollowsWriteFlow(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	err := coord.OnDelete(context.Background(), domain.RecordRef{Type: "Content", ID: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updates := daemon.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected exactly one attribute update, got %d", len(updates))
	}
	if !sameStrings(updates[0].Indexes, []string{"content"}) {
		t.Errorf("expected update scoped to the content primary, got %v", updates[0].Indexes)
	}
	if len(daemon.Reindexes()) != 1 {
		t.Fatalf("expected exactly one reindex trigger, got %d", len(daemon.Reindexes()))
	}
}

func TestCoordinatorBulkModeSuppressesSync(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	coord.EnterBulkMode()
	if !coord.BulkMode() {
		t.Fatal("expected bulk mode to be active")
	}
	// Entering twice changes nothing.
	coord.EnterBulkMode()
	if !coord.BulkMode() {
		t.Fatal("expected bulk mode to stay active")
	}

	if err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := coord.OnDelete(context.Background(), domain.RecordRef{Type: "Article", ID: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(daemon.Updates()) != 0 || len(daemon.Reindexes()) != 0 {
		t.Errorf("expected no daemon calls during bulk mode, got %d updates and %d reindexes",
			len(daemon.Updates()), len(daemon.Reindexes()))
	}
}

func TestCoordinatorExitBulkModeRebuildsEverything(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	coord.EnterBulkMode()
	if err := coord.ExitBulkMode(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coord.BulkMode() {
		t.Error("expected bulk mode to be off after exit")
	}

	reindexes := daemon.Reindexes()
	if len(reindexes) != 1 {
		t.Fatalf("expected exactly one reindex trigger, got %d", len(reindexes))
	}
	want := []string{
		"article", "article_delta",
		"content", "content_delta",
		"newsarticle", "newsarticle_delta",
	}
	if !sameStrings(reindexes[0], want) {
		t.Errorf("expected full rebuild of every index, got %v", reindexes[0])
	}

	// Synchronization resumes once the flag is down.
	if err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(daemon.Updates()) != 1 {
		t.Errorf("expected writes to sync again after exit, got %d updates", len(daemon.Updates()))
	}
}

func TestCoordinatorExitBulkModeIsUnconditional(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	// Exiting without ever entering still forces the full rebuild.
	if err := coord.ExitBulkMode(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(daemon.Reindexes()) != 1 {
		t.Fatalf("expected a rebuild even without a prior enter, got %d", len(daemon.Reindexes()))
	}
}

func TestCoordinatorRejectsInvalidRecords(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	tests := []struct {
		name   string
		record domain.RecordRef
	}{
		{"empty type", domain.RecordRef{ID: 1}},
		{"zero id", domain.RecordRef{Type: "Article"}},
		{"negative id", domain.RecordRef{Type: "Article", ID: -5}},
		{"id too wide", domain.RecordRef{Type: "Article", ID: int64(math.MaxUint32) + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := coord.OnWrite(context.Background(), tt.record)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	// Invalid input is rejected before the daemon is contacted.
	if len(daemon.Updates()) != 0 || len(daemon.Reindexes()) != 0 {
		t.Errorf("expected no daemon calls for rejected records, got %d updates and %d reindexes",
			len(daemon.Updates()), len(daemon.Reindexes()))
	}
}

func TestCoordinatorUnknownTypeSurfacesImmediately(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Ghost", ID: 1})
	if !errors.Is(err, domain.ErrTypeNotRegistered) {
		t.Errorf("expected ErrTypeNotRegistered, got %v", err)
	}
	if len(daemon.Updates()) != 0 || len(daemon.Reindexes()) != 0 {
		t.Error("expected no daemon calls for an unregistered type")
	}
}

func TestCoordinatorUnbuiltRegistry(t *testing.T) {
	daemon := mocks.NewMockSearchDaemon()
	coord := NewCoordinator(CoordinatorConfig{
		Registry: runtime.NewRegistry(),
		Daemon:   daemon,
	})

	err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 1})
	if !errors.Is(err, domain.ErrNoIndexes) {
		t.Errorf("expected ErrNoIndexes before the first configuration build, got %v", err)
	}
}

func TestCoordinatorPropagatesDaemonErrors(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	updateErr := errors.New("searchd unreachable")
	daemon.UpdateErr = updateErr

	err := coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 1})
	if !errors.Is(err, updateErr) {
		t.Fatalf("expected the update failure to propagate, got %v", err)
	}
	// No retry and no reindex once the dirty mark failed.
	if len(daemon.Reindexes()) != 0 {
		t.Errorf("expected no reindex after a failed dirty mark, got %d", len(daemon.Reindexes()))
	}

	daemon.UpdateErr = nil
	reindexErr := errors.New("indexer busy")
	daemon.ReindexErr = reindexErr

	err = coord.OnWrite(context.Background(), domain.RecordRef{Type: "Article", ID: 1})
	if !errors.Is(err, reindexErr) {
		t.Fatalf("expected the reindex failure to propagate, got %v", err)
	}
	// The dirty mark stays applied; there is no rollback path.
	if len(daemon.Updates()) != 1 {
		t.Errorf("expected the dirty mark to remain applied, got %d updates", len(daemon.Updates()))
	}
}

func TestCoordinatorReindexExactSet(t *testing.T) {
	coord, daemon := newTestCoordinator(t)

	// An empty set is a no-op, not an error.
	if err := coord.Reindex(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(daemon.Reindexes()) != 0 {
		t.Fatal("expected no trigger for an empty set")
	}

	indexes := []domain.IndexDescriptor{
		{Name: "article_delta", Type: "Article", Delta: true},
		{Name: "content_delta", Type: "Content", Delta: true},
	}
	if err := coord.Reindex(context.Background(), indexes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reindexes := daemon.Reindexes()
	if len(reindexes) != 1 || !sameStrings(reindexes[0], []string{"article_delta", "content_delta"}) {
		t.Errorf("expected a single trigger for exactly the given indexes, got %v", reindexes)
	}
}
