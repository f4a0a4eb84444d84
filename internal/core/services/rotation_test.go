package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/sphinxsync/internal/runtime"
)

type rotationFixture struct {
	orchestrator *RotationOrchestrator
	daemon       *mocks.MockSearchDaemon
	store        *mocks.MockRotationStateStore
	lock         *mocks.MockDistributedLock
}

func newRotationFixture(t *testing.T) *rotationFixture {
	t.Helper()

	snapshot := mapperSnapshot()
	cfg, err := NewMapper(MapperConfig{}).BuildConfiguration(snapshot)
	if err != nil {
		t.Fatalf("failed to build configuration: %v", err)
	}
	registry := runtime.NewRegistry()
	registry.Rebuild(snapshot, cfg)

	daemon := mocks.NewMockSearchDaemon()
	store := mocks.NewMockRotationStateStore()
	lock := mocks.NewMockDistributedLock()
	orchestrator := NewRotationOrchestrator(RotationOrchestratorConfig{
		Registry:      registry,
		Daemon:        daemon,
		RotationStore: store,
		Lock:          lock,
	})
	return &rotationFixture{orchestrator: orchestrator, daemon: daemon, store: store, lock: lock}
}

func TestRotationOrchestrator_RotateDeltas(t *testing.T) {
	f := newRotationFixture(t)

	result, err := f.orchestrator.RotateDeltas(context.Background())
	if err != nil {
		t.Fatalf("RotateDeltas failed: %v", err)
	}
	if !result.Success {
		t.Error("expected successful result")
	}

	reindexes := f.daemon.Reindexes()
	if len(reindexes) != 1 {
		t.Fatalf("expected 1 reindex trigger, got %d", len(reindexes))
	}
	want := []string{"article_delta", "content_delta", "newsarticle_delta"}
	if !sameStrings(reindexes[0], want) {
		t.Errorf("expected delta indexes %v, got %v", want, reindexes[0])
	}
	if !sameStrings(result.Indexes, want) {
		t.Errorf("result indexes = %v, want %v", result.Indexes, want)
	}

	state, err := f.store.Get(context.Background(), "content_delta")
	if err != nil {
		t.Fatalf("expected rotation state for content_delta: %v", err)
	}
	if state.Status != domain.RotationStatusCompleted {
		t.Errorf("expected completed status, got %s", state.Status)
	}
	if state.Runs != 1 {
		t.Errorf("expected 1 run, got %d", state.Runs)
	}
	if state.CompletedAt == nil {
		t.Error("expected completed timestamp")
	}

	// Primary indexes stay untouched by delta rotation
	if _, err := f.store.Get(context.Background(), "content"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected no state for primary index, got %v", err)
	}
}

func TestRotationOrchestrator_RebuildAll(t *testing.T) {
	f := newRotationFixture(t)

	result, err := f.orchestrator.RebuildAll(context.Background())
	if err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}

	want := []string{
		"article", "article_delta",
		"content", "content_delta",
		"newsarticle", "newsarticle_delta",
	}
	if !sameStrings(result.Indexes, want) {
		t.Errorf("result indexes = %v, want %v", result.Indexes, want)
	}
	if f.store.Count() != 6 {
		t.Errorf("expected 6 rotation states, got %d", f.store.Count())
	}
}

func TestRotationOrchestrator_RebuildType(t *testing.T) {
	f := newRotationFixture(t)

	result, err := f.orchestrator.RebuildType(context.Background(), "NewsArticle")
	if err != nil {
		t.Fatalf("RebuildType failed: %v", err)
	}

	// NewsArticle sits at the bottom of the chain, so every ancestor index
	// is part of its covering set.
	want := []string{
		"content", "article", "newsarticle",
		"content_delta", "article_delta", "newsarticle_delta",
	}
	if !sameStrings(result.Indexes, want) {
		t.Errorf("result indexes = %v, want %v", result.Indexes, want)
	}
}

func TestRotationOrchestrator_RebuildTypeUnknown(t *testing.T) {
	f := newRotationFixture(t)

	_, err := f.orchestrator.RebuildType(context.Background(), "Ghost")
	if !errors.Is(err, domain.ErrTypeNotRegistered) {
		t.Errorf("expected ErrTypeNotRegistered, got %v", err)
	}
	if len(f.daemon.Reindexes()) != 0 {
		t.Error("expected no reindex trigger for unknown type")
	}
}

func TestRotationOrchestrator_LockContention(t *testing.T) {
	f := newRotationFixture(t)
	f.lock.SetLockHeld("rotation", time.Minute)

	_, err := f.orchestrator.RotateDeltas(context.Background())
	if !errors.Is(err, domain.ErrRotationInProgress) {
		t.Errorf("expected ErrRotationInProgress, got %v", err)
	}
	if len(f.daemon.Reindexes()) != 0 {
		t.Error("expected no reindex trigger while lock is held")
	}
}

func TestRotationOrchestrator_LockReleasedAfterRotation(t *testing.T) {
	f := newRotationFixture(t)

	if _, err := f.orchestrator.RotateDeltas(context.Background()); err != nil {
		t.Fatalf("first rotation failed: %v", err)
	}
	if f.lock.IsHeld("rotation") {
		t.Error("expected rotation lock to be released")
	}
	if _, err := f.orchestrator.RotateDeltas(context.Background()); err != nil {
		t.Fatalf("second rotation failed: %v", err)
	}
}

func TestRotationOrchestrator_DaemonFailure(t *testing.T) {
	f := newRotationFixture(t)
	f.daemon.ReindexErr = errors.New("searchd unreachable")

	result, err := f.orchestrator.RotateDeltas(context.Background())
	if err == nil {
		t.Fatal("expected error from failing daemon")
	}
	if result == nil || result.Success {
		t.Fatal("expected failed result alongside error")
	}
	if result.Error == "" {
		t.Error("expected error message in result")
	}

	state, err := f.store.Get(context.Background(), "article_delta")
	if err != nil {
		t.Fatalf("expected rotation state for article_delta: %v", err)
	}
	if state.Status != domain.RotationStatusFailed {
		t.Errorf("expected failed status, got %s", state.Status)
	}
	if state.Error == "" {
		t.Error("expected failure reason in state")
	}
	if state.Runs != 0 {
		t.Errorf("expected no completed runs, got %d", state.Runs)
	}

	// Lock must not leak after a failed rotation
	if f.lock.IsHeld("rotation") {
		t.Error("expected rotation lock to be released after failure")
	}
}

func TestRotationOrchestrator_RunsAccumulate(t *testing.T) {
	f := newRotationFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.orchestrator.RotateDeltas(context.Background()); err != nil {
			t.Fatalf("rotation %d failed: %v", i, err)
		}
	}

	state, err := f.store.Get(context.Background(), "newsarticle_delta")
	if err != nil {
		t.Fatalf("expected rotation state: %v", err)
	}
	if state.Runs != 3 {
		t.Errorf("expected 3 runs, got %d", state.Runs)
	}
}

func TestRotationOrchestrator_EmptyRegistry(t *testing.T) {
	f := newRotationFixture(t)
	orchestrator := NewRotationOrchestrator(RotationOrchestratorConfig{
		Registry:      runtime.NewRegistry(),
		Daemon:        f.daemon,
		RotationStore: f.store,
	})

	_, err := orchestrator.RotateDeltas(context.Background())
	if !errors.Is(err, domain.ErrNoIndexes) {
		t.Errorf("expected ErrNoIndexes, got %v", err)
	}
}

func TestRotationOrchestrator_WithoutLock(t *testing.T) {
	f := newRotationFixture(t)
	orchestrator := NewRotationOrchestrator(RotationOrchestratorConfig{
		Registry:      f.orchestrator.registry,
		Daemon:        f.daemon,
		RotationStore: f.store,
	})

	if _, err := orchestrator.RotateDeltas(context.Background()); err != nil {
		t.Fatalf("lockless rotation failed: %v", err)
	}
}

func TestRotationOrchestrator_ListRotationStates(t *testing.T) {
	f := newRotationFixture(t)

	if _, err := f.orchestrator.RebuildAll(context.Background()); err != nil {
		t.Fatalf("RebuildAll failed: %v", err)
	}

	states, err := f.orchestrator.ListRotationStates(context.Background())
	if err != nil {
		t.Fatalf("ListRotationStates failed: %v", err)
	}
	if len(states) != 6 {
		t.Fatalf("expected 6 states, got %d", len(states))
	}
	for i := 1; i < len(states); i++ {
		if states[i-1].Index >= states[i].Index {
			t.Errorf("states not sorted: %s before %s", states[i-1].Index, states[i].Index)
		}
	}

	state, err := f.orchestrator.GetRotationState(context.Background(), "article")
	if err != nil {
		t.Fatalf("GetRotationState failed: %v", err)
	}
	if state.Delta {
		t.Error("expected article to be a primary index")
	}
}
