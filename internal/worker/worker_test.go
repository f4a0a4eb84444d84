package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/sphinxsync/internal/core/domain"
	"github.com/custodia-labs/sphinxsync/internal/core/ports/driven"
)

// mockTaskQueue implements driven.TaskQueue for testing
type mockTaskQueue struct {
	mu           sync.Mutex
	tasks        []*domain.Task
	dequeueDelay time.Duration
	enqueueFn    func(*domain.Task) error
	dequeueFn    func() (*domain.Task, error)
	ackFn        func(string) error
	nackFn       func(string, string) error
	pingFn       func() error
}

func newMockTaskQueue() *mockTaskQueue {
	return &mockTaskQueue{
		tasks: make([]*domain.Task, 0),
	}
}

func (m *mockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	if m.enqueueFn != nil {
		return m.enqueueFn(task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockTaskQueue) EnqueueBatch(ctx context.Context, tasks []*domain.Task) error {
	for _, t := range tasks {
		if err := m.Enqueue(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	if m.dequeueFn != nil {
		return m.dequeueFn()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return nil, nil
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, nil
}

func (m *mockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	if m.dequeueDelay > 0 {
		select {
		case <-time.After(m.dequeueDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Dequeue(ctx)
}

func (m *mockTaskQueue) Ack(ctx context.Context, taskID string) error {
	if m.ackFn != nil {
		return m.ackFn(taskID)
	}
	return nil
}

func (m *mockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	if m.nackFn != nil {
		return m.nackFn(taskID, reason)
	}
	return nil
}

func (m *mockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTaskQueue) ListTasks(ctx context.Context, filter driven.TaskFilter) ([]*domain.Task, error) {
	return m.tasks, nil
}

func (m *mockTaskQueue) CancelTask(ctx context.Context, taskID string) error {
	return nil
}

func (m *mockTaskQueue) PurgeTasks(ctx context.Context, olderThan int) (int, error) {
	return 0, nil
}

func (m *mockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	return &driven.QueueStats{
		PendingCount: int64(len(m.tasks)),
	}, nil
}

func (m *mockTaskQueue) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn()
	}
	return nil
}

func (m *mockTaskQueue) Close() error {
	return nil
}

// mockOrchestrator implements Orchestrator for testing
type mockOrchestrator struct {
	rotateDeltasFn func(ctx context.Context) (*domain.RotationResult, error)
	rebuildAllFn   func(ctx context.Context) (*domain.RotationResult, error)
	rebuildTypeFn  func(ctx context.Context, typeName string) (*domain.RotationResult, error)
}

func (m *mockOrchestrator) RotateDeltas(ctx context.Context) (*domain.RotationResult, error) {
	if m.rotateDeltasFn != nil {
		return m.rotateDeltasFn(ctx)
	}
	return &domain.RotationResult{Success: true}, nil
}

func (m *mockOrchestrator) RebuildAll(ctx context.Context) (*domain.RotationResult, error) {
	if m.rebuildAllFn != nil {
		return m.rebuildAllFn(ctx)
	}
	return &domain.RotationResult{Success: true}, nil
}

func (m *mockOrchestrator) RebuildType(ctx context.Context, typeName string) (*domain.RotationResult, error) {
	if m.rebuildTypeFn != nil {
		return m.rebuildTypeFn(ctx, typeName)
	}
	return &domain.RotationResult{Success: true}, nil
}

func TestNewWorker(t *testing.T) {
	queue := newMockTaskQueue()
	logger := slog.Default()

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Logger:         logger,
		Concurrency:    2,
		DequeueTimeout: 5,
	})

	if w == nil {
		t.Fatal("expected non-nil worker")
	}
	if w.concurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected dequeue timeout 5, got %d", w.dequeueTimeout)
	}
}

func TestNewWorker_Defaults(t *testing.T) {
	queue := newMockTaskQueue()

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Concurrency:    0, // Should default to 1
		DequeueTimeout: 0, // Should default to 5
	})

	if w.concurrency != 1 {
		t.Errorf("expected default concurrency 1, got %d", w.concurrency)
	}
	if w.dequeueTimeout != 5 {
		t.Errorf("expected default dequeue timeout 5, got %d", w.dequeueTimeout)
	}
	if w.logger == nil {
		t.Error("expected default logger")
	}
}

func TestWorker_StartStop(t *testing.T) {
	queue := newMockTaskQueue()
	// Add delay so workers don't spin too fast
	queue.dequeueDelay = 100 * time.Millisecond

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := w.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Verify worker is running
	health := w.Health(ctx)
	if !health.Running {
		t.Error("expected worker to be running")
	}

	// Start again should be no-op
	err = w.Start(ctx)
	if err != nil {
		t.Errorf("second start should not error: %v", err)
	}

	// Stop the worker
	w.Stop()

	// Verify worker is stopped
	health = w.Health(ctx)
	if health.Running {
		t.Error("expected worker to be stopped")
	}

	// Stop again should be no-op
	w.Stop() // Should not panic
}

func TestWorker_Health(t *testing.T) {
	queue := newMockTaskQueue()

	w := NewWorker(WorkerConfig{
		TaskQueue:   queue,
		Concurrency: 1,
	})

	ctx := context.Background()

	// Not running initially
	health := w.Health(ctx)
	if health.Running {
		t.Error("expected not running")
	}
	if !health.QueueHealth {
		t.Error("expected queue to be healthy")
	}
}

func TestWorker_Health_QueueError(t *testing.T) {
	queue := newMockTaskQueue()
	queue.pingFn = func() error {
		return errors.New("connection failed")
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:   queue,
		Concurrency: 1,
	})

	ctx := context.Background()

	health := w.Health(ctx)
	if health.QueueHealth {
		t.Error("expected queue to be unhealthy")
	}
	if health.Error != "connection failed" {
		t.Errorf("expected error message, got %q", health.Error)
	}
}

func TestWorker_ProcessTask_UnknownType(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	// Create task with unknown type
	task := &domain.Task{
		ID:   "task-123",
		Type: domain.TaskType("unknown_type"),
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:   queue,
		Concurrency: 1,
	})

	ctx := context.Background()

	// Process the task directly
	w.processTask(ctx, task, slog.Default())

	// Should be nacked due to unknown type
	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for unknown type, got %d", len(nacked))
	}
}

func TestWorker_ProcessTask_MissingTypeName(t *testing.T) {
	queue := newMockTaskQueue()

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	// Create rebuild_type task without a type in the payload
	task := &domain.Task{
		ID:      "task-123",
		Type:    domain.TaskTypeRebuildType,
		Payload: nil, // No type
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: &mockOrchestrator{},
		Concurrency:  1,
	})

	ctx := context.Background()

	// Process the task - should fail due to missing type
	w.processTask(ctx, task, slog.Default())

	// Should be nacked due to missing type
	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for missing type, got %d", len(nacked))
	}
}

func TestWorker_ContextCancellation(t *testing.T) {
	queue := newMockTaskQueue()
	// Slow dequeue so we can cancel
	queue.dequeueDelay = 500 * time.Millisecond

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Concurrency:    1,
		DequeueTimeout: 10,
	})

	ctx, cancel := context.WithCancel(context.Background())

	err := w.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Cancel context after short delay
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	// Wait for worker to stop
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Good, worker stopped
	case <-time.After(2 * time.Second):
		t.Error("worker did not stop after context cancellation")
		w.Stop() // Force stop
	}
}

func TestHealth_Struct(t *testing.T) {
	h := Health{
		Running:     true,
		QueueHealth: true,
		Error:       "",
	}

	if !h.Running {
		t.Error("expected running")
	}
	if !h.QueueHealth {
		t.Error("expected queue healthy")
	}

	h2 := Health{
		Running:     false,
		QueueHealth: false,
		Error:       "some error",
	}

	if h2.Running {
		t.Error("expected not running")
	}
	if h2.QueueHealth {
		t.Error("expected queue unhealthy")
	}
	if h2.Error != "some error" {
		t.Errorf("expected error 'some error', got %q", h2.Error)
	}
}

// Test that mocks implement the interfaces
func TestMockTaskQueueInterface(t *testing.T) {
	var _ driven.TaskQueue = (*mockTaskQueue)(nil)
}

func TestMockOrchestratorInterface(t *testing.T) {
	var _ Orchestrator = (*mockOrchestrator)(nil)
}

func TestWorker_HandleRotateDelta_Success(t *testing.T) {
	queue := newMockTaskQueue()

	called := false
	orch := &mockOrchestrator{
		rotateDeltasFn: func(ctx context.Context) (*domain.RotationResult, error) {
			called = true
			return &domain.RotationResult{Success: true, Indexes: []string{"content_delta"}}, nil
		},
	}

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	task := domain.NewRotateDeltaTask()

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	w.processTask(context.Background(), task, slog.Default())

	if !called {
		t.Error("expected orchestrator to be called")
	}
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestWorker_HandleRotateDelta_Error(t *testing.T) {
	queue := newMockTaskQueue()
	orch := &mockOrchestrator{
		rotateDeltasFn: func(ctx context.Context) (*domain.RotationResult, error) {
			return nil, errors.New("daemon unreachable")
		},
	}

	var nackReasons []string
	queue.nackFn = func(taskID, reason string) error {
		nackReasons = append(nackReasons, reason)
		return nil
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	w.processTask(context.Background(), domain.NewRotateDeltaTask(), slog.Default())

	if len(nackReasons) != 1 {
		t.Fatalf("expected 1 nack, got %d", len(nackReasons))
	}
	if nackReasons[0] != "daemon unreachable" {
		t.Errorf("expected failure reason in nack, got %q", nackReasons[0])
	}
}

func TestWorker_HandleRotateDelta_NotSuccessful(t *testing.T) {
	queue := newMockTaskQueue()
	orch := &mockOrchestrator{
		rotateDeltasFn: func(ctx context.Context) (*domain.RotationResult, error) {
			return &domain.RotationResult{Success: false, Error: "trigger rejected"}, nil
		},
	}

	var nacked []string
	queue.nackFn = func(taskID, reason string) error {
		nacked = append(nacked, taskID)
		return nil
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	w.processTask(context.Background(), domain.NewRotateDeltaTask(), slog.Default())

	if len(nacked) != 1 {
		t.Errorf("expected 1 nack for unsuccessful rotation, got %d", len(nacked))
	}
}

func TestWorker_HandleRebuildFull_Success(t *testing.T) {
	queue := newMockTaskQueue()

	called := false
	orch := &mockOrchestrator{
		rebuildAllFn: func(ctx context.Context) (*domain.RotationResult, error) {
			called = true
			return &domain.RotationResult{Success: true}, nil
		},
	}

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	w.processTask(context.Background(), domain.NewRebuildFullTask(), slog.Default())

	if !called {
		t.Error("expected orchestrator to be called")
	}
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestWorker_HandleRebuildType_Success(t *testing.T) {
	queue := newMockTaskQueue()

	var gotType string
	orch := &mockOrchestrator{
		rebuildTypeFn: func(ctx context.Context, typeName string) (*domain.RotationResult, error) {
			gotType = typeName
			return &domain.RotationResult{Success: true}, nil
		},
	}

	var acked []string
	queue.ackFn = func(taskID string) error {
		acked = append(acked, taskID)
		return nil
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	w.processTask(context.Background(), domain.NewRebuildTypeTask("Article"), slog.Default())

	if gotType != "Article" {
		t.Errorf("expected type Article passed through, got %q", gotType)
	}
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestWorker_ProcessLoop_WithTasks(t *testing.T) {
	queue := newMockTaskQueue()
	orch := &mockOrchestrator{
		rotateDeltasFn: func(ctx context.Context) (*domain.RotationResult, error) {
			return &domain.RotationResult{Success: true}, nil
		},
	}

	// Queue up a task
	_ = queue.Enqueue(context.Background(), domain.NewRotateDeltaTask())

	var mu sync.Mutex
	var acked []string
	queue.ackFn = func(taskID string) error {
		mu.Lock()
		defer mu.Unlock()
		acked = append(acked, taskID)
		return nil
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Orchestrator:   orch,
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	ctx, cancel := context.WithCancel(context.Background())

	err := w.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Wait for task to be processed
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(acked)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(acked) != 1 {
		t.Errorf("expected 1 ack, got %d", len(acked))
	}
}

func TestWorker_ProcessLoop_DequeueError(t *testing.T) {
	queue := newMockTaskQueue()
	var mu sync.Mutex
	callCount := 0
	queue.dequeueFn = func() (*domain.Task, error) {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		if callCount < 3 {
			return nil, errors.New("temporary error")
		}
		return nil, nil // No more errors
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:      queue,
		Concurrency:    1,
		DequeueTimeout: 1,
	})

	// Use a longer timeout since there's a 1s backoff after errors
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := w.Start(ctx)
	if err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}

	// Wait for worker to process and handle errors (need time for backoff)
	time.Sleep(2 * time.Second)
	w.Stop()

	// Should have retried after errors
	mu.Lock()
	defer mu.Unlock()
	if callCount < 2 {
		t.Errorf("expected at least 2 dequeue attempts, got %d", callCount)
	}
}

func TestWorker_Ack_Error(t *testing.T) {
	queue := newMockTaskQueue()
	orch := &mockOrchestrator{}

	ackCalled := false
	queue.ackFn = func(taskID string) error {
		ackCalled = true
		return errors.New("ack failed")
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	ctx := context.Background()
	// This should not panic even if ack fails
	w.processTask(ctx, domain.NewRotateDeltaTask(), slog.Default())

	if !ackCalled {
		t.Error("expected ack to be called")
	}
}

func TestWorker_Nack_Error(t *testing.T) {
	queue := newMockTaskQueue()
	orch := &mockOrchestrator{
		rotateDeltasFn: func(ctx context.Context) (*domain.RotationResult, error) {
			return nil, errors.New("rotation failed")
		},
	}

	nackCalled := false
	queue.nackFn = func(taskID, reason string) error {
		nackCalled = true
		return errors.New("nack failed")
	}

	w := NewWorker(WorkerConfig{
		TaskQueue:    queue,
		Orchestrator: orch,
		Concurrency:  1,
	})

	ctx := context.Background()
	// This should not panic even if nack fails
	w.processTask(ctx, domain.NewRotateDeltaTask(), slog.Default())

	if !nackCalled {
		t.Error("expected nack to be called")
	}
}
