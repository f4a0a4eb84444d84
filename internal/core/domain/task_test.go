package domain

import (
	"testing"
	"time"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()

	if id1 == "" {
		t.Error("expected non-empty ID")
	}
	if id2 == "" {
		t.Error("expected non-empty ID")
	}
	if id1 == id2 {
		t.Error("expected unique IDs")
	}
	// Base64 URL encoding of 16 bytes = 22 chars
	if len(id1) != 22 {
		t.Errorf("expected ID length 22, got %d", len(id1))
	}
}

func TestNewTask(t *testing.T) {
	payload := map[string]string{"key": "value"}

	task := NewTask(TaskTypeRotateDelta, payload)

	if task.ID == "" {
		t.Error("expected non-empty ID")
	}
	if task.Type != TaskTypeRotateDelta {
		t.Errorf("expected type %s, got %s", TaskTypeRotateDelta, task.Type)
	}
	if task.Payload["key"] != "value" {
		t.Error("expected payload to be set")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
	}
	if task.Priority != 0 {
		t.Errorf("expected priority 0, got %d", task.Priority)
	}
	if task.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", task.Attempts)
	}
	if task.MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", task.MaxAttempts)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if task.ScheduledFor.IsZero() {
		t.Error("expected ScheduledFor to be set")
	}
}

func TestNewRebuildTypeTask(t *testing.T) {
	task := NewRebuildTypeTask("Article")

	if task.Type != TaskTypeRebuildType {
		t.Errorf("expected type %s, got %s", TaskTypeRebuildType, task.Type)
	}
	if task.TypeName() != "Article" {
		t.Errorf("expected type name Article, got %s", task.TypeName())
	}
}

func TestNewRotateDeltaTask(t *testing.T) {
	task := NewRotateDeltaTask()

	if task.Type != TaskTypeRotateDelta {
		t.Errorf("expected type %s, got %s", TaskTypeRotateDelta, task.Type)
	}
	if task.TypeName() != "" {
		t.Errorf("expected empty type name, got %s", task.TypeName())
	}
}

func TestTask_TypeName(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]string
		expected string
	}{
		{
			name:     "with type",
			payload:  map[string]string{"type": "Article"},
			expected: "Article",
		},
		{
			name:     "without type",
			payload:  map[string]string{"other": "value"},
			expected: "",
		},
		{
			name:     "nil payload",
			payload:  nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Payload: tt.payload}
			if got := task.TypeName(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTask_CanRetry(t *testing.T) {
	tests := []struct {
		name        string
		attempts    int
		maxAttempts int
		expected    bool
	}{
		{"no attempts yet", 0, 3, true},
		{"one attempt", 1, 3, true},
		{"two attempts", 2, 3, true},
		{"max attempts reached", 3, 3, false},
		{"over max attempts", 4, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Attempts: tt.attempts, MaxAttempts: tt.maxAttempts}
			if got := task.CanRetry(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTask_IsReady(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name         string
		status       TaskStatus
		scheduledFor time.Time
		expected     bool
	}{
		{"pending and past scheduled", TaskStatusPending, past, true},
		{"pending and future scheduled", TaskStatusPending, future, false},
		{"processing", TaskStatusProcessing, past, false},
		{"completed", TaskStatusCompleted, past, false},
		{"failed", TaskStatusFailed, past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.status, ScheduledFor: tt.scheduledFor}
			if got := task.IsReady(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTask_MarkProcessing(t *testing.T) {
	task := NewRebuildFullTask()

	task.MarkProcessing()

	if task.Status != TaskStatusProcessing {
		t.Errorf("expected status %s, got %s", TaskStatusProcessing, task.Status)
	}
	if task.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}
	if task.Attempts != 1 {
		t.Errorf("expected attempts 1, got %d", task.Attempts)
	}
}

func TestTask_MarkCompleted(t *testing.T) {
	task := NewRebuildFullTask()
	task.Error = "some error"

	task.MarkCompleted()

	if task.Status != TaskStatusCompleted {
		t.Errorf("expected status %s, got %s", TaskStatusCompleted, task.Status)
	}
	if task.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if task.Error != "" {
		t.Error("expected Error to be cleared")
	}
}

func TestTask_MarkFailed(t *testing.T) {
	task := NewRebuildFullTask()
	errorMsg := "something went wrong"

	task.MarkFailed(errorMsg)

	if task.Status != TaskStatusFailed {
		t.Errorf("expected status %s, got %s", TaskStatusFailed, task.Status)
	}
	if task.Error != errorMsg {
		t.Errorf("expected error %s, got %s", errorMsg, task.Error)
	}
}

func TestTask_Retry_ExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempts        int
		expectedBackoff time.Duration
	}{
		{0, 1 * time.Second},  // 2^0 = 1
		{1, 2 * time.Second},  // 2^1 = 2
		{2, 4 * time.Second},  // 2^2 = 4
		{3, 8 * time.Second},  // 2^3 = 8
		{10, 5 * time.Minute}, // Capped at 5 minutes
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			task := NewRotateDeltaTask()
			task.Attempts = tt.attempts
			before := time.Now()

			task.Retry("error")

			if task.Status != TaskStatusPending {
				t.Errorf("expected status %s, got %s", TaskStatusPending, task.Status)
			}

			expectedMin := before.Add(tt.expectedBackoff)
			expectedMax := before.Add(tt.expectedBackoff + time.Second)

			if task.ScheduledFor.Before(expectedMin) || task.ScheduledFor.After(expectedMax) {
				t.Errorf("attempts=%d: expected ScheduledFor between %v and %v, got %v",
					tt.attempts, expectedMin, expectedMax, task.ScheduledFor)
			}
		})
	}
}

func TestScheduledTask_IsDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		enabled  bool
		nextRun  time.Time
		expected bool
	}{
		{"enabled and past", true, past, true},
		{"enabled and future", true, future, false},
		{"disabled and past", false, past, false},
		{"disabled and future", false, future, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduled := &ScheduledTask{Enabled: tt.enabled, NextRun: tt.nextRun}
			if got := scheduled.IsDue(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScheduledTask_UpdateNextRun(t *testing.T) {
	interval := 30 * time.Minute
	scheduled := &ScheduledTask{
		Interval: interval,
	}

	before := time.Now()
	scheduled.UpdateNextRun()
	after := time.Now()

	if scheduled.LastRun == nil {
		t.Error("expected LastRun to be set")
	}
	if scheduled.LastRun.Before(before) || scheduled.LastRun.After(after) {
		t.Error("expected LastRun to be around now")
	}

	expectedNextRun := scheduled.LastRun.Add(interval)
	if scheduled.NextRun != expectedNextRun {
		t.Errorf("expected NextRun %v, got %v", expectedNextRun, scheduled.NextRun)
	}
}

func TestDefaultSchedule(t *testing.T) {
	schedule := DefaultSchedule()

	if len(schedule) != 2 {
		t.Fatalf("expected 2 default schedules, got %d", len(schedule))
	}

	byID := make(map[string]*ScheduledTask)
	for _, s := range schedule {
		byID[s.ID] = s
	}

	delta, ok := byID["delta-rotation"]
	if !ok {
		t.Fatal("expected delta-rotation schedule")
	}
	if delta.Type != TaskTypeRotateDelta {
		t.Errorf("expected type %s, got %s", TaskTypeRotateDelta, delta.Type)
	}
	if delta.Interval != 15*time.Minute {
		t.Errorf("expected interval 15m, got %v", delta.Interval)
	}

	full, ok := byID["full-rebuild"]
	if !ok {
		t.Fatal("expected full-rebuild schedule")
	}
	if full.Type != TaskTypeRebuildFull {
		t.Errorf("expected type %s, got %s", TaskTypeRebuildFull, full.Type)
	}
	if full.Interval != 24*time.Hour {
		t.Errorf("expected interval 24h, got %v", full.Interval)
	}
}
