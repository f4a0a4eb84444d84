package domain

import "time"

// RotationStatus represents the current state of an index rotation
type RotationStatus string

const (
	RotationStatusIdle      RotationStatus = "idle"
	RotationStatusRunning   RotationStatus = "running"
	RotationStatusCompleted RotationStatus = "completed"
	RotationStatusFailed    RotationStatus = "failed"
)

// RotationState tracks rebuild bookkeeping for one index. Completed means
// the daemon accepted the rebuild trigger; build completion itself belongs
// to the daemon.
type RotationState struct {
	Index       string         `json:"index"`
	Delta       bool           `json:"delta"`
	Status      RotationStatus `json:"status"`
	Runs        int64          `json:"runs"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// RotationResult represents the outcome of one rotation trigger
type RotationResult struct {
	Indexes  []string `json:"indexes"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Duration float64  `json:"duration_seconds"`
}
