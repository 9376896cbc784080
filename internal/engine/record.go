package engine

import (
	"time"

	"github.com/MauliQT/resonate/internal/model"
	"github.com/MauliQT/resonate/internal/plugin"
)

// RunState tracks a run through its state machine. Only the terminal states
// (completed, failed, cancelled) ever reach the record store.
type RunState string

const (
	StatePending          RunState = "pending"
	StateResolvingSetting RunState = "resolving_settings"
	StateRunningInputs    RunState = "running_inputs"
	StateMerging          RunState = "merging"
	StateRunningModifiers RunState = "running_modifiers"
	StateRunningOutputs   RunState = "running_outputs"
	StateCompleted        RunState = "completed"
	StateFailed           RunState = "failed"
	StateCancelled        RunState = "cancelled"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// StageStatus is the per-stage outcome recorded in a RunRecord.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageResult captures the outcome of one plugin invocation within a run.
type StageResult struct {
	Category plugin.Category `json:"category"`
	Plugin   string          `json:"plugin"`
	Status   StageStatus     `json:"status"`
	Message  string          `json:"message,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// RunRecord is the append-only log entry for one engine invocation of an
// applet. It is never mutated after the run reaches a terminal state, and
// carries enough per-stage detail to diagnose which plugin and which setting
// caused a problem without log inspection.
type RunRecord struct {
	ID        string           `json:"id"`
	AppletID  string           `json:"applet_id"`
	State     RunState         `json:"state"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   time.Time        `json:"ended_at"`
	Stages    []StageResult    `json:"stages,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
	Playlists []model.Playlist `json:"playlists,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// RecordStore persists run records. Appends are strictly additive and safe
// to perform without locking the applet definition.
type RecordStore interface {
	AppendRunRecord(rec *RunRecord) error
}
