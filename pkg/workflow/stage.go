package workflow

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownStage  = errors.New("unknown workflow stage")
	ErrUnknownStatus = errors.New("unknown stage status")
	ErrOutOfOrder    = errors.New("earlier stages must be completed first")
)

// Stage is a production step of a job.
type Stage string

const (
	Cutting   Stage = "cutting"
	Stitching Stage = "stitching"
	Finishing Stage = "finishing"
	Packaging Stage = "packaging"
)

// Stages lists every stage in production order.
var Stages = []Stage{Cutting, Stitching, Finishing, Packaging}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in production order, or -1.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Status is the state of a single stage entry.
type Status string

const (
	Pending    Status = "pending"
	InProgress Status = "in_progress"
	Completed  Status = "completed"
	OnHold     Status = "on_hold"
)

func (s Status) Valid() bool {
	switch s {
	case Pending, InProgress, Completed, OnHold:
		return true
	}
	return false
}

// StageEntry is one element of a job's workflow_stages list.
type StageEntry struct {
	Name                Stage      `json:"name" gorm:"type:varchar(20);not null"`
	Status              Status     `json:"status" gorm:"type:varchar(20);default:'pending'"`
	AssignedTailor      string     `json:"assigned_tailor,omitempty"`
	AssignedTailorName  string     `json:"assigned_tailor_name,omitempty"`
	AssignedTailorPhone string     `json:"assigned_tailor_phone,omitempty"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// Update carries the fields a stage transition may change. Empty strings
// leave the existing value untouched.
type Update struct {
	Status              Status `json:"status"`
	Notes               string `json:"notes,omitempty"`
	AssignedTailor      string `json:"assigned_tailor,omitempty"`
	AssignedTailorName  string `json:"assigned_tailor_name,omitempty"`
	AssignedTailorPhone string `json:"assigned_tailor_phone,omitempty"`
}

// NewStages returns the four stages of a fresh job, all pending.
func NewStages() []StageEntry {
	out := make([]StageEntry, 0, len(Stages))
	for _, s := range Stages {
		out = append(out, StageEntry{Name: s, Status: Pending})
	}
	return out
}

// Apply returns a copy of stages with the entry for name updated. No other
// entry is touched. A missing entry is created in production order.
func Apply(stages []StageEntry, name Stage, u Update, now time.Time) ([]StageEntry, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	if !u.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, u.Status)
	}

	out := make([]StageEntry, len(stages))
	copy(out, stages)

	idx := Find(out, name)
	if idx < 0 {
		out = insertOrdered(out, StageEntry{Name: name, Status: Pending})
		idx = Find(out, name)
	}

	e := out[idx]
	e.Status = u.Status
	switch u.Status {
	case InProgress:
		if e.StartedAt == nil {
			e.StartedAt = &now
		}
		e.CompletedAt = nil
	case Completed:
		if e.StartedAt == nil {
			e.StartedAt = &now
		}
		e.CompletedAt = &now
	case Pending:
		e.StartedAt = nil
		e.CompletedAt = nil
	case OnHold:
		e.CompletedAt = nil
	}
	if u.Notes != "" {
		e.Notes = u.Notes
	}
	if u.AssignedTailor != "" {
		e.AssignedTailor = u.AssignedTailor
		e.AssignedTailorName = u.AssignedTailorName
		e.AssignedTailorPhone = u.AssignedTailorPhone
	}
	e.UpdatedAt = &now
	out[idx] = e
	return out, nil
}

// Find returns the index of the entry for name, or -1.
func Find(stages []StageEntry, name Stage) int {
	for i := range stages {
		if stages[i].Name == name {
			return i
		}
	}
	return -1
}

// StatusOf reports the status of name; missing entries count as pending.
func StatusOf(stages []StageEntry, name Stage) Status {
	if i := Find(stages, name); i >= 0 {
		return stages[i].Status
	}
	return Pending
}

// CheckOrder rejects starting or completing a stage while an earlier stage
// is not yet completed.
func CheckOrder(stages []StageEntry, name Stage, status Status) error {
	if status != InProgress && status != Completed {
		return nil
	}
	for _, prev := range Stages[:max(name.Index(), 0)] {
		if StatusOf(stages, prev) != Completed {
			return fmt.Errorf("%w: %s is %s", ErrOutOfOrder, prev, StatusOf(stages, prev))
		}
	}
	return nil
}

// CurrentStage is the first stage that is not completed. A fully completed
// job stays at packaging.
func CurrentStage(stages []StageEntry) Stage {
	for _, s := range Stages {
		if StatusOf(stages, s) != Completed {
			return s
		}
	}
	return Packaging
}

// Progress is the completed share of all stages as a percentage.
func Progress(stages []StageEntry) float64 {
	done := 0
	for _, s := range Stages {
		if StatusOf(stages, s) == Completed {
			done++
		}
	}
	return float64(done) * 100 / float64(len(Stages))
}

// AllCompleted reports whether every stage is completed.
func AllCompleted(stages []StageEntry) bool {
	return Progress(stages) == 100
}

// Started reports whether any stage has left pending.
func Started(stages []StageEntry) bool {
	for _, e := range stages {
		if e.Status != Pending {
			return true
		}
	}
	return false
}

func insertOrdered(stages []StageEntry, e StageEntry) []StageEntry {
	pos := len(stages)
	for i, cur := range stages {
		if cur.Name.Index() > e.Name.Index() {
			pos = i
			break
		}
	}
	stages = append(stages, StageEntry{})
	copy(stages[pos+1:], stages[pos:])
	stages[pos] = e
	return stages
}
