package models

import (
	"time"

	"gorm.io/gorm"

	"tailor_shop/pkg/workflow"
)

type Job struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	Title              string          `json:"title" gorm:"not null"`
	Description        string          `json:"description"`
	// only one live job per bill; soft-deleted jobs drop out of the index
	BillID             *uint           `json:"bill_id" gorm:"uniqueIndex:idx_jobs_live_bill_id,where:deleted_at IS NULL"`
	Bill               *Bill           `json:"bill,omitempty" gorm:"foreignKey:BillID"`
	TailorID           *uint           `json:"tailor_id" gorm:"index"`
	TailorName         string          `json:"tailor_name"`
	TailorPhone        string          `json:"tailor_phone"`
	CustomerName       string          `json:"customer_name"`
	CustomerPhone      string          `json:"customer_phone"`
	Items              JobItems        `json:"items" gorm:"type:text"`
	Instructions       string          `json:"instructions"`
	Priority           string          `json:"priority" gorm:"default:'medium'"` // low, medium, high, urgent
	Status             string          `json:"status" gorm:"default:'assigned'"` // assigned, in_progress, completed, delivered
	CurrentStage       workflow.Stage  `json:"current_stage" gorm:"type:varchar(20);default:'cutting'"`
	ProgressPercentage float64         `json:"progress_percentage"`
	WorkflowStages     []WorkflowStage `json:"workflow_stages" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	AssignedDate       time.Time       `json:"assigned_date"`
	DueDate            string          `json:"due_date" gorm:"type:varchar(10)"`
	CompletedDate      *time.Time      `json:"completed_date"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `json:"-" gorm:"index"`
}

// WorkflowStage persists one stage entry of a job.
type WorkflowStage struct {
	ID    uint `json:"-" gorm:"primaryKey"`
	JobID uint `json:"-" gorm:"index;not null"`
	workflow.StageEntry
}

type JobStatus string

const (
	JobAssigned   JobStatus = "assigned"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobDelivered  JobStatus = "delivered"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobAssigned, JobInProgress, JobCompleted, JobDelivered:
		return true
	}
	return false
}

type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityMedium JobPriority = "medium"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// Entries returns the stage entries in production order.
func (j *Job) Entries() []workflow.StageEntry {
	out := make([]workflow.StageEntry, 0, len(j.WorkflowStages))
	for _, st := range workflow.Stages {
		for _, ws := range j.WorkflowStages {
			if ws.Name == st {
				out = append(out, ws.StageEntry)
			}
		}
	}
	return out
}

// SetEntries writes entries back, keeping row ids of existing stages.
func (j *Job) SetEntries(entries []workflow.StageEntry) {
	rows := make([]WorkflowStage, 0, len(entries))
	for _, e := range entries {
		row := WorkflowStage{JobID: j.ID, StageEntry: e}
		for _, old := range j.WorkflowStages {
			if old.Name == e.Name {
				row.ID = old.ID
			}
		}
		rows = append(rows, row)
	}
	j.WorkflowStages = rows
}
