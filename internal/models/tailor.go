package models

import (
	"time"

	"gorm.io/gorm"
)

type Tailor struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null"`
	Phone          string         `json:"phone" gorm:"not null"`
	Email          string         `json:"email"`
	Specialization string         `json:"specialization"`
	Experience     string         `json:"experience"`
	Status         string         `json:"status" gorm:"default:'active'"` // active, inactive, on_leave
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	TotalJobs      int     `json:"total_jobs" gorm:"-"`
	CompletedJobs  int     `json:"completed_jobs" gorm:"-"`
	PendingJobs    int     `json:"pending_jobs" gorm:"-"`
	CompletionRate float64 `json:"completion_rate" gorm:"-"`
}

type TailorStatus string

const (
	TailorActive   TailorStatus = "active"
	TailorInactive TailorStatus = "inactive"
	TailorOnLeave  TailorStatus = "on_leave"
)

func (s TailorStatus) Valid() bool {
	switch s {
	case TailorActive, TailorInactive, TailorOnLeave:
		return true
	}
	return false
}
