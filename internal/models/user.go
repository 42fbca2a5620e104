package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Role         string         `json:"role" gorm:"default:'billing'"` // admin, tailor, billing
	TailorID     *uint          `json:"tailor_id,omitempty"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTailor  UserRole = "tailor"
	RoleBilling UserRole = "billing"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTailor, RoleBilling:
		return true
	}
	return false
}
