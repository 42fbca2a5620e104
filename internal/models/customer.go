package models

import (
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Phone     string         `json:"phone" gorm:"index;not null"`
	Email     string         `json:"email"`
	Address   string         `json:"address"`
	Notes     string         `json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Filled from non-cancelled bills, never stored.
	TotalOrders        int     `json:"total_orders" gorm:"-"`
	TotalSpent         float64 `json:"total_spent" gorm:"-"`
	OutstandingBalance float64 `json:"outstanding_balance" gorm:"-"`
	Bills              []Bill  `json:"bills,omitempty" gorm:"-"`
}
