package models

import (
	"time"

	"gorm.io/gorm"
)

type Bill struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	BillNo              int            `json:"bill_no" gorm:"uniqueIndex;not null"`
	BillNoStr           string         `json:"bill_no_str" gorm:"-"`
	CustomerID          uint           `json:"customer_id" gorm:"index;not null"`
	CustomerName        string         `json:"customer_name" gorm:"not null"`
	CustomerPhone       string         `json:"customer_phone"`
	CustomerAddress     string         `json:"customer_address"`
	Items               []BillItem     `json:"items" gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	Subtotal            float64        `json:"subtotal"`
	Discount            float64        `json:"discount"`
	Total               float64        `json:"total"`
	Advance             float64        `json:"advance"`
	Balance             float64        `json:"balance"`
	DueDate             string         `json:"due_date" gorm:"type:varchar(10)"` // YYYY-MM-DD
	SpecialInstructions string         `json:"special_instructions"`
	DesignImages        StringList     `json:"design_images" gorm:"type:text"`
	Drawings            StringList     `json:"drawings" gorm:"type:text"`
	Signature           string         `json:"signature" gorm:"type:text"`
	Status              string         `json:"status" gorm:"default:'pending'"` // pending, paid, cancelled
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`
}

type BillItem struct {
	ID           uint    `json:"-" gorm:"primaryKey"`
	BillID       uint    `json:"-" gorm:"index;not null"`
	Type         string  `json:"type" gorm:"not null"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity" gorm:"not null;default:1"`
	Price        float64 `json:"price"`
	Measurements JSONMap `json:"measurements" gorm:"type:text"`
	Total        float64 `json:"total"`
}

type BillStatus string

const (
	BillPending   BillStatus = "pending"
	BillPaid      BillStatus = "paid"
	BillCancelled BillStatus = "cancelled"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillPending, BillPaid, BillCancelled:
		return true
	}
	return false
}
