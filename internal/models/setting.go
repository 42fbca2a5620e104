package models

import "time"

// Setting is a named JSON document, e.g. "upi" or "business".
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedBy uint      `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	SettingUPI      = "upi"
	SettingBusiness = "business"
)

type UPISettings struct {
	UPIID        string `json:"upi_id"`
	BusinessName string `json:"business_name"`
}

type BusinessSettings struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

func DefaultUPI() UPISettings {
	return UPISettings{UPIID: "startailors@upi", BusinessName: "STAR TAILORS"}
}

func DefaultBusiness() BusinessSettings {
	return BusinessSettings{BusinessName: "STAR TAILORS"}
}
