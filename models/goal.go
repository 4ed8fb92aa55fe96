package models

import "time"

// Goal is a savings target. CurrentAmount and Completed are derived from
// the linked transactions and recomputed on every linked entry change.
type Goal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Description   string     `json:"description"`
	TargetAmount  float64    `gorm:"not null" json:"target_amount"`
	CurrentAmount float64    `gorm:"default:0" json:"current_amount"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	Color         string     `gorm:"size:7;default:'#10B981'" json:"color"`
}
