package models

import "time"

// Account holds a running balance owned by a user. Credit-card accounts do
// not carry a manual balance (it is frozen at zero); instead they own the
// statement closing day, payment due day and credit limit. Non-card
// accounts never carry those three fields.
type Account struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"-"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Type        AccountType `gorm:"size:32;not null" json:"type"`
	Balance     float64     `gorm:"not null;default:0" json:"balance"`
	ClosingDay  *int        `json:"closing_day,omitempty"`
	DueDay      *int        `json:"due_day,omitempty"`
	CreditLimit *float64    `json:"credit_limit,omitempty"`
	Color       string      `gorm:"size:7;default:'#3B82F6'" json:"color"`
	Active      bool        `gorm:"default:true" json:"active"`
}
