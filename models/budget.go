package models

import "time"

// Budget caps spending for one category in one calendar month. SpentAmount
// is derived: the sum of effective values of expense, non-cancelled
// transactions in that category/month/year.
type Budget struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
	UserID        uint      `gorm:"index;not null;uniqueIndex:idx_budget_bucket" json:"user_id"`
	CategoryID    uint      `gorm:"not null;uniqueIndex:idx_budget_bucket" json:"category_id"`
	Month         int       `gorm:"not null;uniqueIndex:idx_budget_bucket" json:"month"`
	Year          int       `gorm:"not null;uniqueIndex:idx_budget_bucket" json:"year"`
	PlannedAmount float64   `gorm:"not null" json:"planned_amount"`
	SpentAmount   float64   `gorm:"default:0" json:"spent_amount"`
}
