package models

import "time"

// Category labels transactions. A nil UserID marks a system-wide default
// category, which is immutable and undeletable. User categories are unique
// per (user, folded name, type).
type Category struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"-"`
	UserID    *uint           `gorm:"index" json:"user_id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Icon      string          `gorm:"size:50" json:"icon"`
	Color     string          `gorm:"size:7;default:'#6B7280'" json:"color"`
	Type      TransactionType `gorm:"size:16;not null" json:"type"`
	Default   bool            `gorm:"default:false" json:"default"`
}
