package models

import "time"

// User is an application account holder.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
}
