package models

import "time"

// Delegation grants one user access to another user's data. The delegate
// reference stays nil until the invite is accepted by a registered user.
type Delegation struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"-"`
	OwnerUserID     uint             `gorm:"not null;uniqueIndex:idx_owner_delegate" json:"owner_user_id"`
	DelegateUserID  *uint            `gorm:"uniqueIndex:idx_owner_delegate" json:"delegate_user_id"`
	InvitedEmail    string           `gorm:"size:255;not null;index" json:"invited_email"`
	InviteToken     *string          `gorm:"size:128;uniqueIndex" json:"-"`
	InviteExpiresAt *time.Time       `json:"invite_expires_at"`
	Status          DelegationStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CanWrite        bool             `gorm:"not null;default:true" json:"can_write"`
	AcceptedAt      *time.Time       `json:"accepted_at"`
	RevokedAt       *time.Time       `json:"revoked_at"`

	Owner    *User `gorm:"foreignKey:OwnerUserID" json:"owner,omitempty"`
	Delegate *User `gorm:"foreignKey:DelegateUserID" json:"delegate,omitempty"`
}
