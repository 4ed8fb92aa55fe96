package models

import "time"

// Transaction is one ledger entry. Every entry carries its own UUID.
// Tithe linkage pairs an income entry with its derived expense entry
// through a shared TitheUUID distinct from both entries' own UUIDs; the
// derived entry has IsTithe true and a back-reference to the origin.
// Installments of one plan share an InstallmentGroupUUID.
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      uint             `gorm:"index;not null" json:"user_id"`
	AccountID   uint             `gorm:"index;not null" json:"account_id"`
	CategoryID  *uint            `gorm:"index" json:"category_id"`
	Description string           `gorm:"size:200;not null" json:"description"`
	Amount      float64          `gorm:"not null" json:"amount"`
	Type        TransactionType  `gorm:"size:16;not null" json:"type"`
	Date        time.Time        `gorm:"not null" json:"date"`
	DueDate     *time.Time       `json:"due_date"`
	SettledAt   *time.Time       `json:"settled_at"`
	Status      SettlementStatus `gorm:"size:16;not null;default:scheduled" json:"status"`
	Fixed       bool             `gorm:"default:false" json:"fixed"`
	Recurring   bool             `gorm:"default:false" json:"recurring"`
	Confirmed   bool             `gorm:"default:true" json:"confirmed"`

	UUID string `gorm:"size:36;not null;uniqueIndex" json:"uuid"`

	// Tithe linkage
	HasTithe      bool    `gorm:"default:false" json:"has_tithe"`
	TithePercent  float64 `gorm:"default:10" json:"tithe_percent"`
	TitheUUID     *string `gorm:"size:36;index" json:"tithe_uuid"`
	IsTithe       bool    `gorm:"default:false" json:"is_tithe"`
	TitheSourceID *uint   `json:"tithe_source_id"`

	// Installment plan
	Installment          bool    `gorm:"default:false" json:"installment"`
	InstallmentNo        *int    `json:"installment_no"`
	InstallmentTotal     *int    `json:"installment_total"`
	InstallmentGroupUUID *string `gorm:"size:36;index" json:"installment_group_uuid"`

	// Loan
	IsLoan     bool   `gorm:"default:false" json:"is_loan"`
	LoanPerson string `gorm:"size:100" json:"loan_person"`

	Notes    string  `json:"notes"`
	Tags     string  `gorm:"size:500" json:"tags"`
	Penalty  float64 `gorm:"not null;default:0" json:"penalty"`
	Interest float64 `gorm:"not null;default:0" json:"interest"`
	Discount float64 `gorm:"not null;default:0" json:"discount"`

	GoalID *uint `gorm:"index" json:"goal_id"`
}
