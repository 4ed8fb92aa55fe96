package main

import (
	"errors"
	"fmt"

	"github.com/max-ramos-rod/financas-project/models"
	"github.com/max-ramos-rod/financas-project/pkg/ledger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const titheCategoryColor = "#10B981"

// resolveTitheCategory finds the expense category used for generated tithe
// entries, in priority order: the user's own "Dizimo" category, then the
// system default one, creating a user-owned one when neither exists. Name
// matching folds case and diacritics.
func resolveTitheCategory(tx *gorm.DB, userID uint) (*models.Category, error) {
	var candidates []models.Category
	err := tx.Where("type = ? AND (user_id = ? OR user_id IS NULL)", models.TransactionExpense, userID).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		if c.UserID != nil && *c.UserID == userID && ledger.FoldName(c.Name) == "dizimo" {
			return c, nil
		}
	}
	for i := range candidates {
		c := &candidates[i]
		if c.UserID == nil && c.Default && ledger.FoldName(c.Name) == "dizimo" {
			return c, nil
		}
	}

	created := models.Category{
		UserID: &userID,
		Name:   "Dizimo",
		Icon:   "",
		Color:  titheCategoryColor,
		Type:   models.TransactionExpense,
	}
	if err := tx.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func titheAmount(origin *models.Transaction) float64 {
	return origin.Amount * (origin.TithePercent / 100)
}

func titheDescription(origin *models.Transaction) string {
	return fmt.Sprintf("Dizimo de %s", origin.Description)
}

// newTitheEntry builds the derived expense entry for an income entry that
// has tithe enabled. The origin must already be persisted (its id is the
// back-reference) and must carry the shared TitheUUID. The derived entry
// cannot itself spawn another tithe.
func newTitheEntry(tx *gorm.DB, userID uint, origin *models.Transaction) (*models.Transaction, error) {
	category, err := resolveTitheCategory(tx, userID)
	if err != nil {
		return nil, err
	}
	due := origin.Date
	if origin.DueDate != nil {
		due = *origin.DueDate
	}
	originID := origin.ID
	entry := &models.Transaction{
		UserID:        userID,
		UUID:          uuid.NewString(),
		AccountID:     origin.AccountID,
		CategoryID:    &category.ID,
		Description:   titheDescription(origin),
		Amount:        titheAmount(origin),
		Type:          models.TransactionExpense,
		Date:          origin.Date,
		DueDate:       &due,
		Status:        models.StatusScheduled,
		Fixed:         true,
		Recurring:     false,
		Confirmed:     false,
		HasTithe:      false,
		TithePercent:  origin.TithePercent,
		IsTithe:       true,
		TitheSourceID: &originID,
		TitheUUID:     origin.TitheUUID,
	}
	return entry, nil
}

// findTitheEntry locates the derived entry sharing the origin's tithe
// correlation id, if any.
func findTitheEntry(tx *gorm.DB, origin *models.Transaction) (*models.Transaction, error) {
	if origin.TitheUUID == nil {
		return nil, nil
	}
	var tithe models.Transaction
	err := tx.Where("tithe_uuid = ? AND is_tithe = ?", *origin.TitheUUID, true).First(&tithe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tithe, nil
}
