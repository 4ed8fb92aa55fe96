package main

import (
	"errors"
	"time"

	"github.com/max-ramos-rod/financas-project/models"
	"github.com/max-ramos-rod/financas-project/pkg/ledger"

	"gorm.io/gorm"
)

// budgetKey identifies one budget bucket touched by a change. An edit can
// touch two buckets (old and new) when the category or date moves.
type budgetKey struct {
	categoryID uint
	month      int
	year       int
}

func bucketOf(t *models.Transaction) (budgetKey, bool) {
	if t.CategoryID == nil || t.Type != models.TransactionExpense {
		return budgetKey{}, false
	}
	return budgetKey{
		categoryID: *t.CategoryID,
		month:      int(t.Date.Month()),
		year:       t.Date.Year(),
	}, true
}

// recalcGoal fully recomputes a goal's accumulated value and completion
// flag from every linked transaction. Idempotent; a missing goal is a
// no-op (the entry may reference a goal deleted meanwhile).
func recalcGoal(tx *gorm.DB, userID, goalID uint) error {
	var goal models.Goal
	err := tx.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []models.Transaction
	if err := tx.Where("user_id = ? AND goal_id = ?", userID, goalID).Find(&entries).Error; err != nil {
		return err
	}
	var sum float64
	for i := range entries {
		sum += ledger.GoalValue(&entries[i])
	}
	goal.CurrentAmount = sum
	goal.Completed = sum >= goal.TargetAmount
	return tx.Save(&goal).Error
}

// recalcBudget fully recomputes the consumed amount of the budget for one
// (category, month, year) bucket: the sum of effective values of expense,
// non-cancelled transactions in that calendar month. A bucket without a
// budget row is a no-op (budgets are opt-in).
func recalcBudget(tx *gorm.DB, userID uint, key budgetKey) error {
	var budget models.Budget
	err := tx.Where(
		"user_id = ? AND category_id = ? AND month = ? AND year = ?",
		userID, key.categoryID, key.month, key.year,
	).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	start := time.Date(key.year, time.Month(key.month), 1, 0, 0, 0, 0, time.UTC)
	end := ledger.ClampDay(key.year, time.Month(key.month), 31)

	var entries []models.Transaction
	err = tx.Where(
		"user_id = ? AND category_id = ? AND type = ? AND date >= ? AND date <= ? AND status <> ?",
		userID, key.categoryID, models.TransactionExpense, start, end, models.StatusCancelled,
	).Find(&entries).Error
	if err != nil {
		return err
	}
	var spent float64
	for i := range entries {
		spent += ledger.EffectiveValue(&entries[i])
	}
	budget.SpentAmount = spent
	return tx.Save(&budget).Error
}

// recalcAggregates runs goal and budget recomputation for every distinct
// goal id and budget bucket collected during an operation.
func recalcAggregates(tx *gorm.DB, userID uint, goals map[uint]struct{}, buckets map[budgetKey]struct{}) error {
	for goalID := range goals {
		if err := recalcGoal(tx, userID, goalID); err != nil {
			return err
		}
	}
	for key := range buckets {
		if err := recalcBudget(tx, userID, key); err != nil {
			return err
		}
	}
	return nil
}
