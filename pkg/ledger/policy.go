// Package ledger holds the pure money and calendar policy shared by the
// transaction engine: effective values, balance impact, goal contribution,
// billing-cycle boundaries and name folding. Nothing here touches the
// database.
package ledger

import (
	"time"

	"github.com/max-ramos-rod/financas-project/models"
)

// EffectiveValue is the amount adjusted by penalty, interest and discount,
// floored at zero.
func EffectiveValue(t *models.Transaction) float64 {
	v := t.Amount + t.Penalty + t.Interest - t.Discount
	if v < 0 {
		return 0
	}
	return v
}

// BalanceImpact is the signed effective value an entry applies to its
// account: positive for income, negative for expense, zero for transfers.
// Entries that are not settled have zero impact regardless of fees.
func BalanceImpact(t *models.Transaction) float64 {
	if t.Status != models.StatusSettled {
		return 0
	}
	v := EffectiveValue(t)
	switch t.Type {
	case models.TransactionIncome:
		return v
	case models.TransactionExpense:
		return -v
	default:
		return 0
	}
}

// GoalValue is an entry's contribution to its linked goal. Unlike balance
// impact it counts scheduled and overdue entries too; only cancelled
// entries contribute zero. Transfers never contribute.
func GoalValue(t *models.Transaction) float64 {
	if t.Status == models.StatusCancelled {
		return 0
	}
	v := EffectiveValue(t)
	switch t.Type {
	case models.TransactionIncome:
		return v
	case models.TransactionExpense:
		return -v
	default:
		return 0
	}
}

// NormalizeOverdue flips a scheduled entry whose due date has passed to
// overdue, in memory only. Callers apply it on every read; the overdue
// state is never written back proactively.
func NormalizeOverdue(t *models.Transaction, today time.Time) {
	if t.Status == models.StatusScheduled && t.DueDate != nil && t.DueDate.Before(today) {
		t.Status = models.StatusOverdue
	}
}
