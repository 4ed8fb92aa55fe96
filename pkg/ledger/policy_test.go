package ledger

import (
	"testing"
	"time"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEffectiveValue(t *testing.T) {
	cases := []struct {
		name                               string
		amount, penalty, interest, discount float64
		want                               float64
	}{
		{"plain", 100, 0, 0, 0, 100},
		{"with fees", 100, 5, 2.5, 0, 107.5},
		{"with discount", 100, 0, 0, 30, 70},
		{"discount exceeds amount", 50, 0, 0, 80, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &models.Transaction{
				Amount:   tc.amount,
				Penalty:  tc.penalty,
				Interest: tc.interest,
				Discount: tc.discount,
			}
			assert.Equal(t, tc.want, EffectiveValue(entry))
		})
	}
}

func TestBalanceImpact(t *testing.T) {
	cases := []struct {
		name   string
		ttype  models.TransactionType
		status models.SettlementStatus
		want   float64
	}{
		{"settled income", models.TransactionIncome, models.StatusSettled, 100},
		{"settled expense", models.TransactionExpense, models.StatusSettled, -100},
		{"settled transfer", models.TransactionTransfer, models.StatusSettled, 0},
		{"scheduled income", models.TransactionIncome, models.StatusScheduled, 0},
		{"overdue expense", models.TransactionExpense, models.StatusOverdue, 0},
		{"cancelled expense", models.TransactionExpense, models.StatusCancelled, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &models.Transaction{Amount: 100, Type: tc.ttype, Status: tc.status}
			assert.Equal(t, tc.want, BalanceImpact(entry))
		})
	}
}

func TestGoalValueCountsUnsettledEntries(t *testing.T) {
	cases := []struct {
		name   string
		ttype  models.TransactionType
		status models.SettlementStatus
		want   float64
	}{
		{"settled income", models.TransactionIncome, models.StatusSettled, 200},
		{"scheduled income still counts", models.TransactionIncome, models.StatusScheduled, 200},
		{"overdue expense still counts", models.TransactionExpense, models.StatusOverdue, -200},
		{"cancelled income zeroes", models.TransactionIncome, models.StatusCancelled, 0},
		{"transfer never counts", models.TransactionTransfer, models.StatusSettled, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := &models.Transaction{Amount: 200, Type: tc.ttype, Status: tc.status}
			assert.Equal(t, tc.want, GoalValue(entry))
		})
	}
}

func TestNormalizeOverdue(t *testing.T) {
	today := date(2025, time.June, 15)

	pastDue := date(2025, time.June, 10)
	entry := &models.Transaction{Status: models.StatusScheduled, DueDate: &pastDue}
	NormalizeOverdue(entry, today)
	assert.Equal(t, models.StatusOverdue, entry.Status)

	dueToday := date(2025, time.June, 15)
	entry = &models.Transaction{Status: models.StatusScheduled, DueDate: &dueToday}
	NormalizeOverdue(entry, today)
	assert.Equal(t, models.StatusScheduled, entry.Status, "due today is not yet overdue")

	entry = &models.Transaction{Status: models.StatusScheduled}
	NormalizeOverdue(entry, today)
	assert.Equal(t, models.StatusScheduled, entry.Status, "no due date, nothing to flip")

	entry = &models.Transaction{Status: models.StatusSettled, DueDate: &pastDue}
	NormalizeOverdue(entry, today)
	assert.Equal(t, models.StatusSettled, entry.Status, "settled entries never regress")

	entry = &models.Transaction{Status: models.StatusCancelled, DueDate: &pastDue}
	NormalizeOverdue(entry, today)
	assert.Equal(t, models.StatusCancelled, entry.Status)
}
