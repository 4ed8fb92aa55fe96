package main

import (
	"testing"
	"time"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardExpense(t *testing.T, userID, cardID uint, description, date string, amount float64) *models.Transaction {
	t.Helper()
	entry, err := createTransaction(db, userID, transactionCreateRequest{
		AccountID:   cardID,
		Description: description,
		Amount:      amount,
		Type:        models.TransactionExpense,
		Date:        date,
	})
	require.NoError(t, err)
	return entry
}

func TestStatementCollectsOpenItemsInPeriod(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "ana@example.com")
	card := createTestCard(t, user.ID, "Cartao Roxo", 15, 22)

	// period for ref 2025-06-10: 2025-05-16 .. 2025-06-15
	cardExpense(t, user.ID, card.ID, "Mercado", "2025-05-20", 100)
	cardExpense(t, user.ID, card.ID, "Farmacia", "2025-06-01", 50)
	cardExpense(t, user.ID, card.ID, "Fora do periodo", "2025-06-20", 999)

	ref := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	summary, err := currentStatement(db, user.ID, card.ID, ref)
	require.NoError(t, err)

	assert.Equal(t, card.ID, summary.AccountID)
	assert.Equal(t, "2025-05-16", summary.PeriodStart.Format("2006-01-02"))
	assert.Equal(t, "2025-06-15", summary.PeriodEnd.Format("2006-01-02"))
	assert.Equal(t, "2025-06-22", summary.DueDate.Format("2006-01-02"))
	require.Equal(t, 2, summary.Count)
	assert.Equal(t, float64(150), summary.Total)
	assert.Equal(t, "Mercado", summary.Items[0].Description, "items ordered by date")
	assert.Equal(t, "Farmacia", summary.Items[1].Description)
}

func TestStatementRequiresCreditCard(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "ana@example.com")
	account := createTestAccount(t, user.ID, "Conta", models.AccountChecking, 0)

	_, err := currentStatement(db, user.ID, account.ID, today())
	assert.Error(t, err)
}

func TestPayStatementSettlesItemsAndDebitsPayer(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "ana@example.com")
	card := createTestCard(t, user.ID, "Cartao Roxo", 15, 22)
	payer := createTestAccount(t, user.ID, "Conta Corrente", models.AccountChecking, 1000)

	// period for month=6/year=2025 (ref June 1st): 2025-04-16 .. 2025-05-15
	first := cardExpense(t, user.ID, card.ID, "Mercado", "2025-04-20", 100)
	second := cardExpense(t, user.ID, card.ID, "Restaurante", "2025-05-01", 50)

	summary, err := payStatement(db, user.ID, card.ID, payStatementRequest{
		AccountID:   payer.ID,
		PaymentDate: "2025-05-22",
		Month:       6,
		Year:        2025,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count, "refreshed statement has nothing open")

	assert.Equal(t, float64(850), reloadAccount(t, payer.ID).Balance)

	for _, id := range []uint{first.ID, second.ID} {
		var item models.Transaction
		require.NoError(t, db.First(&item, id).Error)
		assert.Equal(t, models.StatusSettled, item.Status)
		require.NotNil(t, item.SettledAt)
		assert.Equal(t, "2025-05-22", item.SettledAt.Format("2006-01-02"))
	}

	var payment models.Transaction
	err = db.Where("user_id = ? AND account_id = ? AND type = ?", user.ID, payer.ID, models.TransactionTransfer).
		First(&payment).Error
	require.NoError(t, err)
	assert.Equal(t, float64(150), payment.Amount)
	assert.Equal(t, models.StatusSettled, payment.Status)
	assert.Contains(t, payment.Description, "Pagamento fatura Cartao Roxo")

	// nothing left to pay
	_, err = payStatement(db, user.ID, card.ID, payStatementRequest{
		AccountID: payer.ID,
		Month:     6,
		Year:      2025,
	})
	assert.Error(t, err)
}

func TestPayStatementWithCustomDescription(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "ana@example.com")
	card := createTestCard(t, user.ID, "Cartao Roxo", 15, 22)
	payer := createTestAccount(t, user.ID, "Conta Corrente", models.AccountChecking, 500)
	cardExpense(t, user.ID, card.ID, "Mercado", "2025-04-20", 100)

	_, err := payStatement(db, user.ID, card.ID, payStatementRequest{
		AccountID:   payer.ID,
		Description: "Fatura de maio paga adiantada",
		Month:       6,
		Year:        2025,
	})
	require.NoError(t, err)

	var payment models.Transaction
	err = db.Where("user_id = ? AND account_id = ? AND type = ?", user.ID, payer.ID, models.TransactionTransfer).
		First(&payment).Error
	require.NoError(t, err)
	assert.Equal(t, "Fatura de maio paga adiantada", payment.Description)
}

func TestPayStatementRejectsBadPayer(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "ana@example.com")
	card := createTestCard(t, user.ID, "Cartao Roxo", 15, 22)
	otherCard := createTestCard(t, user.ID, "Cartao Azul", 10, 17)
	cardExpense(t, user.ID, card.ID, "Mercado", "2025-04-20", 100)

	_, err := payStatement(db, user.ID, card.ID, payStatementRequest{
		AccountID: card.ID,
		Month:     6,
		Year:      2025,
	})
	assert.Error(t, err, "a card cannot pay itself")

	_, err = payStatement(db, user.ID, card.ID, payStatementRequest{
		AccountID: otherCard.ID,
		Month:     6,
		Year:      2025,
	})
	assert.Error(t, err, "a card cannot pay another card")
}
