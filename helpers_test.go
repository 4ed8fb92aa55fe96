package main

import (
	"fmt"
	"testing"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

// setupTestDB points the package globals at a fresh in-memory database
// with migrations and category seeding applied.
func setupTestDB(t *testing.T) {
	t.Helper()
	logger = zap.NewNop().Sugar()
	cfg = Config{JWTSecret: "test-secret", FrontendURL: "http://localhost:5173"}
	jwtSecret = []byte(cfg.JWTSecret)

	testDBSeq++
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	db = gdb
	require.NoError(t, migrateAndSeed(db))
}

func createTestUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := registerUser(email, "Test User", "secret123")
	require.NoError(t, err)
	return user
}

func createTestAccount(t *testing.T, userID uint, name string, atype models.AccountType, balance float64) *models.Account {
	t.Helper()
	account := &models.Account{UserID: userID, Name: name, Type: atype, Balance: balance, Active: true}
	require.NoError(t, db.Create(account).Error)
	return account
}

func createTestCard(t *testing.T, userID uint, name string, closingDay, dueDay int) *models.Account {
	t.Helper()
	account := &models.Account{
		UserID:     userID,
		Name:       name,
		Type:       models.AccountCreditCard,
		ClosingDay: &closingDay,
		DueDay:     &dueDay,
		Active:     true,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func defaultCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	var c models.Category
	require.NoError(t, db.Where("user_id IS NULL AND name = ?", name).First(&c).Error)
	return &c
}

func reloadAccount(t *testing.T, id uint) *models.Account {
	t.Helper()
	var account models.Account
	require.NoError(t, db.First(&account, id).Error)
	return &account
}
