package main

import (
	"fmt"

	"github.com/max-ramos-rod/financas-project/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB(cfg Config) error {
	if cfg.DatabaseDSN == "" {
		return fmt.Errorf("DB_DSN is not set; this service requires a Postgres DSN")
	}
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := migrateAndSeed(db); err != nil {
			return err
		}
	}
	return nil
}

// migrateAndSeed runs AutoMigrate for every model and seeds the default
// categories. Models are migrated individually so a failure on one doesn't
// block the others.
func migrateAndSeed(gdb *gorm.DB) error {
	for _, m := range []any{
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Goal{},
		&models.Budget{},
		&models.Transaction{},
		&models.Delegation{},
	} {
		if err := gdb.AutoMigrate(m); err != nil {
			logger.Warnw("migration warning", "model", fmt.Sprintf("%T", m), "error", err)
		}
	}
	seedDefaultCategories(gdb)
	return nil
}

// Default categories available to every user. User categories may shadow
// them by name; defaults themselves are immutable and undeletable.
var defaultCategories = []models.Category{
	{Name: "Salário", Icon: "💰", Color: "#10B981", Type: models.TransactionIncome},
	{Name: "Freelance", Icon: "💼", Color: "#3B82F6", Type: models.TransactionIncome},
	{Name: "Investimentos", Icon: "📈", Color: "#8B5CF6", Type: models.TransactionIncome},
	{Name: "Presente Recebido", Icon: "🎁", Color: "#F59E0B", Type: models.TransactionIncome},
	{Name: "Outras Receitas", Icon: "➕", Color: "#6B7280", Type: models.TransactionIncome},
	{Name: "Aluguel", Icon: "🏠", Color: "#EF4444", Type: models.TransactionExpense},
	{Name: "Energia", Icon: "⚡", Color: "#F59E0B", Type: models.TransactionExpense},
	{Name: "Água", Icon: "💧", Color: "#3B82F6", Type: models.TransactionExpense},
	{Name: "Internet", Icon: "🌐", Color: "#8B5CF6", Type: models.TransactionExpense},
	{Name: "Mercado", Icon: "🛒", Color: "#10B981", Type: models.TransactionExpense},
	{Name: "Restaurante", Icon: "🍽️", Color: "#F59E0B", Type: models.TransactionExpense},
	{Name: "Combustível", Icon: "⛽", Color: "#EF4444", Type: models.TransactionExpense},
	{Name: "Transporte Público", Icon: "🚌", Color: "#3B82F6", Type: models.TransactionExpense},
	{Name: "Farmácia", Icon: "💊", Color: "#EF4444", Type: models.TransactionExpense},
	{Name: "Educação", Icon: "📚", Color: "#8B5CF6", Type: models.TransactionExpense},
	{Name: "Lazer", Icon: "🎮", Color: "#EC4899", Type: models.TransactionExpense},
	{Name: "Dízimo", Icon: "⛪", Color: "#10B981", Type: models.TransactionExpense},
	{Name: "Oferta", Icon: "🙏", Color: "#34D399", Type: models.TransactionExpense},
	{Name: "Outras Despesas", Icon: "➖", Color: "#6B7280", Type: models.TransactionExpense},
	{Name: "Transferência", Icon: "🔄", Color: "#6B7280", Type: models.TransactionTransfer},
}

func seedDefaultCategories(gdb *gorm.DB) {
	for _, c := range defaultCategories {
		var cnt int64
		gdb.Model(&models.Category{}).
			Where("user_id IS NULL AND name = ? AND type = ?", c.Name, c.Type).
			Count(&cnt)
		if cnt == 0 {
			seed := c
			seed.Default = true
			if err := gdb.Create(&seed).Error; err != nil {
				logger.Warnw("failed to seed category", "name", c.Name, "error", err)
			}
		}
	}
}
