package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type budgetCreateRequest struct {
	CategoryID    uint    `json:"category_id" binding:"required"`
	Month         int     `json:"month" binding:"required,gte=1,lte=12"`
	Year          int     `json:"year" binding:"required,gte=2000,lte=2100"`
	PlannedAmount float64 `json:"planned_amount" binding:"required,gt=0"`
}

type budgetUpdateRequest struct {
	PlannedAmount *float64 `json:"planned_amount" binding:"omitempty,gt=0"`
}

func getBudget(tx *gorm.DB, id, userID uint) (*models.Budget, error) {
	var budget models.Budget
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("budget not found")
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// createBudget opens a bucket for one (category, month, year). The spent
// amount starts at zero; it is filled in as transactions are posted.
func createBudget(tx *gorm.DB, userID uint, req budgetCreateRequest) (*models.Budget, error) {
	if _, err := getCategory(tx, req.CategoryID, userID); err != nil {
		return nil, err
	}
	var existing models.Budget
	err := tx.Where(
		"user_id = ? AND category_id = ? AND month = ? AND year = ?",
		userID, req.CategoryID, req.Month, req.Year,
	).First(&existing).Error
	if err == nil {
		return nil, errors.New("a budget for this category and period already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	budget := models.Budget{
		UserID:        userID,
		CategoryID:    req.CategoryID,
		Month:         req.Month,
		Year:          req.Year,
		PlannedAmount: req.PlannedAmount,
	}
	if err := tx.Create(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func updateBudget(tx *gorm.DB, userID, id uint, req budgetUpdateRequest) (*models.Budget, error) {
	budget, err := getBudget(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.PlannedAmount != nil {
		budget.PlannedAmount = *req.PlannedAmount
	}
	if err := tx.Save(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

func deleteBudget(tx *gorm.DB, userID, id uint) error {
	budget, err := getBudget(tx, id, userID)
	if err != nil {
		return err
	}
	return tx.Delete(budget).Error
}

func listBudgetsHandler(c *gin.Context) {
	ctx := access(c)
	q := db.Where("user_id = ?", ctx.Effective.ID)
	if month, err := strconv.Atoi(c.Query("month")); err == nil {
		q = q.Where("month = ?", month)
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		q = q.Where("year = ?", year)
	}
	var budgets []models.Budget
	if err := q.Order("year, month, category_id").Find(&budgets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, budgets)
}

func getBudgetHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	budget, err := getBudget(db, uint(id), ctx.Effective.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

func createBudgetHandler(c *gin.Context) {
	ctx := access(c)
	var req budgetCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var created *models.Budget
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createBudget(tx, ctx.Effective.ID, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func updateBudgetHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req budgetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var updated *models.Budget
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = updateBudget(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteBudgetHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteBudget(tx, ctx.Effective.ID, uint(id))
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
