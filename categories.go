package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/max-ramos-rod/financas-project/models"
	"github.com/max-ramos-rod/financas-project/pkg/ledger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type categoryCreateRequest struct {
	Name  string                 `json:"name" binding:"required,max=100"`
	Icon  string                 `json:"icon" binding:"omitempty,max=10"`
	Color string                 `json:"color" binding:"omitempty,len=7"`
	Type  models.TransactionType `json:"type" binding:"required,oneof=income expense transfer"`
}

type categoryUpdateRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Icon  *string `json:"icon" binding:"omitempty,max=10"`
	Color *string `json:"color" binding:"omitempty,len=7"`
}

// getCategory returns a category visible to the user: one they own or a
// system default.
func getCategory(tx *gorm.DB, id, userID uint) (*models.Category, error) {
	var category models.Category
	err := tx.Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("category not found")
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// duplicateCategoryName reports whether the user already owns a category
// of the same type under this name, folding case and diacritics. Seeded
// defaults are not considered: a user category may shadow a default.
func duplicateCategoryName(tx *gorm.DB, userID uint, name string, ctype models.TransactionType, excludeID uint) (bool, error) {
	var candidates []models.Category
	err := tx.Where("type = ? AND user_id = ?", ctype, userID).Find(&candidates).Error
	if err != nil {
		return false, err
	}
	folded := ledger.FoldName(name)
	for i := range candidates {
		if candidates[i].ID == excludeID {
			continue
		}
		if ledger.FoldName(candidates[i].Name) == folded {
			return true, nil
		}
	}
	return false, nil
}

func createCategory(tx *gorm.DB, userID uint, req categoryCreateRequest) (*models.Category, error) {
	dup, err := duplicateCategoryName(tx, userID, req.Name, req.Type, 0)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, errors.New("a category with this name already exists")
	}
	category := models.Category{
		UserID: &userID,
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Type:   req.Type,
	}
	if err := tx.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func updateCategory(tx *gorm.DB, userID, id uint, req categoryUpdateRequest) (*models.Category, error) {
	category, err := getCategory(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if category.UserID == nil || category.Default {
		return nil, errors.New("default categories cannot be modified")
	}
	if req.Name != nil {
		dup, err := duplicateCategoryName(tx, userID, *req.Name, category.Type, category.ID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, errors.New("a category with this name already exists")
		}
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if err := tx.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func deleteCategory(tx *gorm.DB, userID, id uint) error {
	category, err := getCategory(tx, id, userID)
	if err != nil {
		return err
	}
	if category.UserID == nil || category.Default {
		return errors.New("default categories cannot be deleted")
	}
	var count int64
	if err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ?", userID, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("category is in use by transactions and cannot be deleted")
	}
	return tx.Delete(category).Error
}

func listCategoriesHandler(c *gin.Context) {
	ctx := access(c)
	q := db.Where("user_id = ? OR user_id IS NULL", ctx.Effective.ID)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	var categories []models.Category
	if err := q.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func getCategoryHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	category, err := getCategory(db, uint(id), ctx.Effective.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func createCategoryHandler(c *gin.Context) {
	ctx := access(c)
	var req categoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var created *models.Category
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createCategory(tx, ctx.Effective.ID, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func updateCategoryHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req categoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var updated *models.Category
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = updateCategory(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteCategoryHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteCategory(tx, ctx.Effective.ID, uint(id))
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
