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

type goalCreateRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Description  string  `json:"description" binding:"omitempty,max=500"`
	TargetAmount float64 `json:"target_amount" binding:"required,gt=0"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Color        string  `json:"color" binding:"omitempty,len=7"`
}

type goalUpdateRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string  `json:"description" binding:"omitempty,max=500"`
	TargetAmount *float64 `json:"target_amount" binding:"omitempty,gt=0"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Color        *string  `json:"color" binding:"omitempty,len=7"`
}

func getGoal(tx *gorm.DB, id, userID uint) (*models.Goal, error) {
	var goal models.Goal
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("goal not found")
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func createGoal(tx *gorm.DB, userID uint, req goalCreateRequest) (*models.Goal, error) {
	goal := models.Goal{
		UserID:       userID,
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		StartDate:    today(),
		Color:        req.Color,
	}
	if start, err := parseDate(req.StartDate); err != nil {
		return nil, err
	} else if start != nil {
		goal.StartDate = ledger.DateOnly(*start)
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	goal.EndDate = end
	if err := tx.Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// updateGoal edits the goal definition. Lowering the target can flip the
// completion flag, so it is re-derived from the accumulated value.
func updateGoal(tx *gorm.DB, userID, id uint, req goalUpdateRequest) (*models.Goal, error) {
	goal, err := getGoal(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		if start != nil {
			goal.StartDate = ledger.DateOnly(*start)
		}
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		goal.EndDate = end
	}
	if req.Color != nil {
		goal.Color = *req.Color
	}
	goal.Completed = goal.CurrentAmount >= goal.TargetAmount
	if err := tx.Save(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}

// deleteGoal removes a goal and detaches its transactions rather than
// blocking: the entries remain valid ledger history without the goal.
func deleteGoal(tx *gorm.DB, userID, id uint) error {
	goal, err := getGoal(tx, id, userID)
	if err != nil {
		return err
	}
	err = tx.Model(&models.Transaction{}).
		Where("user_id = ? AND goal_id = ?", userID, id).
		Update("goal_id", nil).Error
	if err != nil {
		return err
	}
	return tx.Delete(goal).Error
}

func listGoalsHandler(c *gin.Context) {
	ctx := access(c)
	var goals []models.Goal
	err := db.Where("user_id = ?", ctx.Effective.ID).Order("id").Find(&goals).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

func getGoalHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	goal, err := getGoal(db, uint(id), ctx.Effective.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func createGoalHandler(c *gin.Context) {
	ctx := access(c)
	var req goalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var created *models.Goal
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createGoal(tx, ctx.Effective.ID, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func updateGoalHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req goalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var updated *models.Goal
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = updateGoal(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteGoalHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteGoal(tx, ctx.Effective.ID, uint(id))
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
