package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/max-ramos-rod/financas-project/models"
	"github.com/max-ramos-rod/financas-project/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionCreateRequest struct {
	AccountID        uint                     `json:"account_id" binding:"required"`
	CategoryID       *uint                    `json:"category_id"`
	Description      string                   `json:"description" binding:"required,max=200"`
	Amount           float64                  `json:"amount" binding:"required,gt=0"`
	Type             models.TransactionType   `json:"type" binding:"required,oneof=income expense transfer"`
	Date             string                   `json:"date" binding:"required"`
	DueDate          string                   `json:"due_date"`
	SettledAt        string                   `json:"settled_at"`
	Status           models.SettlementStatus  `json:"status" binding:"omitempty,oneof=scheduled settled overdue cancelled"`
	Fixed            bool                     `json:"fixed"`
	Recurring        bool                     `json:"recurring"`
	Confirmed        *bool                    `json:"confirmed"`
	HasTithe         bool                     `json:"has_tithe"`
	TithePercent     *float64                 `json:"tithe_percent" binding:"omitempty,gte=0,lte=100"`
	Installment      bool                     `json:"installment"`
	InstallmentTotal *int                     `json:"installment_total" binding:"omitempty,gte=2,lte=48"`
	IsLoan           bool                     `json:"is_loan"`
	LoanPerson       string                   `json:"loan_person" binding:"omitempty,max=100"`
	Notes            string                   `json:"notes"`
	Tags             string                   `json:"tags" binding:"omitempty,max=500"`
	Penalty          float64                  `json:"penalty" binding:"omitempty,gte=0"`
	Interest         float64                  `json:"interest" binding:"omitempty,gte=0"`
	Discount         float64                  `json:"discount" binding:"omitempty,gte=0"`
	GoalID           *uint                    `json:"goal_id"`
}

type transactionUpdateRequest struct {
	AccountID    *uint                    `json:"account_id"`
	CategoryID   *uint                    `json:"category_id"`
	Description  *string                  `json:"description" binding:"omitempty,min=1,max=200"`
	Amount       *float64                 `json:"amount" binding:"omitempty,gt=0"`
	Type         *models.TransactionType  `json:"type" binding:"omitempty,oneof=income expense transfer"`
	Date         *string                  `json:"date"`
	DueDate      *string                  `json:"due_date"`
	SettledAt    *string                  `json:"settled_at"`
	Status       *models.SettlementStatus `json:"status" binding:"omitempty,oneof=scheduled settled overdue cancelled"`
	Fixed        *bool                    `json:"fixed"`
	Recurring    *bool                    `json:"recurring"`
	Confirmed    *bool                    `json:"confirmed"`
	HasTithe     *bool                    `json:"has_tithe"`
	TithePercent *float64                 `json:"tithe_percent" binding:"omitempty,gte=0,lte=100"`
	Notes        *string                  `json:"notes"`
	Tags         *string                  `json:"tags" binding:"omitempty,max=500"`
	Penalty      *float64                 `json:"penalty" binding:"omitempty,gte=0"`
	Interest     *float64                 `json:"interest" binding:"omitempty,gte=0"`
	Discount     *float64                 `json:"discount" binding:"omitempty,gte=0"`
	GoalID       *uint                    `json:"goal_id"`
}

func today() time.Time { return ledger.DateOnly(time.Now()) }

// getTransaction loads one entry scoped to the owner, applying the
// read-time overdue normalization.
func getTransaction(tx *gorm.DB, id, userID uint) (*models.Transaction, error) {
	var entry models.Transaction
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("transaction not found")
	}
	if err != nil {
		return nil, err
	}
	ledger.NormalizeOverdue(&entry, today())
	return &entry, nil
}

func listTransactions(tx *gorm.DB, userID uint, skip, limit int) ([]models.Transaction, error) {
	var entries []models.Transaction
	err := tx.Where("user_id = ?", userID).
		Order("date desc, id desc").
		Offset(skip).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	now := today()
	for i := range entries {
		ledger.NormalizeOverdue(&entries[i], now)
	}
	return entries, nil
}

// createTransaction posts a new entry: validates ownership, applies the
// credit-card forcing rule, branches into the installment generator or the
// tithe linkage, mutates the account balance, and recomputes every goal
// and budget bucket touched. Runs inside one database transaction.
func createTransaction(tx *gorm.DB, userID uint, req transactionCreateRequest) (*models.Transaction, error) {
	var account models.Account
	if err := tx.Where("id = ? AND user_id = ?", req.AccountID, userID).First(&account).Error; err != nil {
		return nil, errors.New("account not found or not owned by user")
	}

	datePtr, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	date := ledger.DateOnly(*datePtr)
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	settledAt, err := parseDate(req.SettledAt)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusScheduled
	}
	confirmed := true
	if req.Confirmed != nil {
		confirmed = *req.Confirmed
	}
	tithePercent := 10.0
	if req.TithePercent != nil {
		tithePercent = *req.TithePercent
	}

	// card purchases are never created pre-settled
	if account.Type == models.AccountCreditCard && req.Type == models.TransactionExpense {
		status = models.StatusScheduled
		settledAt = nil
	}

	isInstallment := req.Installment || (req.InstallmentTotal != nil && *req.InstallmentTotal > 1)
	if isInstallment && (req.InstallmentTotal == nil || *req.InstallmentTotal < 2) {
		return nil, errors.New("installment plans require installment_total >= 2")
	}
	if isInstallment && req.Recurring {
		return nil, errors.New("a transaction cannot be an installment plan and recurring at the same time")
	}
	if isInstallment {
		if req.HasTithe && req.Type == models.TransactionIncome {
			return nil, errors.New("installment plans with automatic tithe are not supported")
		}
		return createInstallmentPlan(tx, userID, &account, req, status, confirmed, tithePercent, date, dueDate, settledAt)
	}

	loanPerson := ""
	if req.IsLoan {
		loanPerson = req.LoanPerson
	}
	entry := &models.Transaction{
		UserID:       userID,
		UUID:         uuid.NewString(),
		AccountID:    req.AccountID,
		CategoryID:   req.CategoryID,
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Date:         date,
		DueDate:      dueDate,
		SettledAt:    settledAt,
		Status:       status,
		Fixed:        req.Fixed,
		Recurring:    req.Recurring,
		Confirmed:    confirmed,
		TithePercent: tithePercent,
		IsLoan:       req.IsLoan,
		LoanPerson:   loanPerson,
		Notes:        req.Notes,
		Tags:         req.Tags,
		Penalty:      req.Penalty,
		Interest:     req.Interest,
		Discount:     req.Discount,
		GoalID:       req.GoalID,
	}

	var tithe *models.Transaction
	if req.HasTithe && req.Type == models.TransactionIncome {
		link := uuid.NewString()
		entry.HasTithe = true
		entry.TitheUUID = &link
		// the origin needs an id before the derived entry can back-reference it
		if err := tx.Create(entry).Error; err != nil {
			return nil, err
		}
		tithe, err = newTitheEntry(tx, userID, entry)
		if err != nil {
			return nil, err
		}
		if err := tx.Create(tithe).Error; err != nil {
			return nil, err
		}
	} else {
		if err := tx.Create(entry).Error; err != nil {
			return nil, err
		}
	}

	account.Balance += ledger.BalanceImpact(entry)
	if tithe != nil {
		account.Balance += ledger.BalanceImpact(tithe)
	}
	if err := tx.Save(&account).Error; err != nil {
		return nil, err
	}

	goals := map[uint]struct{}{}
	buckets := map[budgetKey]struct{}{}
	if entry.GoalID != nil {
		goals[*entry.GoalID] = struct{}{}
	}
	if key, ok := bucketOf(entry); ok {
		buckets[key] = struct{}{}
	}
	if tithe != nil {
		if key, ok := bucketOf(tithe); ok {
			buckets[key] = struct{}{}
		}
	}
	if err := recalcAggregates(tx, userID, goals, buckets); err != nil {
		return nil, err
	}
	return entry, nil
}

// createInstallmentPlan expands one request into N monthly entries sharing
// a group id. Only the first installment inherits the requested status,
// settlement date and fee fields; the rest are created scheduled with zero
// fees. Returns the first installment as the representative record.
func createInstallmentPlan(
	tx *gorm.DB,
	userID uint,
	account *models.Account,
	req transactionCreateRequest,
	status models.SettlementStatus,
	confirmed bool,
	tithePercent float64,
	date time.Time,
	dueDate, settledAt *time.Time,
) (*models.Transaction, error) {
	total := *req.InstallmentTotal
	groupUUID := uuid.NewString()
	baseDue := date
	if dueDate != nil {
		baseDue = *dueDate
	}
	loanPerson := ""
	if req.IsLoan {
		loanPerson = req.LoanPerson
	}

	goals := map[uint]struct{}{}
	buckets := map[budgetKey]struct{}{}
	var first *models.Transaction

	for i := 1; i <= total; i++ {
		no := i
		tot := total
		group := groupUUID
		entryDate := ledger.AddMonths(date, i-1)
		entryDue := ledger.AddMonths(baseDue, i-1)

		st := models.StatusScheduled
		if i == 1 {
			st = status
		}
		var entrySettled *time.Time
		if i == 1 && st == models.StatusSettled {
			entrySettled = settledAt
		}
		penalty, interest, discount := 0.0, 0.0, 0.0
		if i == 1 {
			penalty, interest, discount = req.Penalty, req.Interest, req.Discount
		}

		e := &models.Transaction{
			UserID:               userID,
			UUID:                 uuid.NewString(),
			AccountID:            req.AccountID,
			CategoryID:           req.CategoryID,
			Description:          req.Description,
			Amount:               req.Amount,
			Type:                 req.Type,
			Date:                 entryDate,
			DueDate:              &entryDue,
			SettledAt:            entrySettled,
			Status:               st,
			Fixed:                req.Fixed,
			Recurring:            req.Recurring,
			Confirmed:            confirmed,
			TithePercent:         tithePercent,
			Installment:          true,
			InstallmentNo:        &no,
			InstallmentTotal:     &tot,
			InstallmentGroupUUID: &group,
			IsLoan:               req.IsLoan,
			LoanPerson:           loanPerson,
			Notes:                req.Notes,
			Tags:                 req.Tags,
			Penalty:              penalty,
			Interest:             interest,
			Discount:             discount,
			GoalID:               req.GoalID,
		}
		if err := tx.Create(e).Error; err != nil {
			return nil, err
		}
		account.Balance += ledger.BalanceImpact(e)
		if e.GoalID != nil {
			goals[*e.GoalID] = struct{}{}
		}
		if key, ok := bucketOf(e); ok {
			buckets[key] = struct{}{}
		}
		if i == 1 {
			first = e
		}
	}

	if err := tx.Save(account).Error; err != nil {
		return nil, err
	}
	if err := recalcAggregates(tx, userID, goals, buckets); err != nil {
		return nil, err
	}
	return first, nil
}

func applyTransactionUpdate(entry *models.Transaction, req transactionUpdateRequest) error {
	if req.AccountID != nil {
		entry.AccountID = *req.AccountID
	}
	if req.CategoryID != nil {
		entry.CategoryID = req.CategoryID
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Amount != nil {
		entry.Amount = *req.Amount
	}
	if req.Type != nil {
		entry.Type = *req.Type
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		if d == nil {
			return errors.New("date cannot be empty")
		}
		entry.Date = ledger.DateOnly(*d)
	}
	if req.DueDate != nil {
		d, err := parseDate(*req.DueDate)
		if err != nil {
			return err
		}
		entry.DueDate = d
	}
	if req.SettledAt != nil {
		d, err := parseDate(*req.SettledAt)
		if err != nil {
			return err
		}
		entry.SettledAt = d
	}
	if req.Status != nil {
		entry.Status = *req.Status
	}
	if req.Fixed != nil {
		entry.Fixed = *req.Fixed
	}
	if req.Recurring != nil {
		entry.Recurring = *req.Recurring
	}
	if req.Confirmed != nil {
		entry.Confirmed = *req.Confirmed
	}
	if req.HasTithe != nil {
		entry.HasTithe = *req.HasTithe
	}
	if req.TithePercent != nil {
		entry.TithePercent = *req.TithePercent
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if req.Tags != nil {
		entry.Tags = *req.Tags
	}
	if req.Penalty != nil {
		entry.Penalty = *req.Penalty
	}
	if req.Interest != nil {
		entry.Interest = *req.Interest
	}
	if req.Discount != nil {
		entry.Discount = *req.Discount
	}
	if req.GoalID != nil {
		entry.GoalID = req.GoalID
	}
	return nil
}

// updateTransaction edits an entry, capturing the old balance impact and
// goal/budget membership first, then reversing the old impact and applying
// the new one (possibly across two accounts), reconciling the derived
// tithe entry, and recomputing every aggregate touched.
func updateTransaction(tx *gorm.DB, userID, id uint, req transactionUpdateRequest) (*models.Transaction, error) {
	entry, err := getTransaction(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if entry.IsTithe {
		return nil, errors.New("tithe entries cannot be edited directly; edit the originating income entry")
	}

	var oldAccount models.Account
	if err := tx.Where("id = ? AND user_id = ?", entry.AccountID, userID).First(&oldAccount).Error; err != nil {
		return nil, errors.New("transaction account not found")
	}

	tithe, err := findTitheEntry(tx, entry)
	if err != nil {
		return nil, err
	}

	oldGoalID := entry.GoalID
	goals := map[uint]struct{}{}
	buckets := map[budgetKey]struct{}{}
	if key, ok := bucketOf(entry); ok {
		buckets[key] = struct{}{}
	}
	oldImpact := ledger.BalanceImpact(entry)

	newAccount := &oldAccount
	if req.AccountID != nil && *req.AccountID != oldAccount.ID {
		var dest models.Account
		if err := tx.Where("id = ? AND user_id = ?", *req.AccountID, userID).First(&dest).Error; err != nil {
			return nil, errors.New("destination account not found")
		}
		newAccount = &dest
	}

	if err := applyTransactionUpdate(entry, req); err != nil {
		return nil, err
	}

	// re-derive the card forcing rule against the final account
	if newAccount.Type == models.AccountCreditCard && entry.Type == models.TransactionExpense {
		entry.Status = models.StatusScheduled
		entry.SettledAt = nil
	}

	newImpact := ledger.BalanceImpact(entry)
	oldAccount.Balance -= oldImpact
	newAccount.Balance += newImpact

	shouldHaveTithe := entry.HasTithe && entry.Type == models.TransactionIncome
	if shouldHaveTithe {
		if entry.TitheUUID == nil {
			link := uuid.NewString()
			entry.TitheUUID = &link
		}
		if tithe != nil {
			if key, ok := bucketOf(tithe); ok {
				buckets[key] = struct{}{}
			}
			oldTitheImpact := ledger.BalanceImpact(tithe)
			tithe.Amount = titheAmount(entry)
			tithe.Description = titheDescription(entry)
			tithe.Date = entry.Date
			due := entry.Date
			if entry.DueDate != nil {
				due = *entry.DueDate
			}
			tithe.DueDate = &due
			tithe.AccountID = entry.AccountID
			if tithe.CategoryID == nil {
				category, err := resolveTitheCategory(tx, userID)
				if err != nil {
					return nil, err
				}
				tithe.CategoryID = &category.ID
			}
			newTitheImpact := ledger.BalanceImpact(tithe)
			if key, ok := bucketOf(tithe); ok {
				buckets[key] = struct{}{}
			}
			oldAccount.Balance -= oldTitheImpact
			newAccount.Balance += newTitheImpact
			if err := tx.Save(tithe).Error; err != nil {
				return nil, err
			}
		} else {
			created, err := newTitheEntry(tx, userID, entry)
			if err != nil {
				return nil, err
			}
			if err := tx.Create(created).Error; err != nil {
				return nil, err
			}
			newAccount.Balance += ledger.BalanceImpact(created)
			if key, ok := bucketOf(created); ok {
				buckets[key] = struct{}{}
			}
		}
	} else {
		if tithe != nil {
			holder := &oldAccount
			if tithe.AccountID == newAccount.ID {
				holder = newAccount
			}
			holder.Balance -= ledger.BalanceImpact(tithe)
			if key, ok := bucketOf(tithe); ok {
				buckets[key] = struct{}{}
			}
			if err := tx.Delete(tithe).Error; err != nil {
				return nil, err
			}
		}
		entry.HasTithe = false
		entry.TitheUUID = nil
	}

	if key, ok := bucketOf(entry); ok {
		buckets[key] = struct{}{}
	}

	if err := tx.Save(entry).Error; err != nil {
		return nil, err
	}
	if err := tx.Save(&oldAccount).Error; err != nil {
		return nil, err
	}
	if newAccount != &oldAccount {
		if err := tx.Save(newAccount).Error; err != nil {
			return nil, err
		}
	}

	if oldGoalID != nil {
		goals[*oldGoalID] = struct{}{}
	}
	if entry.GoalID != nil {
		goals[*entry.GoalID] = struct{}{}
	}
	if err := recalcAggregates(tx, userID, goals, buckets); err != nil {
		return nil, err
	}
	return entry, nil
}

// deleteTransaction removes an entry, reversing its balance impact and
// that of its derived tithe entry (deleting it as well), then recomputes
// the goal and budget buckets that were touched.
func deleteTransaction(tx *gorm.DB, userID, id uint) error {
	entry, err := getTransaction(tx, id, userID)
	if err != nil {
		return err
	}
	if entry.IsTithe {
		return errors.New("tithe entries cannot be deleted directly; delete the originating income entry")
	}

	var account models.Account
	if err := tx.Where("id = ? AND user_id = ?", entry.AccountID, userID).First(&account).Error; err != nil {
		return errors.New("transaction account not found")
	}

	goals := map[uint]struct{}{}
	buckets := map[budgetKey]struct{}{}
	if entry.GoalID != nil {
		goals[*entry.GoalID] = struct{}{}
	}
	if key, ok := bucketOf(entry); ok {
		buckets[key] = struct{}{}
	}

	account.Balance -= ledger.BalanceImpact(entry)

	if entry.HasTithe && entry.TitheUUID != nil {
		tithe, err := findTitheEntry(tx, entry)
		if err != nil {
			return err
		}
		if tithe != nil {
			holder := &account
			if tithe.AccountID != account.ID {
				var h models.Account
				if err := tx.Where("id = ? AND user_id = ?", tithe.AccountID, userID).First(&h).Error; err == nil {
					holder = &h
				}
			}
			holder.Balance -= ledger.BalanceImpact(tithe)
			if key, ok := bucketOf(tithe); ok {
				buckets[key] = struct{}{}
			}
			if err := tx.Delete(tithe).Error; err != nil {
				return err
			}
			if holder != &account {
				if err := tx.Save(holder).Error; err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Delete(entry).Error; err != nil {
		return err
	}
	if err := tx.Save(&account).Error; err != nil {
		return err
	}
	return recalcAggregates(tx, userID, goals, buckets)
}

func listTransactionsHandler(c *gin.Context) {
	ctx := access(c)
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	entries, err := listTransactions(db, ctx.Effective.ID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func getTransactionHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	entry, err := getTransaction(db, uint(id), ctx.Effective.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func createTransactionHandler(c *gin.Context) {
	ctx := access(c)
	var req transactionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var created *models.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createTransaction(tx, ctx.Effective.ID, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func updateTransactionHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req transactionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var updated *models.Transaction
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = updateTransaction(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteTransactionHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteTransaction(tx, ctx.Effective.ID, uint(id))
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
