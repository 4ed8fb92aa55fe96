package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/max-ramos-rod/financas-project/models"
	"github.com/max-ramos-rod/financas-project/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type accountCreateRequest struct {
	Name        string             `json:"name" binding:"required,max=100"`
	Type        models.AccountType `json:"type" binding:"required,oneof=wallet checking savings credit_card investment other"`
	Balance     float64            `json:"balance"`
	ClosingDay  *int               `json:"closing_day" binding:"omitempty,gte=1,lte=31"`
	DueDay      *int               `json:"due_day" binding:"omitempty,gte=1,lte=31"`
	CreditLimit *float64           `json:"credit_limit" binding:"omitempty,gte=0"`
	Color       string             `json:"color" binding:"omitempty,len=7"`
	Active      *bool              `json:"active"`
}

type accountUpdateRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=1,max=100"`
	Type        *models.AccountType `json:"type" binding:"omitempty,oneof=wallet checking savings credit_card investment other"`
	Balance     *float64            `json:"balance"`
	ClosingDay  *int                `json:"closing_day" binding:"omitempty,gte=1,lte=31"`
	DueDay      *int                `json:"due_day" binding:"omitempty,gte=1,lte=31"`
	CreditLimit *float64            `json:"credit_limit" binding:"omitempty,gte=0"`
	Color       *string             `json:"color" binding:"omitempty,len=7"`
	Active      *bool               `json:"active"`
}

func getAccount(tx *gorm.DB, id, userID uint) (*models.Account, error) {
	var account models.Account
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("account not found")
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// createAccount persists a new account. Credit cards start with a zero
// balance and require both cycle days; any other type has the card-only
// fields cleared.
func createAccount(tx *gorm.DB, userID uint, req accountCreateRequest) (*models.Account, error) {
	account := models.Account{
		UserID:  userID,
		Name:    req.Name,
		Type:    req.Type,
		Balance: req.Balance,
		Color:   req.Color,
		Active:  true,
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if req.Type == models.AccountCreditCard {
		if req.ClosingDay == nil || req.DueDay == nil {
			return nil, errors.New("credit card accounts require closing_day and due_day")
		}
		account.Balance = 0
		account.ClosingDay = req.ClosingDay
		account.DueDay = req.DueDay
		account.CreditLimit = req.CreditLimit
	}
	if err := tx.Create(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func updateAccount(tx *gorm.DB, userID, id uint, req accountUpdateRequest) (*models.Account, error) {
	account, err := getAccount(tx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Type != nil {
		account.Type = *req.Type
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.ClosingDay != nil {
		account.ClosingDay = req.ClosingDay
	}
	if req.DueDay != nil {
		account.DueDay = req.DueDay
	}
	if req.CreditLimit != nil {
		account.CreditLimit = req.CreditLimit
	}
	if req.Color != nil {
		account.Color = *req.Color
	}
	if req.Active != nil {
		account.Active = *req.Active
	}

	if account.Type == models.AccountCreditCard {
		if req.Type != nil || req.ClosingDay != nil || req.DueDay != nil {
			if account.ClosingDay == nil || account.DueDay == nil {
				return nil, errors.New("credit card accounts require closing_day and due_day")
			}
		}
		// the card's debt is derived from its open entries, the manual
		// balance stays frozen
		account.Balance = 0
	} else {
		account.ClosingDay = nil
		account.DueDay = nil
		account.CreditLimit = nil
	}

	if err := tx.Save(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func deleteAccount(tx *gorm.DB, userID, id uint) error {
	account, err := getAccount(tx, id, userID)
	if err != nil {
		return err
	}
	var count int64
	if err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND account_id = ?", userID, id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("account has transactions and cannot be deleted")
	}
	return tx.Delete(account).Error
}

// statementItem is one open entry on a card statement.
type statementItem struct {
	ID          uint                    `json:"id"`
	Description string                  `json:"description"`
	Date        time.Time               `json:"date"`
	DueDate     *time.Time              `json:"due_date"`
	Amount      float64                 `json:"amount"`
	Effective   float64                 `json:"effective_amount"`
	Status      models.SettlementStatus `json:"status"`
	CategoryID  *uint                   `json:"category_id"`
}

type statementSummary struct {
	AccountID   uint            `json:"account_id"`
	AccountName string          `json:"account_name"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DueDate     time.Time       `json:"due_date"`
	Total       float64         `json:"total"`
	Count       int             `json:"count"`
	Items       []statementItem `json:"items"`
}

// statementReference picks the billing period anchor: the given month/year
// when provided, otherwise today.
func statementReference(month, year int) time.Time {
	if month >= 1 && month <= 12 && year > 0 {
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
	return today()
}

// currentStatement computes the open statement of a credit card: every
// expense entry dated inside the billing period that is still scheduled
// or overdue, ordered by date then id.
func currentStatement(tx *gorm.DB, userID, accountID uint, ref time.Time) (*statementSummary, error) {
	account, err := getAccount(tx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if account.Type != models.AccountCreditCard {
		return nil, errors.New("statements are only available for credit card accounts")
	}
	if account.ClosingDay == nil || account.DueDay == nil {
		return nil, errors.New("credit card account is missing closing_day or due_day")
	}

	start, end := ledger.BillingPeriod(ref, *account.ClosingDay)
	dueDate := ledger.BillingDueDate(end, *account.DueDay)

	var entries []models.Transaction
	err = tx.Where(
		"user_id = ? AND account_id = ? AND type = ? AND date >= ? AND date <= ? AND status IN ?",
		userID, accountID, models.TransactionExpense, start, end,
		[]models.SettlementStatus{models.StatusScheduled, models.StatusOverdue},
	).Order("date, id").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	now := today()
	summary := &statementSummary{
		AccountID:   account.ID,
		AccountName: account.Name,
		PeriodStart: start,
		PeriodEnd:   end,
		DueDate:     dueDate,
		Items:       make([]statementItem, 0, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		ledger.NormalizeOverdue(e, now)
		effective := ledger.EffectiveValue(e)
		summary.Total += effective
		summary.Items = append(summary.Items, statementItem{
			ID:          e.ID,
			Description: e.Description,
			Date:        e.Date,
			DueDate:     e.DueDate,
			Amount:      e.Amount,
			Effective:   effective,
			Status:      e.Status,
			CategoryID:  e.CategoryID,
		})
	}
	summary.Count = len(summary.Items)
	return summary, nil
}

type payStatementRequest struct {
	AccountID   uint   `json:"account_id" binding:"required"`
	PaymentDate string `json:"payment_date"`
	Description string `json:"description" binding:"omitempty,max=200"`
	Month       int    `json:"month" binding:"omitempty,gte=1,lte=12"`
	Year        int    `json:"year" binding:"omitempty,gte=1"`
}

// payStatement settles every open item of the card's statement at once:
// debits the paying account, records a settled transfer entry on it, and
// marks each statement item settled on the payment date.
func payStatement(tx *gorm.DB, userID, cardID uint, req payStatementRequest) (*statementSummary, error) {
	ref := statementReference(req.Month, req.Year)
	summary, err := currentStatement(tx, userID, cardID, ref)
	if err != nil {
		return nil, err
	}
	if summary.Count == 0 {
		return nil, errors.New("statement has no open items to pay")
	}

	payer, err := getAccount(tx, req.AccountID, userID)
	if err != nil {
		return nil, errors.New("paying account not found")
	}
	if payer.ID == cardID {
		return nil, errors.New("a card cannot pay its own statement")
	}
	if payer.Type == models.AccountCreditCard {
		return nil, errors.New("a credit card cannot pay another card's statement")
	}

	paymentDate := today()
	if parsed, err := parseDate(req.PaymentDate); err != nil {
		return nil, err
	} else if parsed != nil {
		paymentDate = ledger.DateOnly(*parsed)
	}

	payer.Balance -= summary.Total
	if err := tx.Save(payer).Error; err != nil {
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Pagamento fatura %s (%s - %s)",
			summary.AccountName, summary.PeriodStart.Format("01/2006"), summary.PeriodEnd.Format("01/2006"))
	}
	settledAt := paymentDate
	payment := models.Transaction{
		UserID:      userID,
		UUID:        uuid.NewString(),
		AccountID:   payer.ID,
		Description: description,
		Amount:      summary.Total,
		Type:        models.TransactionTransfer,
		Date:        paymentDate,
		DueDate:     &settledAt,
		SettledAt:   &settledAt,
		Status:      models.StatusSettled,
		Confirmed:   true,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, summary.Count)
	for _, item := range summary.Items {
		ids = append(ids, item.ID)
	}
	err = tx.Model(&models.Transaction{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Updates(map[string]interface{}{
			"status":     models.StatusSettled,
			"settled_at": paymentDate,
		}).Error
	if err != nil {
		return nil, err
	}

	// the statement items are now settled, so the refreshed summary shows
	// what remains open (normally nothing)
	return currentStatement(tx, userID, cardID, ref)
}

func listAccountsHandler(c *gin.Context) {
	ctx := access(c)
	var accounts []models.Account
	err := db.Where("user_id = ?", ctx.Effective.ID).Order("name").Find(&accounts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func getAccountHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	account, err := getAccount(db, uint(id), ctx.Effective.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func createAccountHandler(c *gin.Context) {
	ctx := access(c)
	var req accountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var created *models.Account
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createAccount(tx, ctx.Effective.ID, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func updateAccountHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req accountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var updated *models.Account
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = updateAccount(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteAccountHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return deleteAccount(tx, ctx.Effective.ID, uint(id))
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func statementHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	month, _ := strconv.Atoi(c.Query("month"))
	year, _ := strconv.Atoi(c.Query("year"))
	summary, err := currentStatement(db, ctx.Effective.ID, uint(id), statementReference(month, year))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func payStatementHandler(c *gin.Context) {
	ctx := access(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req payStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var summary *statementSummary
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		summary, err = payStatement(tx, ctx.Effective.ID, uint(id), req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
