package main

import (
	"net/http"
	"strconv"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.POST("/auth/register", registerHandler)
	api.POST("/auth/login", loginHandler)

	// invite confirmation must work without a session: the invited person
	// may not have an account yet
	api.GET("/delegations/invite-info/:token", delegationInviteInfoHandler)
	api.POST("/delegations/confirm/:token", delegationConfirmHandler)

	authed := api.Group("", jwtAuthMiddleware())
	authed.GET("/me", meHandler)

	// delegation management always acts as the token's own user
	authed.POST("/delegations/invite", delegationInviteHandler)
	authed.GET("/delegations/sent", delegationsSentHandler)
	authed.GET("/delegations/received", delegationsReceivedHandler)
	authed.GET("/delegations/act-as-options", delegationOptionsHandler)
	authed.POST("/delegations/:id/accept", delegationAcceptHandler)
	authed.POST("/delegations/:id/revoke", delegationRevokeHandler)

	// everything below may act on a delegated owner's data
	data := authed.Group("", accessContextMiddleware())

	data.GET("/accounts", listAccountsHandler)
	data.GET("/accounts/:id", getAccountHandler)
	data.POST("/accounts", createAccountHandler)
	data.PUT("/accounts/:id", updateAccountHandler)
	data.DELETE("/accounts/:id", deleteAccountHandler)
	data.GET("/accounts/:id/statement", statementHandler)
	data.POST("/accounts/:id/statement/pay", payStatementHandler)

	data.GET("/categories", listCategoriesHandler)
	data.GET("/categories/:id", getCategoryHandler)
	data.POST("/categories", createCategoryHandler)
	data.PUT("/categories/:id", updateCategoryHandler)
	data.DELETE("/categories/:id", deleteCategoryHandler)

	data.GET("/transactions", listTransactionsHandler)
	data.GET("/transactions/:id", getTransactionHandler)
	data.POST("/transactions", createTransactionHandler)
	data.PUT("/transactions/:id", updateTransactionHandler)
	data.DELETE("/transactions/:id", deleteTransactionHandler)

	data.GET("/goals", listGoalsHandler)
	data.GET("/goals/:id", getGoalHandler)
	data.POST("/goals", createGoalHandler)
	data.PUT("/goals/:id", updateGoalHandler)
	data.DELETE("/goals/:id", deleteGoalHandler)

	data.GET("/budgets", listBudgetsHandler)
	data.GET("/budgets/:id", getBudgetHandler)
	data.POST("/budgets", createBudgetHandler)
	data.PUT("/budgets/:id", updateBudgetHandler)
	data.DELETE("/budgets/:id", deleteBudgetHandler)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		email, _ := claims["sub"].(string)
		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}
		c.Set("actor", &user)
		c.Next()
	}
}

// accessContext resolves who the request effectively acts for. Without the
// X-Act-As-User header the actor acts on their own data; with it, an
// active delegation from that owner to the actor is required, and write
// methods additionally require the grant's write permission.
type accessContext struct {
	Actor     *models.User
	Effective *models.User
	Delegated bool
	CanWrite  bool
}

func actor(c *gin.Context) *models.User {
	v, _ := c.Get("actor")
	return v.(*models.User)
}

func access(c *gin.Context) *accessContext {
	v, _ := c.Get("access")
	return v.(*accessContext)
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func accessContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		current := actor(c)
		raw := c.GetHeader("X-Act-As-User")
		if raw == "" {
			c.Set("access", &accessContext{Actor: current, Effective: current, CanWrite: true})
			c.Next()
			return
		}
		ownerID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-Act-As-User header"})
			c.Abort()
			return
		}
		if uint(ownerID) == current.ID {
			c.Set("access", &accessContext{Actor: current, Effective: current, CanWrite: true})
			c.Next()
			return
		}
		var grant models.Delegation
		err = db.Where(
			"owner_user_id = ? AND delegate_user_id = ? AND status = ?",
			ownerID, current.ID, models.DelegationActive,
		).First(&grant).Error
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "delegation not found or inactive"})
			c.Abort()
			return
		}
		var owner models.User
		if err := db.First(&owner, ownerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "data owner not found"})
			c.Abort()
			return
		}
		if isWriteMethod(c.Request.Method) && !grant.CanWrite {
			c.JSON(http.StatusForbidden, gin.H{"error": "delegation has no write permission"})
			c.Abort()
			return
		}
		c.Set("access", &accessContext{Actor: current, Effective: &owner, Delegated: true, CanWrite: grant.CanWrite})
		c.Next()
	}
}

func registerHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := registerUser(req.Email, req.Name, req.Password)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, actor(c))
}
