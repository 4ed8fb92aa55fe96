package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	setupTestDB(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token, actAs string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if actAs != "" {
		req.Header.Set("X-Act-As-User", actAs)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, r *gin.Engine, email string) (string, uint) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", "", gin.H{
		"email": email, "name": "Test User", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", "", gin.H{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func TestAuthFlow(t *testing.T) {
	r := setupTestRouter(t)
	token, _ := registerAndLogin(t, r, "ana@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/v1/me", token, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")

	w = doJSON(t, r, http.MethodGet, "/api/v1/me", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", "", gin.H{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// duplicate registration
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", "", gin.H{
		"email": "ana@example.com", "name": "Dup", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTransactionEndpointFlow(t *testing.T) {
	r := setupTestRouter(t)
	token, _ := registerAndLogin(t, r, "ana@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/accounts", token, "", gin.H{
		"name": "Conta Corrente", "type": "checking", "balance": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var account struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))

	w = doJSON(t, r, http.MethodPost, "/api/v1/transactions", token, "", gin.H{
		"account_id":  account.ID,
		"description": "Mercado",
		"amount":      200,
		"type":        "expense",
		"date":        "2025-06-10",
		"status":      "settled",
		"settled_at":  "2025-06-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/accounts/%d", account.ID), token, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Balance float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(800), got.Balance)

	// validation errors surface as 400
	w = doJSON(t, r, http.MethodPost, "/api/v1/transactions", token, "", gin.H{
		"account_id":  account.ID,
		"description": "Sem tipo",
		"amount":      10,
		"date":        "2025-06-10",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelegationFlowOverHTTP(t *testing.T) {
	r := setupTestRouter(t)
	ownerToken, ownerID := registerAndLogin(t, r, "ana@example.com")
	delegateToken, _ := registerAndLogin(t, r, "bob@example.com")
	strangerToken, _ := registerAndLogin(t, r, "eva@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/accounts", ownerToken, "", gin.H{
		"name": "Conta da Ana", "type": "checking", "balance": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// read-only invite
	w = doJSON(t, r, http.MethodPost, "/api/v1/delegations/invite", ownerToken, "", gin.H{
		"email": "bob@example.com", "can_write": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var invite struct {
		Delegation struct {
			ID uint `json:"id"`
		} `json:"delegation"`
		EmailSent bool `json:"email_sent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invite))
	assert.False(t, invite.EmailSent, "smtp is not configured in tests")

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/delegations/%d/accept", invite.Delegation.ID), delegateToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	actAs := fmt.Sprintf("%d", ownerID)

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", delegateToken, actAs, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Conta da Ana")

	// read-only grant blocks writes
	w = doJSON(t, r, http.MethodPost, "/api/v1/accounts", delegateToken, actAs, gin.H{
		"name": "Intrusa", "type": "wallet",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// no delegation at all
	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", strangerToken, actAs, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", delegateToken, "abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// owner revokes
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/delegations/%d/revoke", invite.Delegation.ID), ownerToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", delegateToken, actAs, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInviteConfirmRegistersNewUser(t *testing.T) {
	r := setupTestRouter(t)
	ownerToken, ownerID := registerAndLogin(t, r, "ana@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/delegations/invite", ownerToken, "", gin.H{
		"email": "novo@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// the token is not exposed over the API, read it from the database
	grant, err := pendingInviteByTokenForTest(ownerID, "novo@example.com")
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodGet, "/api/v1/delegations/invite-info/"+grant, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_account":false`)

	// confirming without credentials fails for a new user
	w = doJSON(t, r, http.MethodPost, "/api/v1/delegations/confirm/"+grant, "", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/delegations/confirm/"+grant, "", "", gin.H{
		"name": "Novo Usuario", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token   string `json:"token"`
		OwnerID uint   `json:"owner_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, ownerID, resp.OwnerID)

	// the fresh session can act as the owner right away
	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts", resp.Token, fmt.Sprintf("%d", ownerID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func pendingInviteByTokenForTest(ownerID uint, email string) (string, error) {
	var token string
	err := db.Raw(
		"SELECT invite_token FROM delegations WHERE owner_user_id = ? AND invited_email = ?",
		ownerID, email,
	).Scan(&token).Error
	return token, err
}
