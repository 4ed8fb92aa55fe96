package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const inviteTokenTTL = 7 * 24 * time.Hour

func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type delegationInviteRequest struct {
	Email    string `json:"email" binding:"required,email"`
	CanWrite *bool  `json:"can_write"`
}

// inviteDelegate creates (or refreshes) a pending invitation for the given
// email. A previous pending or revoked invite to the same email is reused
// so the owner never accumulates duplicates.
func inviteDelegate(tx *gorm.DB, owner *models.User, req delegationInviteRequest) (*models.Delegation, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == owner.Email {
		return nil, errors.New("you cannot invite yourself")
	}
	canWrite := true
	if req.CanWrite != nil {
		canWrite = *req.CanWrite
	}

	var existing models.Delegation
	err := tx.Where("owner_user_id = ? AND invited_email = ?", owner.ID, email).First(&existing).Error
	if err == nil && existing.Status == models.DelegationActive {
		return nil, errors.New("this person already has access to your data")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, tokenErr := newInviteToken()
	if tokenErr != nil {
		return nil, tokenErr
	}
	expires := time.Now().Add(inviteTokenTTL)

	grant := &existing
	if errors.Is(err, gorm.ErrRecordNotFound) {
		grant = &models.Delegation{OwnerUserID: owner.ID, InvitedEmail: email}
	}
	grant.DelegateUserID = nil
	grant.InviteToken = &token
	grant.InviteExpiresAt = &expires
	grant.Status = models.DelegationPending
	grant.CanWrite = canWrite
	grant.AcceptedAt = nil
	grant.RevokedAt = nil

	if grant.ID == 0 {
		err = tx.Create(grant).Error
	} else {
		err = tx.Save(grant).Error
	}
	if err != nil {
		return nil, err
	}

	// a delegate already registered under this email can accept in-app
	var delegate models.User
	if err := tx.Where("email = ?", email).First(&delegate).Error; err == nil {
		grant.DelegateUserID = &delegate.ID
		if err := tx.Save(grant).Error; err != nil {
			return nil, err
		}
	}
	return grant, nil
}

func acceptDelegation(tx *gorm.DB, grant *models.Delegation, delegate *models.User) error {
	if grant.Status != models.DelegationPending {
		return errors.New("invitation is not pending")
	}
	if grant.InviteExpiresAt != nil && time.Now().After(*grant.InviteExpiresAt) {
		return errors.New("invitation has expired")
	}
	if grant.OwnerUserID == delegate.ID {
		return errors.New("you cannot accept your own invitation")
	}
	now := time.Now()
	grant.DelegateUserID = &delegate.ID
	grant.Status = models.DelegationActive
	grant.AcceptedAt = &now
	grant.InviteToken = nil
	grant.InviteExpiresAt = nil
	return tx.Save(grant).Error
}

func delegationInviteHandler(c *gin.Context) {
	owner := actor(c)
	var req delegationInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var grant *models.Delegation
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		grant, err = inviteDelegate(tx, owner, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	emailSent := false
	if grant.InviteToken != nil {
		if err := sendInvitationEmail(grant.InvitedEmail, owner.Name, *grant.InviteToken); err != nil {
			logger.Warnw("invitation email not sent", "email", grant.InvitedEmail, "err", err)
		} else {
			emailSent = true
		}
	}
	c.JSON(http.StatusCreated, gin.H{"delegation": grant, "email_sent": emailSent})
}

func delegationsSentHandler(c *gin.Context) {
	owner := actor(c)
	var grants []models.Delegation
	err := db.Preload("Delegate").
		Where("owner_user_id = ?", owner.ID).
		Order("created_at desc").Find(&grants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, grants)
}

func delegationsReceivedHandler(c *gin.Context) {
	delegate := actor(c)
	var grants []models.Delegation
	err := db.Preload("Owner").
		Where("delegate_user_id = ? OR invited_email = ?", delegate.ID, delegate.Email).
		Order("created_at desc").Find(&grants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, grants)
}

// delegationOptionsHandler lists the owners the current user may act as,
// for the account-switcher UI.
func delegationOptionsHandler(c *gin.Context) {
	delegate := actor(c)
	var grants []models.Delegation
	err := db.Preload("Owner").
		Where("delegate_user_id = ? AND status = ?", delegate.ID, models.DelegationActive).
		Find(&grants).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	options := make([]gin.H, 0, len(grants))
	for _, g := range grants {
		if g.Owner == nil {
			continue
		}
		options = append(options, gin.H{
			"owner_id":   g.OwnerUserID,
			"owner_name": g.Owner.Name,
			"can_write":  g.CanWrite,
		})
	}
	c.JSON(http.StatusOK, options)
}

func delegationAcceptHandler(c *gin.Context) {
	delegate := actor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var grant models.Delegation
		err := tx.Where("id = ?", id).First(&grant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("invitation not found")
		}
		if err != nil {
			return err
		}
		// only the invited person may accept
		if grant.InvitedEmail != delegate.Email &&
			(grant.DelegateUserID == nil || *grant.DelegateUserID != delegate.ID) {
			return notFound("invitation not found")
		}
		return acceptDelegation(tx, &grant, delegate)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.DelegationActive})
}

// delegationRevokeHandler lets the owner withdraw access, or the delegate
// renounce it.
func delegationRevokeHandler(c *gin.Context) {
	current := actor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var grant models.Delegation
		err := tx.Where("id = ?", id).First(&grant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("delegation not found")
		}
		if err != nil {
			return err
		}
		isOwner := grant.OwnerUserID == current.ID
		isDelegate := grant.DelegateUserID != nil && *grant.DelegateUserID == current.ID
		if !isOwner && !isDelegate {
			return notFound("delegation not found")
		}
		if grant.Status == models.DelegationRevoked {
			return nil
		}
		now := time.Now()
		grant.Status = models.DelegationRevoked
		grant.RevokedAt = &now
		grant.InviteToken = nil
		return tx.Save(&grant).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.DelegationRevoked})
}

func pendingInviteByToken(tx *gorm.DB, token string) (*models.Delegation, error) {
	var grant models.Delegation
	err := tx.Preload("Owner").Where("invite_token = ?", token).First(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("invitation not found")
	}
	if err != nil {
		return nil, err
	}
	if grant.Status != models.DelegationPending {
		return nil, notFound("invitation not found")
	}
	if grant.InviteExpiresAt != nil && time.Now().After(*grant.InviteExpiresAt) {
		return nil, errors.New("invitation has expired")
	}
	return &grant, nil
}

// delegationInviteInfoHandler exposes just enough for the confirmation
// page: who invited, which email, and whether that email already has an
// account.
func delegationInviteInfoHandler(c *gin.Context) {
	grant, err := pendingInviteByToken(db, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	ownerName := ""
	if grant.Owner != nil {
		ownerName = grant.Owner.Name
	}
	var existing models.User
	hasAccount := db.Where("email = ?", grant.InvitedEmail).First(&existing).Error == nil
	c.JSON(http.StatusOK, gin.H{
		"owner_name":    ownerName,
		"invited_email": grant.InvitedEmail,
		"can_write":     grant.CanWrite,
		"has_account":   hasAccount,
	})
}

// delegationConfirmHandler accepts an invite via its emailed token. If the
// invited email has no account yet, one is registered inline with the
// provided name and password; either way the delegation becomes active and
// a session token is returned.
func delegationConfirmHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&req)

	grant, err := pendingInviteByToken(db, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	var delegate models.User
	err = db.Where("email = ?", grant.InvitedEmail).First(&delegate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if req.Name == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required to create your account"})
			return
		}
		created, regErr := registerUser(grant.InvitedEmail, req.Name, req.Password)
		if regErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": regErr.Error()})
			return
		}
		delegate = *created
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return acceptDelegation(tx, grant, &delegate)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := issueToken(&delegate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": delegate, "owner_id": grant.OwnerUserID})
}
