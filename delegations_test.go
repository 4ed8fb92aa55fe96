package main

import (
	"testing"
	"time"

	"github.com/max-ramos-rod/financas-project/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteDelegate(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")

	canWrite := false
	grant, err := inviteDelegate(db, owner, delegationInviteRequest{
		Email:    "Bob@Example.com",
		CanWrite: &canWrite,
	})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", grant.InvitedEmail)
	assert.Equal(t, models.DelegationPending, grant.Status)
	assert.False(t, grant.CanWrite)
	require.NotNil(t, grant.InviteToken)
	require.NotNil(t, grant.InviteExpiresAt)
	assert.True(t, grant.InviteExpiresAt.After(time.Now()))
	assert.Nil(t, grant.DelegateUserID, "invited email has no account yet")
}

func TestInviteDelegateLinksExistingUser(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")
	delegate := createTestUser(t, "bob@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	require.NotNil(t, grant.DelegateUserID)
	assert.Equal(t, delegate.ID, *grant.DelegateUserID)
}

func TestInviteDelegateRejectsSelf(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")

	_, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "ana@example.com"})
	assert.Error(t, err)
}

func TestReinviteRefreshesPendingGrant(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")

	first, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	firstToken := *first.InviteToken

	second, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "no duplicate rows per invited email")
	assert.NotEqual(t, firstToken, *second.InviteToken)
}

func TestInviteRejectedWhileActive(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")
	delegate := createTestUser(t, "bob@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	require.NoError(t, acceptDelegation(db, grant, delegate))

	_, err = inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	assert.Error(t, err)
}

func TestAcceptDelegation(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")
	delegate := createTestUser(t, "bob@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	require.NoError(t, acceptDelegation(db, grant, delegate))

	assert.Equal(t, models.DelegationActive, grant.Status)
	require.NotNil(t, grant.DelegateUserID)
	assert.Equal(t, delegate.ID, *grant.DelegateUserID)
	assert.NotNil(t, grant.AcceptedAt)
	assert.Nil(t, grant.InviteToken, "token is single use")
}

func TestAcceptExpiredInvitationFails(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")
	delegate := createTestUser(t, "bob@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)
	expired := time.Now().Add(-time.Hour)
	grant.InviteExpiresAt = &expired
	require.NoError(t, db.Save(grant).Error)

	assert.Error(t, acceptDelegation(db, grant, delegate))
}

func TestAcceptOwnInvitationFails(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "other@example.com"})
	require.NoError(t, err)
	assert.Error(t, acceptDelegation(db, grant, owner))
}

func TestPendingInviteByToken(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "ana@example.com")

	grant, err := inviteDelegate(db, owner, delegationInviteRequest{Email: "bob@example.com"})
	require.NoError(t, err)

	found, err := pendingInviteByToken(db, *grant.InviteToken)
	require.NoError(t, err)
	assert.Equal(t, grant.ID, found.ID)
	require.NotNil(t, found.Owner)
	assert.Equal(t, owner.ID, found.Owner.ID)

	_, err = pendingInviteByToken(db, "nope")
	assert.True(t, isNotFound(err))
}
