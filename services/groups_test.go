package services

import (
	"testing"

	apperr "messenger/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestCreateGroupOwnerIsMember(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	ownerID := createTestUser(t)

	group, err := gs.CreateGroup(testCtx(), ownerID, "book club")
	assert.NoError(t, err)
	assert.NotZero(t, group.ID)

	isMember, err := gs.IsMember(testCtx(), group.ID, ownerID)
	assert.NoError(t, err)
	assert.True(t, isMember)
}

func TestCreateGroupEmptyTitle(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	ownerID := createTestUser(t)

	_, err := gs.CreateGroup(testCtx(), ownerID, "")
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestJoinGroupTwiceConflicts(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	ownerID := createTestUser(t)
	memberID := createTestUser(t)

	group, err := gs.CreateGroup(testCtx(), ownerID, "book club")
	assert.NoError(t, err)

	assert.NoError(t, gs.JoinGroup(testCtx(), group.ID, memberID))
	err = gs.JoinGroup(testCtx(), group.ID, memberID)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestJoinUnknownGroup(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	userID := createTestUser(t)

	err := gs.JoinGroup(testCtx(), 9999, userID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestLeaveGroup(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	ownerID := createTestUser(t)
	memberID := createTestUser(t)

	group, err := gs.CreateGroup(testCtx(), ownerID, "book club")
	assert.NoError(t, err)
	assert.NoError(t, gs.JoinGroup(testCtx(), group.ID, memberID))
	assert.NoError(t, gs.LeaveGroup(testCtx(), group.ID, memberID))

	isMember, err := gs.IsMember(testCtx(), group.ID, memberID)
	assert.NoError(t, err)
	assert.False(t, isMember)

	// Повторный выход не no-op: членства уже нет
	err = gs.LeaveGroup(testCtx(), group.ID, memberID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestGetMembersOrder(t *testing.T) {
	setupTestDB(t)
	gs := NewGroupService()
	ownerID := createTestUser(t)
	memberID := createTestUser(t)

	group, err := gs.CreateGroup(testCtx(), ownerID, "book club")
	assert.NoError(t, err)
	assert.NoError(t, gs.JoinGroup(testCtx(), group.ID, memberID))

	members, err := gs.GetMembers(testCtx(), group.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, ownerID, members[0].UserID)
	assert.Equal(t, memberID, members[1].UserID)
}
