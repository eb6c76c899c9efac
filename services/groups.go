package services

import (
	"context"
	"errors"
	"time"

	"messenger/db"
	"messenger/models"
	apperr "messenger/pkg/errors"

	"gorm.io/gorm"
)

type GroupService struct{}

func NewGroupService() *GroupService {
	return &GroupService{}
}

// CreateGroup создает группу, владелец сразу становится участником
func (s *GroupService) CreateGroup(ctx context.Context, ownerID int64, title string) (*models.Group, error) {
	if ownerID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}
	if title == "" {
		return nil, apperr.InvalidArg("group title cannot be empty")
	}

	group := &models.Group{Title: title, OwnerID: ownerID, CreatedAt: time.Now()}
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		member := &models.GroupMember{GroupID: group.ID, UserID: ownerID, JoinedAt: time.Now()}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, apperr.Internal("failed to create group", err)
	}
	return group, nil
}

// JoinGroup добавляет пользователя в группу
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID int64) error {
	if groupID <= 0 || userID <= 0 {
		return apperr.InvalidArg("invalid group or user ID")
	}

	var group models.Group
	if err := db.GetReadOnlyDB(ctx).First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("group not found")
		}
		return apperr.Internal("failed to load group", err)
	}

	member := &models.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: time.Now()}
	if err := db.GetWriteDB(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("user is already a group member")
		}
		return apperr.Internal("failed to join group", err)
	}
	return nil
}

// LeaveGroup удаляет пользователя из группы
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID int64) error {
	if groupID <= 0 || userID <= 0 {
		return apperr.InvalidArg("invalid group or user ID")
	}

	result := db.GetWriteDB(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if result.Error != nil {
		return apperr.Internal("failed to leave group", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("group membership not found")
	}
	return nil
}

// IsMember проверяет активное членство пользователя в группе
func (s *GroupService) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("failed to check group membership", err)
	}
	return count > 0, nil
}

// GetMembers возвращает плоский список участников группы
func (s *GroupService) GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	if groupID <= 0 {
		return nil, apperr.InvalidArg("invalid group ID")
	}
	var members []models.GroupMember
	err := db.GetReadOnlyDB(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperr.Internal("failed to get group members", err)
	}
	return members, nil
}
