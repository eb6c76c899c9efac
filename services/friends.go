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

// AllowPendingDialog - политика: разрешать ли переписку, пока заявка
// в друзья еще не принята. Оставлено включенным осознанно.
const AllowPendingDialog = true

// Состояния пары пользователей
const (
	StateNone            = "none"
	StatePendingSent     = "pending_sent"
	StatePendingReceived = "pending_received"
	StateFriends         = "friends"
)

// PairStatus - текущее состояние пары {user, other} для клиентского UI
type PairStatus struct {
	State     string `json:"state"`
	RequestID int64  `json:"request_id,omitempty"`
	SenderID  int64  `json:"sender_id,omitempty"`
}

type FriendService struct{}

func NewFriendService() *FriendService {
	return &FriendService{}
}

// SendRequest создает заявку в друзья. Валидна только из состояния "none":
// существующая дружба или pending-заявка в любом направлении дают Conflict.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID int64, message string) (*models.FriendRequest, error) {
	if senderID <= 0 || receiverID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}
	if senderID == receiverID {
		return nil, apperr.InvalidArg("cannot add yourself as friend")
	}

	// Проверяем, что оба пользователя существуют
	var userCount int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("id IN (?)", []int64{senderID, receiverID}).
		Count(&userCount).Error
	if err != nil {
		return nil, apperr.Internal("error checking users", err)
	}
	if userCount != 2 {
		return nil, apperr.InvalidArg("one or both users do not exist")
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}

	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		a, b := models.NormalizePair(senderID, receiverID)
		var friendship models.Friendship
		if err := tx.Where("user_a = ? AND user_b = ?", a, b).First(&friendship).Error; err == nil {
			return apperr.Conflict("users are already friends")
		}

		// Pending-заявка в любом направлении блокирует новую
		var existing models.FriendRequest
		err := tx.Where(
			"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			senderID, receiverID, receiverID, senderID, models.RequestPending,
		).First(&existing).Error
		if err == nil {
			return apperr.Conflict("friend request already pending")
		}

		return tx.Create(request).Error
	})
	if err != nil {
		if apperr.CodeOf(err) != apperr.CodeUnknown {
			return nil, err
		}
		// Гонка двух одновременных заявок: проигравшая вставка падает
		// на частичном уникальном индексе
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("friend request already pending")
		}
		return nil, apperr.Internal("failed to create friend request", err)
	}

	return request, nil
}

// AcceptRequest принимает заявку. Атомарно: статус -> accepted и создание
// дружбы в одной транзакции. Конкурирующий accept проигрывает на
// перепроверке статуса (UPDATE ... WHERE status = 'pending') и получает Conflict.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actingUserID int64) error {
	return s.respond(ctx, requestID, actingUserID, models.RequestAccepted)
}

// RejectRequest отклоняет заявку, доступно только получателю
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actingUserID int64) error {
	return s.respond(ctx, requestID, actingUserID, models.RequestRejected)
}

// CancelRequest отзывает заявку, доступно только отправителю
func (s *FriendService) CancelRequest(ctx context.Context, requestID, actingUserID int64) error {
	return s.respond(ctx, requestID, actingUserID, models.RequestCanceled)
}

func (s *FriendService) respond(ctx context.Context, requestID, actingUserID int64, newStatus string) error {
	if requestID <= 0 || actingUserID <= 0 {
		return apperr.InvalidArg("invalid request or user ID")
	}

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("friend request not found")
			}
			return apperr.Internal("failed to load friend request", err)
		}

		// Отзывать может только отправитель, отвечать - только получатель
		if newStatus == models.RequestCanceled {
			if request.SenderID != actingUserID {
				return apperr.Forbidden("only the sender may cancel the request")
			}
		} else if request.ReceiverID != actingUserID {
			return apperr.Forbidden("only the receiver may respond to the request")
		}

		now := time.Now()
		result := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Updates(map[string]interface{}{"status": newStatus, "responded_at": now})
		if result.Error != nil {
			return apperr.Internal("failed to update friend request", result.Error)
		}
		if result.RowsAffected == 0 {
			// Кто-то успел перевести заявку в терминальное состояние
			return apperr.Conflict("friend request is no longer pending")
		}

		if newStatus != models.RequestAccepted {
			return nil
		}

		a, b := models.NormalizePair(request.SenderID, request.ReceiverID)
		friendship := &models.Friendship{UserA: a, UserB: b, CreatedAt: now}
		if err := tx.Create(friendship).Error; err != nil {
			return apperr.Internal("failed to create friendship", err)
		}
		return nil
	})
}

// RemoveFriend удаляет дружбу. Не идемпотентен: отсутствие дружбы - NotFound.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if userID <= 0 || friendID <= 0 {
		return apperr.InvalidArg("invalid user ID")
	}

	a, b := models.NormalizePair(userID, friendID)
	result := db.GetWriteDB(ctx).
		Where("user_a = ? AND user_b = ?", a, b).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return apperr.Internal("failed to delete friendship", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("friendship not found")
	}
	return nil
}

// CanMessage - предикат авторизации переписки: дружба либо (по политике)
// pending-заявка в любом направлении
func (s *FriendService) CanMessage(ctx context.Context, userID, otherID int64) (bool, error) {
	status, err := s.GetStatus(ctx, userID, otherID)
	if err != nil {
		return false, err
	}
	switch status.State {
	case StateFriends:
		return true, nil
	case StatePendingSent, StatePendingReceived:
		return AllowPendingDialog, nil
	}
	return false, nil
}

// GetStatus возвращает состояние пары глазами userID: кто отправил
// pending-заявку и ее id, если она есть
func (s *FriendService) GetStatus(ctx context.Context, userID, otherID int64) (*PairStatus, error) {
	if userID <= 0 || otherID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}

	a, b := models.NormalizePair(userID, otherID)
	var friendship models.Friendship
	err := db.GetReadOnlyDB(ctx).Where("user_a = ? AND user_b = ?", a, b).First(&friendship).Error
	if err == nil {
		return &PairStatus{State: StateFriends}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to check friendship", err)
	}

	var request models.FriendRequest
	err = db.GetReadOnlyDB(ctx).Where(
		"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
		userID, otherID, otherID, userID, models.RequestPending,
	).First(&request).Error
	if err == nil {
		state := StatePendingReceived
		if request.SenderID == userID {
			state = StatePendingSent
		}
		return &PairStatus{State: state, RequestID: request.ID, SenderID: request.SenderID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to check friend request", err)
	}

	return &PairStatus{State: StateNone}, nil
}

// GetPendingRequests возвращает входящие pending-заявки пользователя
func (s *FriendService) GetPendingRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	if userID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}
	var requests []models.FriendRequest
	err := db.GetReadOnlyDB(ctx).
		Where("receiver_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, apperr.Internal("failed to get pending requests", err)
	}
	return requests, nil
}

// GetSentRequests возвращает исходящие pending-заявки пользователя
func (s *FriendService) GetSentRequests(ctx context.Context, userID int64) ([]models.FriendRequest, error) {
	if userID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}
	var requests []models.FriendRequest
	err := db.GetReadOnlyDB(ctx).
		Where("sender_id = ? AND status = ?", userID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, apperr.Internal("failed to get sent requests", err)
	}
	return requests, nil
}
