package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"messenger/db"
	"messenger/models"
	apperr "messenger/pkg/errors"

	"gorm.io/gorm"
)

// MessageService - хранение и диспетчеризация сообщений.
// Порядок операции фиксирован: валидация -> авторизация -> запись в БД ->
// best-effort push. Ошибка записи отменяет операцию целиком; ошибка push
// не является ошибкой отправки - сообщение уже долговечно.
type MessageService struct {
	friends *FriendService
	groups  *GroupService
}

func NewMessageService() *MessageService {
	return &MessageService{
		friends: NewFriendService(),
		groups:  NewGroupService(),
	}
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.InvalidArg("message text cannot be empty")
	}
	if len(text) > models.MaxMessageLength {
		return apperr.InvalidArg("message text is too long")
	}
	return nil
}

// SendDirect отправляет прямое сообщение. Timestamp и id назначает сервер:
// клиентскому времени не доверяем, порядок внутри диалога определяет
// автоинкремент БД, без прикладных блокировок.
func (s *MessageService) SendDirect(ctx context.Context, senderID, recipientID int64, text, correlationToken string) (*models.Message, error) {
	if senderID <= 0 || recipientID <= 0 {
		return nil, apperr.InvalidArg("invalid user ID")
	}
	if senderID == recipientID {
		return nil, apperr.InvalidArg("cannot message yourself")
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	allowed, err := s.friends.CanMessage(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("users are not friends")
	}

	a, b := models.NormalizePair(senderID, recipientID)
	msg := &models.Message{
		UserA:     a,
		UserB:     b,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(msg).Error; err != nil {
		return nil, apperr.Internal("failed to persist message", err)
	}

	// Эхо отправителю несет корреляционный токен, событие получателю - нет.
	// Оба идут через deliver: отправитель может быть подключен к другому
	// инстансу, и без эха его оптимистичная запись зависнет в pending.
	s.deliver(ctx, senderID, NewMessageEvent(msg, correlationToken))
	s.deliver(ctx, recipientID, NewMessageEvent(msg, ""))
	IncrUnread(ctx, senderID, recipientID)

	return msg, nil
}

// SendGroup отправляет сообщение в группу. Требует активного членства.
func (s *MessageService) SendGroup(ctx context.Context, senderID, groupID int64, text, correlationToken string) (*models.Message, error) {
	if senderID <= 0 || groupID <= 0 {
		return nil, apperr.InvalidArg("invalid user or group ID")
	}
	if err := validateText(text); err != nil {
		return nil, err
	}

	isMember, err := s.groups.IsMember(ctx, groupID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.Forbidden("sender is not a group member")
	}

	msg := &models.Message{
		GroupID:   groupID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(msg).Error; err != nil {
		return nil, apperr.Internal("failed to persist message", err)
	}

	s.deliver(ctx, senderID, NewMessageEvent(msg, correlationToken))

	members, err := s.groups.GetMembers(ctx, groupID)
	if err != nil {
		// Сообщение уже сохранено, рассылку пропускаем
		log.Printf("group %d fan-out skipped: %v", groupID, err)
		return msg, nil
	}
	event := NewMessageEvent(msg, "")
	for _, member := range members {
		if member.UserID == senderID {
			continue
		}
		s.deliver(ctx, member.UserID, event)
	}

	return msg, nil
}

// Точка подмены публикации в тестах
var publishDelivery = PublishDeliveryTask

// deliver пушит событие локально подключенному получателю, иначе публикует
// задачу доставки для остальных инстансов. Оба пути best-effort.
func (s *MessageService) deliver(ctx context.Context, userID int64, event MessageEvent) {
	if _, ok := GlobalConnRegistry.Get(userID); ok {
		PushMessageEvent(userID, event)
		return
	}
	if err := publishDelivery(ctx, DeliveryTask{UserID: userID, Event: event}); err != nil {
		log.Printf("delivery task for user %d not published: %v", userID, err)
	}
}

// DeleteMessage удаляет сообщение. Разрешено только отправителю;
// для группового сообщения отправитель должен оставаться участником группы.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, actingUserID int64) error {
	if messageID <= 0 || actingUserID <= 0 {
		return apperr.InvalidArg("invalid message or user ID")
	}

	var msg models.Message
	if err := db.GetWriteDB(ctx).First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("message not found")
		}
		return apperr.Internal("failed to load message", err)
	}

	if msg.SenderID != actingUserID {
		return apperr.Forbidden("only the sender may delete the message")
	}
	if msg.GroupID > 0 {
		isMember, err := s.groups.IsMember(ctx, msg.GroupID, actingUserID)
		if err != nil {
			return err
		}
		if !isMember {
			return apperr.Forbidden("sender is no longer a group member")
		}
	}

	if err := db.GetWriteDB(ctx).Delete(&models.Message{}, messageID).Error; err != nil {
		return apperr.Internal("failed to delete message", err)
	}
	return nil
}

// GetDialogHistory возвращает страницу диалога от новых к старым.
// hasMore аппроксимируется как "страница полная": при конкурентных
// вставках оценка может плавать - известное ограничение, не исправляем.
func (s *MessageService) GetDialogHistory(ctx context.Context, userID, otherID int64, page, pageSize int) ([]models.Message, bool, error) {
	if userID <= 0 || otherID <= 0 {
		return nil, false, apperr.InvalidArg("invalid user ID")
	}
	page, pageSize = normalizePage(page, pageSize)

	a, b := models.NormalizePair(userID, otherID)
	var messages []models.Message
	err := db.GetReadOnlyDB(ctx).
		Where("user_a = ? AND user_b = ? AND group_id = 0", a, b).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, false, apperr.Internal("failed to get dialog history", err)
	}
	return messages, len(messages) == pageSize, nil
}

// GetGroupHistory возвращает страницу истории группы, доступно участникам
func (s *MessageService) GetGroupHistory(ctx context.Context, userID, groupID int64, page, pageSize int) ([]models.Message, bool, error) {
	if userID <= 0 || groupID <= 0 {
		return nil, false, apperr.InvalidArg("invalid user or group ID")
	}
	isMember, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, false, err
	}
	if !isMember {
		return nil, false, apperr.Forbidden("user is not a group member")
	}
	page, pageSize = normalizePage(page, pageSize)

	var messages []models.Message
	err = db.GetReadOnlyDB(ctx).
		Where("group_id = ?", groupID).
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, false, apperr.Internal("failed to get group history", err)
	}
	return messages, len(messages) == pageSize, nil
}

// MarkDialogRead сбрасывает счетчик непрочитанных пользователя в диалоге
func (s *MessageService) MarkDialogRead(ctx context.Context, userID, otherID int64) {
	ResetUnread(ctx, userID, otherID)
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
