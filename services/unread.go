package services

import (
	"context"
	"fmt"
	"time"

	"messenger/models"
)

// Счетчики непрочитанных хранятся в Redis: хеш на диалог,
// поле - id получателя.
const unreadTTL = 30 * 24 * time.Hour

func unreadKey(user1, user2 int64) string {
	a, b := models.NormalizePair(user1, user2)
	return fmt.Sprintf("unread:%d:%d", a, b)
}

// IncrUnread увеличивает счетчик непрочитанных получателя в диалоге.
// Redis может быть недоступен - счетчики вспомогательные, не блокируем отправку.
func IncrUnread(ctx context.Context, senderID, recipientID int64) {
	if RedisClient == nil {
		return
	}
	key := unreadKey(senderID, recipientID)
	pipe := RedisClient.Pipeline()
	pipe.HIncrBy(ctx, key, fmt.Sprintf("%d", recipientID), 1)
	pipe.Expire(ctx, key, unreadTTL)
	_, _ = pipe.Exec(ctx)
}

// ResetUnread сбрасывает счетчик непрочитанных пользователя в диалоге
func ResetUnread(ctx context.Context, userID, otherID int64) {
	if RedisClient == nil {
		return
	}
	_ = RedisClient.HSet(ctx, unreadKey(userID, otherID), fmt.Sprintf("%d", userID), 0).Err()
}

// GetUnread возвращает число непрочитанных пользователя в диалоге
func GetUnread(ctx context.Context, userID, otherID int64) (int64, error) {
	if RedisClient == nil {
		return 0, nil
	}
	count, err := RedisClient.HGet(ctx, unreadKey(userID, otherID), fmt.Sprintf("%d", userID)).Int64()
	if err != nil {
		// Отсутствие поля означает ноль непрочитанных
		return 0, nil
	}
	return count, nil
}
