package models

import "time"

// Статусы заявки в друзья. Заявка переходит из pending ровно один раз
// в одно из терминальных состояний.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
	RequestCanceled = "canceled"
)

// FriendRequest - заявка в друзья от sender к receiver
type FriendRequest struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    int64      `gorm:"index" json:"sender_id"`
	ReceiverID  int64      `gorm:"index" json:"receiver_id"`
	Message     string     `gorm:"size:500" json:"message,omitempty"`
	Status      string     `gorm:"size:20;index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friendship - подтвержденная дружба. Пара нормализована: UserA < UserB,
// одна строка на пару.
type Friendship struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserA     int64     `gorm:"index:friendship_pair_idx,unique" json:"user_a"`
	UserB     int64     `gorm:"index:friendship_pair_idx,unique" json:"user_b"`
	CreatedAt time.Time `json:"created_at"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// NormalizePair приводит пару пользователей к каноническому порядку
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
