package models

import (
	"time"
)

// MaxMessageLength - предельная длина текста сообщения
const MaxMessageLength = 4096

// Message представляет сообщение в диалоге или группе.
// Для диалога пара (UserA, UserB) нормализована (UserA < UserB), GroupID = 0.
// Для группового сообщения GroupID > 0, UserA = UserB = 0.
// Автоинкрементный ID задает тотальный порядок внутри разговора:
// порядок вставки в БД - единственный арбитр.
type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserA     int64     `gorm:"column:user_a;index:dialog_idx" json:"-"`
	UserB     int64     `gorm:"column:user_b;index:dialog_idx" json:"-"`
	GroupID   int64     `gorm:"column:group_id;index" json:"group_id,omitempty"`
	SenderID  int64     `gorm:"column:sender_id;index" json:"sender_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
