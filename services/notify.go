package services

import (
	"encoding/json"
	"time"

	"messenger/models"
)

// MessageEvent - событие доставки нового сообщения, уходящее в WebSocket.
// Для прямого сообщения заполнена нормализованная пара (UserA, UserB),
// для группового - GroupID. CorrelationToken присутствует только в эхе
// отправителю: по нему клиент сопоставляет эхо со своей оптимистичной записью.
type MessageEvent struct {
	Event            string    `json:"event"`
	ID               int64     `json:"id"`
	UserA            int64     `json:"user_a,omitempty"`
	UserB            int64     `json:"user_b,omitempty"`
	GroupID          int64     `json:"group_id,omitempty"`
	SenderID         int64     `json:"sender_id"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"created_at"`
	CorrelationToken string    `json:"correlation_token,omitempty"`
}

// NewMessageEvent строит событие доставки из сохраненного сообщения
func NewMessageEvent(msg *models.Message, correlationToken string) MessageEvent {
	return MessageEvent{
		Event:            "message",
		ID:               msg.ID,
		UserA:            msg.UserA,
		UserB:            msg.UserB,
		GroupID:          msg.GroupID,
		SenderID:         msg.SenderID,
		Text:             msg.Text,
		CreatedAt:        msg.CreatedAt,
		CorrelationToken: correlationToken,
	}
}

// PushMessageEvent отправляет событие пользователю через реестр соединений.
// Отсутствие соединения и ошибки записи не являются ошибкой отправки.
func PushMessageEvent(userID int64, event MessageEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	GlobalConnRegistry.Send(userID, data)
}
