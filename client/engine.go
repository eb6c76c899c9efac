// Package client реализует клиентскую часть обмена сообщениями:
// оптимистичную отправку со сверкой по серверному эху, приём push-событий
// и постраничную подгрузку истории. Сетевой транспорт отделен от движка,
// движок работает только с локальным состоянием.
package client

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Event - событие доставки сообщения в том виде, в котором его шлет сервер
type Event struct {
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

// Message - локальное представление сообщения для отображения.
// Pending=true означает оптимистичную запись, еще не подтвержденную сервером.
type Message struct {
	ID               int64     `json:"id,omitempty"`
	SenderID         int64     `json:"sender_id"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"created_at"`
	Pending          bool      `json:"pending,omitempty"`
	CorrelationToken string    `json:"correlation_token,omitempty"`
}

// Engine сводит две локальные коллекции одного разговора: подтвержденный
// сервером список (committed, хранится от старых к новым, его относительный
// порядок никогда не меняется - он уже отражает серверный тотальный порядок)
// и список оптимистичных записей (pending), помеченных корреляционными
// токенами. Токен - то, что не дает отправителю увидеть свое сообщение дважды.
type Engine struct {
	mu        sync.Mutex
	selfID    int64
	tokenSeq  uint64
	committed []Message
	pending   []Message
}

func NewEngine(selfID int64) *Engine {
	return &Engine{selfID: selfID}
}

// newToken генерирует корреляционный токен. Формат непрозрачен для сервера.
// Монотонный суффикс различает отправки, попавшие в один тик часов.
// Вызывается под мьютексом движка.
func (e *Engine) newToken() string {
	e.tokenSeq++
	return fmt.Sprintf("%d_%d_%d", time.Now().UnixNano(), e.selfID, e.tokenSeq)
}

// SendLocal немедленно добавляет оптимистичную запись и возвращает ее
// токен для передачи в сетевой вызов отправки
func (e *Engine) SendLocal(text string) Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	msg := Message{
		SenderID:         e.selfID,
		Text:             text,
		CreatedAt:        time.Now(),
		Pending:          true,
		CorrelationToken: e.newToken(),
	}
	e.pending = append(e.pending, msg)
	return msg
}

// HandleEvent обрабатывает входящее событие: эхо собственной отправки
// (совпал токен) заменяет оптимистичную запись, любое другое событие
// дописывается в подтвержденный список
func (e *Engine) HandleEvent(ev Event) {
	if ev.SenderID == e.selfID && ev.CorrelationToken != "" {
		if e.onServerEcho(ev) {
			return
		}
	}
	e.onServerPush(ev)
}

// onServerEcho снимает pending-запись по токену и коммитит подтвержденное
// сообщение. Возвращает false, если токен не найден (например, эхо пришло
// повторно после переподключения).
func (e *Engine) onServerEcho(ev Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, p := range e.pending {
		if p.CorrelationToken == ev.CorrelationToken {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			e.appendCommitted(ev)
			return true
		}
	}
	return false
}

// onServerPush дописывает событие в подтвержденный список. Серверные id
// монотонны внутри разговора, поэтому push всегда представляет самый
// новый элемент; повторы по id игнорируются.
func (e *Engine) onServerPush(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.appendCommitted(ev)
}

func (e *Engine) appendCommitted(ev Event) {
	for _, m := range e.committed {
		if m.ID == ev.ID {
			return
		}
	}
	e.committed = append(e.committed, Message{
		ID:        ev.ID,
		SenderID:  ev.SenderID,
		Text:      ev.Text,
		CreatedAt: ev.CreatedAt,
	})
}

// Rollback удаляет оптимистичную запись после неудачи самого сетевого
// вызова отправки. Автоповтора нет: повторная отправка - отдельное
// действие пользователя.
func (e *Engine) Rollback(correlationToken string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, p := range e.pending {
		if p.CorrelationToken == correlationToken {
			e.pending = append(e.pending[:i], e.pending[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceCommitted целиком заменяет подтвержденный список (страница 1
// истории после переподключения). Pending-записи переживают замену.
// Вход ожидается от старых к новым.
func (e *Engine) ReplaceCommitted(messages []Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.committed = append([]Message(nil), messages...)
}

// PrependCommitted вставляет более старую страницу истории перед
// текущим подтвержденным списком. Вход ожидается от старых к новым.
func (e *Engine) PrependCommitted(messages []Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	merged := make([]Message, 0, len(messages)+len(e.committed))
	merged = append(merged, messages...)
	merged = append(merged, e.committed...)
	e.committed = merged
}

// Merged возвращает единое представление для отображения: committed и
// pending слиты по времени. Сортировка стабильна, поэтому относительный
// порядок подтвержденных сообщений не меняется.
func (e *Engine) Merged() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	merged := make([]Message, 0, len(e.committed)+len(e.pending))
	merged = append(merged, e.committed...)
	merged = append(merged, e.pending...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged
}

// PendingCount - число неподтвержденных записей
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}
