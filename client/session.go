package client

import (
	"context"
	"log"
	"time"
)

// Session - клиентская сессия одного разговора: связывает движок сверки,
// подгрузчик истории и транспорт. События чужих разговоров отбрасываются
// на входе.
type Session struct {
	SelfID      int64
	OtherUserID int64 // 0 для группового разговора
	GroupID     int64 // 0 для диалога

	Engine    *Engine
	Loader    *HistoryLoader
	transport *Transport
}

// NewDialogSession создает сессию прямого диалога с пользователем
func NewDialogSession(baseURL, token string, selfID, otherUserID int64, pageSize int) *Session {
	engine := NewEngine(selfID)
	transport := NewTransport(baseURL, token)
	s := &Session{
		SelfID:      selfID,
		OtherUserID: otherUserID,
		Engine:      engine,
		transport:   transport,
	}
	s.Loader = NewHistoryLoader(engine, pageSize, func(page, size int) ([]Message, bool, error) {
		return transport.DialogHistory(otherUserID, page, size)
	})
	return s
}

// NewGroupSession создает сессию группового разговора
func NewGroupSession(baseURL, token string, selfID, groupID int64, pageSize int) *Session {
	engine := NewEngine(selfID)
	transport := NewTransport(baseURL, token)
	s := &Session{
		SelfID:    selfID,
		GroupID:   groupID,
		Engine:    engine,
		transport: transport,
	}
	s.Loader = NewHistoryLoader(engine, pageSize, func(page, size int) ([]Message, bool, error) {
		return transport.GroupHistory(groupID, page, size)
	})
	return s
}

// relevant проверяет, относится ли событие к разговору этой сессии
func (s *Session) relevant(ev Event) bool {
	if s.GroupID > 0 {
		return ev.GroupID == s.GroupID
	}
	a, b := s.SelfID, s.OtherUserID
	if a > b {
		a, b = b, a
	}
	return ev.GroupID == 0 && ev.UserA == a && ev.UserB == b
}

// Send добавляет оптимистичную запись и выполняет сетевую отправку.
// Неудача самого вызова откатывает запись; последующие сбои доставки
// у других получателей представление отправителя не затрагивают.
func (s *Session) Send(text string) error {
	local := s.Engine.SendLocal(text)
	var err error
	if s.GroupID > 0 {
		err = s.transport.SendGroup(s.GroupID, text, local.CorrelationToken)
	} else {
		err = s.transport.SendDirect(s.OtherUserID, text, local.CorrelationToken)
	}
	if err != nil {
		s.Engine.Rollback(local.CorrelationToken)
		return err
	}
	return nil
}

// Run держит соединение доставки: подключение, перечитывание первой
// страницы истории и чтение событий, с переподключением после обрыва.
// Пропуски после обрыва точечно не закрываются - перечитывается окно
// страницы 1.
func (s *Session) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.transport.Dial(); err != nil {
			log.Printf("connect failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}
		if err := s.Loader.LoadInitial(); err != nil {
			log.Printf("history reload failed: %v", err)
		}
		err := s.transport.ReadPump(func(ev Event) {
			if s.relevant(ev) {
				s.Engine.HandleEvent(ev)
			}
		})
		s.transport.Close()
		log.Printf("connection lost: %v", err)
	}
}

// Close закрывает соединение доставки
func (s *Session) Close() {
	s.transport.Close()
}
