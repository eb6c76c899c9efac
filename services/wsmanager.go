package services

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectedUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_connected_users",
	Help: "Number of users with a live WebSocket connection",
})

// PushConn - push-способное соединение. Удовлетворяется *websocket.Conn.
type PushConn interface {
	WriteMessage(messageType int, data []byte) error
}

// ConnRegistry - процессный реестр живых соединений: не более одного
// соединения на пользователя. Состояние эфемерно и восстанавливается
// переподключениями клиентов.
type ConnRegistry struct {
	mu    sync.RWMutex
	users map[int64]PushConn
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		users: make(map[int64]PushConn),
	}
}

// Add безусловно замещает предыдущее соединение пользователя
func (m *ConnRegistry) Add(userID int64, conn PushConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		connectedUsers.Inc()
	}
	m.users[userID] = conn
}

// Remove удаляет запись только если она все еще указывает на conn:
// медленный disconnect не должен выбить более новое соединение,
// успевшее встать на его место
func (m *ConnRegistry) Remove(userID int64, conn PushConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users[userID] == conn {
		delete(m.users, userID)
		connectedUsers.Dec()
	}
}

// Get возвращает текущее соединение пользователя. Отсутствие - не ошибка:
// push просто будет пропущен, сообщение доедет через историю.
func (m *ConnRegistry) Get(userID int64) (PushConn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.users[userID]
	return conn, ok
}

// Send пишет данные в соединение пользователя, если оно есть.
// Ошибки записи логируются и глотаются: доставка best-effort.
func (m *ConnRegistry) Send(userID int64, data []byte) {
	conn, ok := m.Get(userID)
	if !ok {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("push to user %d failed: %v", userID, err)
	}
}

var GlobalConnRegistry = NewConnRegistry()
