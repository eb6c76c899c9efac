package handlers

import (
	"log"
	"net/http"

	"messenger/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler - WebSocket endpoint доставки сообщений. Требует успешной
// аутентификации до апгрейда. Новое соединение безусловно замещает
// старое в реестре; при закрытии запись снимается только если она все
// еще наша (compare-and-remove), чтобы не выбить успевший переподключиться
// более новый коннект.
func WSHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	services.GlobalConnRegistry.Add(userID.(int64), conn)
	defer services.GlobalConnRegistry.Remove(userID.(int64), conn)

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected"}`))

	// Входящие кадры не несут команд: отправка идет через HTTP API.
	// Читаем только чтобы заметить закрытие соединения.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
