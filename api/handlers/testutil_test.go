package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"messenger/api/middleware"
	"messenger/db"
	"messenger/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter поднимает SQLite в памяти и маршруты с тестовой аутентификацией
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = database.AutoMigrate(
		&models.User{},
		&models.UserToken{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Message{},
		&models.Group{},
		&models.GroupMember{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.ORM = database

	router := gin.New()
	api := router.Group("/api/v1", middleware.TestAuthMiddleware())
	api.POST("/friends/request", SendFriendRequest)
	api.POST("/friends/accept", AcceptFriendRequest)
	api.POST("/friends/reject", RejectFriendRequest)
	api.POST("/friends/cancel", CancelFriendRequest)
	api.POST("/friends/remove", RemoveFriend)
	api.GET("/friends/status/:user_id", GetFriendshipStatus)
	api.GET("/friends/requests", GetPendingRequests)
	api.GET("/friends/sent", GetSentRequests)
	api.POST("/dialog/:user_id/send", SendMessageHandler)
	api.GET("/dialog/:user_id/list", ListDialogHandler)
	api.POST("/dialog/:user_id/read", MarkDialogReadHandler)
	api.DELETE("/messages/:id", DeleteMessageHandler)
	return router
}

func createTestUser(t *testing.T) int64 {
	t.Helper()
	user := &models.User{
		Nickname:  gofakeit.Username() + gofakeit.DigitN(4),
		Password:  "irrelevant",
		CreatedAt: time.Now(),
	}
	if err := db.ORM.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user.ID
}

// doJSON выполняет запрос от имени userID и декодирует JSON-ответ
func doJSON(t *testing.T, router *gin.Engine, userID int64, method, path string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", fmt.Sprintf("%d", userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]json.RawMessage
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, resp
}

// doRaw выполняет запрос без аутентификации и возвращает только код ответа
func doRaw(t *testing.T, router *gin.Engine, method, path string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func requestID(t *testing.T, resp map[string]json.RawMessage) int64 {
	t.Helper()
	var request models.FriendRequest
	if err := json.Unmarshal(resp["request"], &request); err != nil {
		t.Fatalf("failed to decode friend request: %v", err)
	}
	return request.ID
}
