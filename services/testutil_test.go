package services

import (
	"testing"
	"time"

	"messenger/db"
	"messenger/models"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB инициализирует тестовую базу данных SQLite в памяти
func setupTestDB(t *testing.T) {
	t.Helper()

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
}

// createTestUser создает пользователя с фейковым никнеймом и возвращает его id
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

func dbFirstRequest(out *models.FriendRequest, id int64) error {
	return db.ORM.First(out, id).Error
}

// makeFriends доводит пару до состояния дружбы через обычный цикл заявки
func makeFriends(t *testing.T, fs *FriendService, a, b int64) {
	t.Helper()
	request, err := fs.SendRequest(testCtx(), a, b, "")
	if err != nil {
		t.Fatalf("failed to send friend request: %v", err)
	}
	if err := fs.AcceptRequest(testCtx(), request.ID, b); err != nil {
		t.Fatalf("failed to accept friend request: %v", err)
	}
}
