package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"messenger/db"
	"messenger/models"
	apperr "messenger/pkg/errors"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

// UserService - минимальный коллаборатор идентичности: регистрация,
// логин с opaque-токеном в user_tokens и проверка токена.
// Остальной пользовательский CRUD - внешняя забота.
type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func hashPassword(password string, salt []byte) string {
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash)
}

func (s *UserService) Register(ctx context.Context, nickname, password string) (*models.User, error) {
	if nickname == "" || password == "" {
		return nil, apperr.InvalidArg("nickname and password are required")
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("nickname = ?", nickname).
		Count(&alreadyExists).Error
	if err != nil {
		return nil, apperr.Internal("error checking user", err)
	}
	if alreadyExists > 0 {
		return nil, apperr.Conflict("user already exists")
	}

	salt := make([]byte, 16)
	if _, err = rand.Read(salt); err != nil {
		return nil, apperr.Internal("failed to generate salt", err)
	}

	user := &models.User{
		Nickname:  nickname,
		Password:  hashPassword(password, salt),
		CreatedAt: time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, nickname, password string) (int64, string, error) {
	var storedUser models.User
	err := db.GetReadOnlyDB(ctx).Where("nickname = ?", nickname).First(&storedUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", apperr.Unauthorized("invalid credentials")
		}
		return 0, "", apperr.Internal("failed to load user", err)
	}

	parts := strings.Split(storedUser.Password, "$")
	if len(parts) != 2 {
		return 0, "", apperr.Internal("invalid password format", nil)
	}
	storedSalt, err := hex.DecodeString(parts[0])
	if err != nil {
		return 0, "", apperr.Internal("invalid password salt", err)
	}
	if hashPassword(password, storedSalt) != storedUser.Password {
		return 0, "", apperr.Unauthorized("invalid credentials")
	}

	// Старые токены вытесняются новым логином
	_ = s.Logout(ctx, storedUser.ID)

	tokenBytes := make([]byte, 32)
	if _, err = rand.Read(tokenBytes); err != nil {
		return 0, "", apperr.Internal("failed to generate token", err)
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserToken{
		UserID: storedUser.ID,
		Token:  token,
	}).Error
	if err != nil {
		return 0, "", apperr.Internal("failed to store token", err)
	}
	return storedUser.ID, token, nil
}

func (s *UserService) Logout(ctx context.Context, userID int64) error {
	err := db.GetWriteDB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserToken{}).Error
	if err != nil {
		return apperr.Internal("failed to delete tokens", err)
	}
	return nil
}

// ResolveToken возвращает id пользователя по токену
func (s *UserService) ResolveToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperr.Unauthorized("token is empty")
	}
	var userToken models.UserToken
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.Unauthorized("invalid token")
		}
		return 0, apperr.Internal("failed to resolve token", err)
	}
	return userToken.UserID, nil
}
