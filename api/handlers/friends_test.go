package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"messenger/models"
	"messenger/services"

	"github.com/stretchr/testify/assert"
)

func TestFriendRequestLifecycle(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, resp := doJSON(t, router, alice, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": bob, "message": "hi"})
	assert.Equal(t, http.StatusOK, code)
	reqID := requestID(t, resp)

	// Заявка видна получателю во входящих, отправителю - в исходящих
	code, resp = doJSON(t, router, bob, "GET", "/api/v1/friends/requests", nil)
	assert.Equal(t, http.StatusOK, code)
	var incoming []models.FriendRequest
	assert.NoError(t, json.Unmarshal(resp["requests"], &incoming))
	assert.Len(t, incoming, 1)
	assert.Equal(t, reqID, incoming[0].ID)

	code, resp = doJSON(t, router, alice, "GET", "/api/v1/friends/sent", nil)
	assert.Equal(t, http.StatusOK, code)
	var outgoing []models.FriendRequest
	assert.NoError(t, json.Unmarshal(resp["requests"], &outgoing))
	assert.Len(t, outgoing, 1)

	code, _ = doJSON(t, router, bob, "POST", "/api/v1/friends/accept",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusOK, code)

	code, resp = doJSON(t, router, alice, "GET", fmt.Sprintf("/api/v1/friends/status/%d", bob), nil)
	assert.Equal(t, http.StatusOK, code)
	var status services.PairStatus
	assert.NoError(t, json.Unmarshal(resp["status"], &status))
	assert.Equal(t, services.StateFriends, status.State)
}

func TestAcceptByWrongUserForbidden(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, resp := doJSON(t, router, alice, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": bob})
	assert.Equal(t, http.StatusOK, code)
	reqID := requestID(t, resp)

	// Принять может только получатель
	code, _ = doJSON(t, router, alice, "POST", "/api/v1/friends/accept",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestDoubleAcceptConflictStatus(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, resp := doJSON(t, router, alice, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": bob})
	assert.Equal(t, http.StatusOK, code)
	reqID := requestID(t, resp)

	code, _ = doJSON(t, router, bob, "POST", "/api/v1/friends/accept",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, router, bob, "POST", "/api/v1/friends/accept",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusConflict, code)
}

func TestDuplicateRequestConflictStatus(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, _ := doJSON(t, router, alice, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": bob})
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, router, bob, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": alice})
	assert.Equal(t, http.StatusConflict, code)
}

func TestCancelRequest(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, resp := doJSON(t, router, alice, "POST", "/api/v1/friends/request",
		map[string]any{"receiver_id": bob})
	assert.Equal(t, http.StatusOK, code)
	reqID := requestID(t, resp)

	code, _ = doJSON(t, router, bob, "POST", "/api/v1/friends/cancel",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = doJSON(t, router, alice, "POST", "/api/v1/friends/cancel",
		map[string]any{"request_id": reqID})
	assert.Equal(t, http.StatusOK, code)
}

func TestRemoveFriendNotFoundStatus(t *testing.T) {
	router := setupRouter(t)
	alice := createTestUser(t)
	bob := createTestUser(t)

	code, _ := doJSON(t, router, alice, "POST", "/api/v1/friends/remove",
		map[string]any{"friend_id": bob})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	router := setupRouter(t)

	// Без заголовков аутентификации запрос не доходит до обработчика
	code := doRaw(t, router, "GET", "/api/v1/friends/requests")
	assert.Equal(t, http.StatusUnauthorized, code)
}
