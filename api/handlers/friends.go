package handlers

import (
	"context"
	"net/http"
	"strconv"

	"messenger/services"

	"github.com/gin-gonic/gin"
)

var friendService = services.NewFriendService()

// SendFriendRequest - обработчик создания заявки в друзья
func SendFriendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		ReceiverID int64  `json:"receiver_id" binding:"required"`
		Message    string `json:"message"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	request, err := friendService.SendRequest(c.Request.Context(), userID, r.ReceiverID, r.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request})
}

// AcceptFriendRequest - обработчик принятия заявки
func AcceptFriendRequest(c *gin.Context) {
	respondToRequest(c, friendService.AcceptRequest)
}

// RejectFriendRequest - обработчик отклонения заявки
func RejectFriendRequest(c *gin.Context) {
	respondToRequest(c, friendService.RejectRequest)
}

// CancelFriendRequest - обработчик отзыва заявки отправителем
func CancelFriendRequest(c *gin.Context) {
	respondToRequest(c, friendService.CancelRequest)
}

func respondToRequest(c *gin.Context, action func(ctx context.Context, requestID, actingUserID int64) error) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		RequestID int64 `json:"request_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := action(c.Request.Context(), r.RequestID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// RemoveFriend - обработчик удаления дружбы
func RemoveFriend(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		FriendID int64 `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := friendService.RemoveFriend(c.Request.Context(), userID, r.FriendID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend deleted"})
}

// GetFriendshipStatus - текущее состояние пары для клиентского UI
func GetFriendshipStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	status, serr := friendService.GetStatus(c.Request.Context(), userID, otherID)
	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetPendingRequests - входящие pending-заявки
func GetPendingRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := friendService.GetPendingRequests(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// GetSentRequests - исходящие pending-заявки
func GetSentRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	requests, err := friendService.GetSentRequests(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
