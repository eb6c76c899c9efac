package handlers

import (
	"net/http"
	"strconv"
	"time"

	"messenger/api/middleware"
	"messenger/services"

	"github.com/gin-gonic/gin"
)

var messageService = services.NewMessageService()

// SendMessageHandler - отправка прямого сообщения пользователю.
// correlation_token - клиентский токен для сопоставления эха
// с оптимистичной локальной записью, сервер его не интерпретирует.
func SendMessageHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	toUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	var req struct {
		Text             string `json:"text" binding:"required"`
		CorrelationToken string `json:"correlation_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start := time.Now()
	msg, serr := messageService.SendDirect(c.Request.Context(), userID, toUserID, req.Text, req.CorrelationToken)
	status := "success"
	if serr != nil {
		status = "error"
	}
	middleware.RecordMessageOperation("send_direct", status, "messenger", time.Since(start))

	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ListDialogHandler - страница истории диалога от новых к старым
func ListDialogHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	start := time.Now()
	messages, hasMore, serr := messageService.GetDialogHistory(c.Request.Context(), userID, otherUserID, page, pageSize)
	status := "success"
	if serr != nil {
		status = "error"
	}
	middleware.RecordMessageOperation("list_dialog", status, "messenger", time.Since(start))

	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "has_more": hasMore})
}

// MarkDialogReadHandler - сброс счетчика непрочитанных в диалоге
func MarkDialogReadHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	messageService.MarkDialogRead(c.Request.Context(), userID, otherUserID)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// UnreadCountHandler - число непрочитанных в диалоге
func UnreadCountHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	count, serr := services.GetUnread(c.Request.Context(), userID, otherUserID)
	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// DeleteMessageHandler - удаление сообщения его отправителем
func DeleteMessageHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}
	if err := messageService.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
