package handlers

import (
	"net/http"
	"strconv"

	"messenger/services"

	"github.com/gin-gonic/gin"
)

var groupService = services.NewGroupService()

// CreateGroupHandler - создание группы
func CreateGroupHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	group, err := groupService.CreateGroup(c.Request.Context(), userID, r.Title)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// JoinGroupHandler - вступление в группу
func JoinGroupHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	if err := groupService.JoinGroup(c.Request.Context(), groupID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined"})
}

// LeaveGroupHandler - выход из группы
func LeaveGroupHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	if err := groupService.LeaveGroup(c.Request.Context(), groupID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left"})
}

// GroupMembersHandler - плоский список участников группы
func GroupMembersHandler(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	members, serr := groupService.GetMembers(c.Request.Context(), groupID)
	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// SendGroupMessageHandler - отправка сообщения в группу
func SendGroupMessageHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
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
	msg, serr := messageService.SendGroup(c.Request.Context(), userID, groupID, req.Text, req.CorrelationToken)
	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ListGroupHistoryHandler - страница истории группы
func ListGroupHistoryHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	messages, hasMore, serr := messageService.GetGroupHistory(c.Request.Context(), userID, groupID, page, pageSize)
	if serr != nil {
		abortWithError(c, serr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "has_more": hasMore})
}
