package routes

import (
	"messenger/api/handlers"
	"messenger/api/middleware"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/register", handlers.Register)
		publicEndpoints.POST("auth/login", handlers.Login)
	}

	authEndpoints := router.Group("/api/v1/")
	authEndpoints.Use(middleware.AuthMiddleware())
	{
		authEndpoints.POST("auth/logout", handlers.Logout)

		// Друзья
		authEndpoints.POST("friends/request", handlers.SendFriendRequest)
		authEndpoints.POST("friends/accept", handlers.AcceptFriendRequest)
		authEndpoints.POST("friends/reject", handlers.RejectFriendRequest)
		authEndpoints.POST("friends/cancel", handlers.CancelFriendRequest)
		authEndpoints.POST("friends/remove", handlers.RemoveFriend)
		authEndpoints.GET("friends/status/:user_id", handlers.GetFriendshipStatus)
		authEndpoints.GET("friends/requests", handlers.GetPendingRequests)
		authEndpoints.GET("friends/sent", handlers.GetSentRequests)

		// Диалоги
		authEndpoints.POST("dialog/:user_id/send", handlers.SendMessageHandler)
		authEndpoints.GET("dialog/:user_id/list", handlers.ListDialogHandler)
		authEndpoints.POST("dialog/:user_id/read", handlers.MarkDialogReadHandler)
		authEndpoints.GET("dialog/:user_id/unread", handlers.UnreadCountHandler)
		authEndpoints.DELETE("messages/:id", handlers.DeleteMessageHandler)

		// Группы
		authEndpoints.POST("groups/create", handlers.CreateGroupHandler)
		authEndpoints.POST("groups/:id/join", handlers.JoinGroupHandler)
		authEndpoints.POST("groups/:id/leave", handlers.LeaveGroupHandler)
		authEndpoints.GET("groups/:id/members", handlers.GroupMembersHandler)
		authEndpoints.POST("groups/:id/send", handlers.SendGroupMessageHandler)
		authEndpoints.GET("groups/:id/list", handlers.ListGroupHistoryHandler)

		// Доставка в реальном времени
		authEndpoints.GET("ws", handlers.WSHandler)
	}
	return authEndpoints
}
