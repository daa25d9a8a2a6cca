package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"cinematch/backend/internal/handlers"
	"cinematch/backend/internal/middleware"
	jwtauth "cinematch/backend/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *jwtauth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	movieH *handlers.MovieHandler,
	matchH *handlers.MatchHandler,
	roomH *handlers.RoomHandler,
	msgH *handlers.HTTPMessageHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", authH.Logout)
	}

	// WebSocket (токен в query)
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		users := api.Group("/users")
		{
			users.GET("/me", userH.GetMe)
			users.PUT("/me", userH.UpdateMe)
			users.GET("/search", userH.SearchUsers)
			users.GET("/:id", userH.GetUser)
		}

		movies := api.Group("/movies")
		{
			movies.GET("/likes", movieH.GetMyLikes)
			movies.POST("/:id/like", movieH.LikeMovie)
			movies.DELETE("/:id/like", movieH.UnlikeMovie)
		}

		matches := api.Group("/matches")
		{
			matches.GET("/candidates", matchH.GetCandidates)
			matches.GET("/requests", matchH.GetIncomingRequests)
			matches.POST("/requests", matchH.SubmitRequest)
			matches.DELETE("/requests/:id", matchH.WithdrawRequest)
			matches.POST("/requests/:id/decline", matchH.DeclineRequest)
			matches.GET("/status/:id", matchH.GetStatus)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomH.GetMyRooms)
			rooms.GET("/:id", roomH.GetRoom)
			rooms.POST("/:id/leave", roomH.LeaveRoom)
			rooms.GET("/:id/messages", msgH.GetRoomMessages)
			rooms.POST("/:id/messages", msgH.SendMessage)
		}

		messages := api.Group("/messages")
		{
			messages.PUT("/:id", msgH.UpdateMessage)
			messages.DELETE("/:id", msgH.DeleteMessage)
		}
	}
}
