package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"cinematch/backend/internal/database"
	"cinematch/backend/internal/handlers"
	"cinematch/backend/internal/match"
	"cinematch/backend/internal/notify"
	"cinematch/backend/internal/websocket"
	"cinematch/backend/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Matches    *match.Service
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := websocket.NewHub()
	go hub.Run()

	// Диспетчер событий: публикация в Redis Pub/Sub, слушатель раздает
	// события локальным сессиям hub'а
	dispatcher := notify.NewDispatcher(hub, rdb)
	dispatcher.Run(context.Background())

	matches := match.NewService(dbConn, dispatcher)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	userH := handlers.NewUserHandler(dbConn)
	movieH := handlers.NewMovieHandler(dbConn)
	matchH := handlers.NewMatchHandler(dbConn, matches)
	roomH := handlers.NewRoomHandler(dbConn, hub)
	msgH := handlers.NewMessageHandler(dbConn, hub)
	httpMsgH := handlers.NewHTTPMessageHandler(dbConn)
	wsH := handlers.NewWebSocketHandler(hub, dbConn, msgH)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, userH, movieH, matchH, roomH, httpMsgH, wsH)

	return &Server{
		Router:     router,
		DB:         dbConn,
		Redis:      rdb,
		JWTManager: jwtMgr,
		Hub:        hub,
		Matches:    matches,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
