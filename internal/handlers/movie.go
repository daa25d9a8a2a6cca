package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinematch/backend/internal/database"
	"cinematch/backend/internal/middleware"
	"cinematch/backend/internal/models"
)

// MovieHandler — лайки фильмов. Метаданные фильмов сервис не трогает,
// работает только с внешними ID.
type MovieHandler struct {
	db *database.Database
}

func NewMovieHandler(db *database.Database) *MovieHandler {
	return &MovieHandler{db: db}
}

// LikeMovie сохраняет лайк фильма :id; повторный лайк — no-op
func (h *MovieHandler) LikeMovie(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	movieID := c.Param("id")
	if movieID == "" || len(movieID) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	like := &models.MovieLike{UserID: userID, MovieID: movieID}
	if err := h.db.SaveLike(like); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like movie"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "movie liked"})
}

// UnlikeMovie убирает лайк с фильма :id
func (h *MovieHandler) UnlikeMovie(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	movieID := c.Param("id")

	if err := h.db.RemoveLike(userID, movieID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unlike movie"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "movie unliked"})
}

// GetMyLikes — список лайкнутых фильмов текущего пользователя
func (h *MovieHandler) GetMyLikes(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	likes, err := h.db.GetUserLikes(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get likes"})
		return
	}

	result := make([]gin.H, len(likes))
	for i, like := range likes {
		result[i] = gin.H{
			"movie_id":   like.MovieID,
			"created_at": like.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"likes": result})
}
