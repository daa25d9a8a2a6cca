package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinematch/backend/internal/database"
	"cinematch/backend/internal/handlers/dto"
	"cinematch/backend/internal/match"
	"cinematch/backend/internal/middleware"
)

type MatchHandler struct {
	db      *database.Database
	matches *match.Service
}

func NewMatchHandler(db *database.Database, matches *match.Service) *MatchHandler {
	return &MatchHandler{db: db, matches: matches}
}

// SubmitRequest обрабатывает заявку на матч. Повтор своей же заявки —
// успешный no-op, встречная заявка — взаимный матч с room_id в ответе.
func (h *MatchHandler) SubmitRequest(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.SubmitMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	result, err := h.matches.SubmitRequest(userID, targetID)
	if err != nil {
		if err == match.ErrInvalidTarget {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process match request"})
		return
	}

	resp := dto.MatchResult{Matched: result.Matched}
	if result.Matched {
		roomID := result.RoomID
		resp.RoomID = &roomID
	}

	c.JSON(http.StatusOK, resp)
}

// WithdrawRequest отзывает собственную заявку к пользователю :id
func (h *MatchHandler) WithdrawRequest(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ok, err := h.matches.Withdraw(userID, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to withdraw request"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request withdrawn"})
}

// DeclineRequest отклоняет входящую заявку от пользователя :id
func (h *MatchHandler) DeclineRequest(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	fromID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ok, err := h.matches.Decline(userID, fromID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decline request"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request declined"})
}

// GetStatus возвращает проекцию состояния пары с пользователем :id
func (h *MatchHandler) GetStatus(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	candidateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	status, err := h.matches.StatusOf(userID, candidateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetIncomingRequests — входящие заявки текущего пользователя
func (h *MatchHandler) GetIncomingRequests(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	requests, err := h.db.IncomingRequests(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get requests"})
		return
	}

	result := make([]gin.H, len(requests))
	for i, req := range requests {
		result[i] = gin.H{
			"from_user": gin.H{
				"id":         req.Requester.ID,
				"username":   req.Requester.Username,
				"avatar_url": req.Requester.AvatarURL,
			},
			"created_at": req.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"requests": result})
}

// GetCandidates — пользователи с общими лайками и статусом пары.
// Пересечение считает хранилище, протокол матча получает готовый список.
func (h *MatchHandler) GetCandidates(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	candidates, err := h.db.SharedLikeCandidates(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get candidates"})
		return
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, cand := range candidates {
		ids[i] = cand.UserID
	}

	statuses, err := h.matches.StatusesOf(userID, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get candidates"})
		return
	}

	result := make([]dto.CandidateResponse, len(candidates))
	for i, cand := range candidates {
		result[i] = dto.CandidateResponse{
			UserID:      cand.UserID,
			Username:    cand.Username,
			AvatarURL:   cand.AvatarURL,
			SharedLikes: cand.SharedLikes,
			Status:      statuses[cand.UserID],
		}
	}

	c.JSON(http.StatusOK, gin.H{"candidates": result})
}
