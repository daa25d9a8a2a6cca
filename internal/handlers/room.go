package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinematch/backend/internal/database"
	"cinematch/backend/internal/middleware"
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/websocket"
)

// RoomHandler — чтение комнат и выход из них. Создавать комнаты напрямую
// нельзя: комната появляется только как результат взаимного матча.
type RoomHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// GetMyRooms получает список комнат пользователя
func (h *RoomHandler) GetMyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	rooms, err := h.db.GetUserRooms(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get rooms"})
		return
	}

	roomsResponse := make([]gin.H, len(rooms))
	for i, room := range rooms {
		roomResponse := formatRoomResponse(&room, userID)

		// Последнее сообщение для превью
		if last, err := h.db.LastRoomMessage(room.ID); err == nil {
			roomResponse["last_message"] = gin.H{
				"id":         last.ID,
				"content":    last.Content,
				"user_id":    last.UserID,
				"created_at": last.CreatedAt,
			}
		}

		roomResponse["online_count"] = len(h.hub.GetRoomUsers(room.ID))

		roomsResponse[i] = roomResponse
	}

	c.JSON(http.StatusOK, gin.H{"rooms": roomsResponse})
}

// GetRoom получает информацию о конкретной комнате
func (h *RoomHandler) GetRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if !isActiveMember(room, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}

	response := formatRoomResponse(room, userID)
	response["online_users"] = h.hub.GetRoomUsers(room.ID)

	c.JSON(http.StatusOK, response)
}

// LeaveRoom помечает участие неактивным. История остается; вернуться в
// комнату можно только новым взаимным матчем той же пары.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	if ok, err := h.db.IsActiveMember(roomID, userID); err != nil || !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this room"})
		return
	}

	if err := h.db.LeaveRoom(roomID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left room successfully"})
}

func isActiveMember(room *models.Room, userID uuid.UUID) bool {
	for _, member := range room.Members {
		if member.UserID == userID && member.Active {
			return true
		}
	}
	return false
}

// formatRoomResponse форматирует ответ для комнаты
func formatRoomResponse(room *models.Room, viewerID uuid.UUID) gin.H {
	members := make([]gin.H, len(room.Members))
	var other gin.H
	for i, member := range room.Members {
		info := gin.H{
			"id":         member.User.ID,
			"username":   member.User.Username,
			"avatar_url": member.User.AvatarURL,
			"active":     member.Active,
			"joined_at":  member.JoinedAt,
		}
		members[i] = info
		if member.UserID != viewerID {
			other = info
		}
	}

	return gin.H{
		"id":         room.ID,
		"type":       room.Type,
		"created_at": room.CreatedAt,
		"members":    members,
		"other_user": other,
	}
}
