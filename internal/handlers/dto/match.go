package dto

import (
	"github.com/google/uuid"

	"cinematch/backend/internal/match"
)

// SubmitMatchRequest — тело POST /matches/requests
type SubmitMatchRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// MatchResult — синхронный ответ на заявку. RoomID приходит только
// когда матч взаимный.
type MatchResult struct {
	Matched bool       `json:"matched"`
	RoomID  *uuid.UUID `json:"room_id,omitempty"`
}

// CandidateResponse — кандидат из выдачи пересечения лайков
// с проекцией статуса пары.
type CandidateResponse struct {
	UserID      uuid.UUID    `json:"user_id"`
	Username    string       `json:"username"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	SharedLikes int          `json:"shared_likes"`
	Status      match.Status `json:"status"`
}
