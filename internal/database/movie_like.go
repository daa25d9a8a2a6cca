package database

import (
	"cinematch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// SaveLike сохраняет лайк фильма; повторный лайк того же фильма — no-op.
func (d *Database) SaveLike(like *models.MovieLike) error {
	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

func (d *Database) RemoveLike(userID uuid.UUID, movieID string) error {
	return d.db.
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.MovieLike{}).Error
}

func (d *Database) GetUserLikes(userID uuid.UUID) ([]models.MovieLike, error) {
	var likes []models.MovieLike
	err := d.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&likes).Error
	return likes, err
}

// Candidate — пользователь с пересечением лайков с viewer'ом.
type Candidate struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AvatarURL   string    `json:"avatar_url"`
	SharedLikes int       `json:"shared_likes"`
}

// SharedLikeCandidates считает пересечение лайков viewer'а с остальными
// пользователями. Протокол матча это пересечение не вычисляет — он только
// потребляет готовые кортежи (viewer, candidate, shared_likes).
func (d *Database) SharedLikeCandidates(viewerID uuid.UUID, limit int) ([]Candidate, error) {
	var candidates []Candidate
	err := d.db.Raw(`
		SELECT u.id AS user_id, u.username, u.avatar_url, COUNT(*) AS shared_likes
		FROM movie_likes mine
		JOIN movie_likes theirs ON theirs.movie_id = mine.movie_id AND theirs.user_id <> mine.user_id
		JOIN users u ON u.id = theirs.user_id
		WHERE mine.user_id = ?
		GROUP BY u.id, u.username, u.avatar_url
		ORDER BY shared_likes DESC, u.id
		LIMIT ?`, viewerID, limit).
		Scan(&candidates).Error
	return candidates, err
}
