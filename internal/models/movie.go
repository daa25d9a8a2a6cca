package models

import (
	"github.com/google/uuid"
	"time"
)

// MovieLike — лайк фильма пользователем. Составной первичный ключ
// гарантирует не больше одной записи на пару (пользователь, фильм).
// Сами метаданные фильмов сервис не хранит, только внешний ID.
type MovieLike struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	MovieID   string    `gorm:"size:64;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
