package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Room создается ровно один раз на пару пользователей: уникальный индекс
// по pair_key — это и есть гарантия отсутствия дублей при гонках,
// независимо от числа инстансов сервиса.
type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PairKey   string    `gorm:"uniqueIndex;size:80;not null"`
	Type      string    `gorm:"not null;default:'direct'"`
	CreatedAt time.Time

	// Связи
	Members  []RoomMember `gorm:"foreignKey:RoomID"`
	Messages []Message    `gorm:"foreignKey:RoomID"`
}

// RoomMember — участие пользователя в комнате. Выход из комнаты
// снимает флаг Active, но запись (и история) сохраняется.
type RoomMember struct {
	RoomID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time
	Active   bool `gorm:"not null;default:true"`

	User User `gorm:"foreignKey:UserID"`
}

// PairKey нормализует неупорядоченную пару пользователей в строковый ключ.
// Направление заявок на результат не влияет: PairKey(a, b) == PairKey(b, a).
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if strings.Compare(as, bs) > 0 {
		as, bs = bs, as
	}
	return as + ":" + bs
}
