package models

import (
	"github.com/google/uuid"
	"time"
)

// MatchRequest — односторонняя заявка на матч. Уникальный индекс по
// направленной паре: у пользователя не больше одной активной заявки
// к конкретному адресату. Запись удаляется при взаимном матче или отзыве.
type MatchRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_requester_target,priority:1"`
	TargetID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_requester_target,priority:2;check:chk_no_self_request,target_id <> requester_id"`
	CreatedAt   time.Time

	Requester User `gorm:"foreignKey:RequesterID"`
	Target    User `gorm:"foreignKey:TargetID"`
}
