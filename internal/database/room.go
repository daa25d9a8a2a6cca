package database

import (
	"errors"
	"time"

	"cinematch/backend/internal/match"
	"cinematch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveRoom возвращает комнату пары, в которой оба участника активны.
func (d *Database) ActiveRoom(userA, userB uuid.UUID) (uuid.UUID, bool, error) {
	var room models.Room
	err := d.db.
		Joins("JOIN room_members m1 ON m1.room_id = rooms.id AND m1.user_id = ? AND m1.active", userA).
		Joins("JOIN room_members m2 ON m2.room_id = rooms.id AND m2.user_id = ? AND m2.active", userB).
		Where("rooms.pair_key = ?", models.PairKey(userA, userB)).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return room.ID, true, nil
}

// Consummate атомарно превращает встречные заявки во взаимный матч:
// комната, два участия и удаление обеих заявок — одна транзакция.
// Параллельная консумация той же пары упирается в уникальный pair_key;
// проигравший получает ErrAlreadyMatched и перечитывает состояние.
func (d *Database) Consummate(userA, userB uuid.UUID) (uuid.UUID, error) {
	now := time.Now()
	room := &models.Room{
		PairKey:   models.PairKey(userA, userB),
		Type:      "direct",
		CreatedAt: now,
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}

		members := []models.RoomMember{
			{RoomID: room.ID, UserID: userA, JoinedAt: now, Active: true},
			{RoomID: room.ID, UserID: userB, JoinedAt: now, Active: true},
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}

		return deletePairRequests(tx, userA, userB)
	})
	if err == nil {
		return room.ID, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return uuid.Nil, err
	}

	// Комната пары уже существует. Либо её только что создал встречный
	// вызов (оба активны), либо пара расходилась и матчится заново —
	// тогда по свежим встречным заявкам оживляем старую комнату,
	// второй комнаты на пару не бывает.
	if _, active, err := d.ActiveRoom(userA, userB); err != nil {
		return uuid.Nil, err
	} else if active {
		return uuid.Nil, match.ErrAlreadyMatched
	}

	return d.reviveRoom(userA, userB)
}

// reviveRoom реактивирует участия существующей комнаты пары и удаляет
// встречные заявки. История сообщений сохраняется.
func (d *Database) reviveRoom(userA, userB uuid.UUID) (uuid.UUID, error) {
	var room models.Room
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pair_key = ?", models.PairKey(userA, userB)).First(&room).Error; err != nil {
			return err
		}

		err := tx.Model(&models.RoomMember{}).
			Where("room_id = ? AND user_id IN ?", room.ID, []uuid.UUID{userA, userB}).
			Update("active", true).Error
		if err != nil {
			return err
		}

		return deletePairRequests(tx, userA, userB)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return room.ID, nil
}

func deletePairRequests(tx *gorm.DB, userA, userB uuid.UUID) error {
	return tx.
		Where("(requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)",
			userA, userB, userB, userA).
		Delete(&models.MatchRequest{}).Error
}

func (d *Database) GetRoom(id string) (*models.Room, error) {
	var room models.Room
	err := d.db.
		Preload("Members").
		Preload("Members.User").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetUserRooms — комнаты, в которых пользователь активен.
func (d *Database) GetUserRooms(userID uuid.UUID) ([]models.Room, error) {
	var rooms []models.Room
	err := d.db.
		Joins("JOIN room_members rm ON rm.room_id = rooms.id").
		Where("rm.user_id = ? AND rm.active", userID).
		Preload("Members").
		Preload("Members.User").
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// IsActiveMember проверяет активное участие пользователя в комнате.
func (d *Database) IsActiveMember(roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ? AND active", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LeaveRoom помечает участие неактивным; комната и история остаются.
func (d *Database) LeaveRoom(roomID, userID uuid.UUID) error {
	res := d.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
