package database

import (
	"errors"
	"time"

	"cinematch/backend/internal/match"
	"cinematch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateRequest сохраняет заявку requester -> target. Дубль направленной
// пары отсекается уникальным индексом и возвращается как ErrRequestExists.
func (d *Database) CreateRequest(requesterID, targetID uuid.UUID) error {
	req := &models.MatchRequest{
		RequesterID: requesterID,
		TargetID:    targetID,
		CreatedAt:   time.Now(),
	}

	if err := d.db.Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return match.ErrRequestExists
		}
		return err
	}
	return nil
}

func (d *Database) HasPendingRequest(requesterID, targetID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.MatchRequest{}).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteRequest удаляет одну направленную заявку (отзыв или отклонение).
func (d *Database) DeleteRequest(requesterID, targetID uuid.UUID) (bool, error) {
	res := d.db.
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Delete(&models.MatchRequest{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncomingRequests — входящие заявки пользователя, новые первыми.
func (d *Database) IncomingRequests(targetID uuid.UUID) ([]models.MatchRequest, error) {
	var requests []models.MatchRequest
	err := d.db.
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Preload("Requester").
		Find(&requests).Error
	return requests, err
}
