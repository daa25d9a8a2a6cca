package database

import (
	"errors"
	"os"

	"cinematch/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	// TranslateError нужен, чтобы нарушение уникальных ограничений
	// (направленная пара заявки, pair_key комнаты) приходило как
	// gorm.ErrDuplicatedKey, а не как сырая ошибка драйвера.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.MovieLike{},
		&models.MatchRequest{},
		&models.Room{},
		&models.RoomMember{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	d.db = db

	return nil
}
