package repository

import (
	"GachaSync/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 库表不存在则自动创建
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.GameVersion{},
		&model.Banner{},
		&model.GameEvent{},
		&model.SyncRun{},
	)
}
