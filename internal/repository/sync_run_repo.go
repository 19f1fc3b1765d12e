package repository

import (
	"context"

	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"gorm.io/gorm"
)

// SyncRunRepository 同步审计记录
type SyncRunRepository struct {
	db *gorm.DB
}

var _ interfaces.SyncRunStore = (*SyncRunRepository)(nil)

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// SaveSyncRun 只追加
func (r *SyncRunRepository) SaveSyncRun(ctx context.Context, run *model.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return &PersistenceError{Op: "insert", Table: "sync_runs", Key: string(run.Game), Err: err}
	}
	return nil
}

// ListSyncRuns 最近的审计记录，limit<=0 时取20条
func (r *SyncRunRepository) ListSyncRuns(ctx context.Context, game model.Game, limit int) ([]*model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*model.SyncRun
	if err := r.db.WithContext(ctx).Where("game = ?", game).
		Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
