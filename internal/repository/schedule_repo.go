package repository

import (
	"context"

	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 冲突时覆盖的列（id/created_at 保持不变）
var (
	bannerUpdateColumns  = []string{"banner_type", "featured_character", "start_date", "end_date", "image_url", "rarity", "updated_at"}
	versionUpdateColumns = []string{"release_date", "description", "updated_at"}
)

type scheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) interfaces.ScheduleStore {
	return &scheduleRepository{db: db}
}

// UpsertBanner 按 (game, name) upsert，并回填已存在行的id
func (r *scheduleRepository) UpsertBanner(ctx context.Context, b *model.Banner) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns(bannerUpdateColumns),
	}).Create(b).Error; err != nil {
		return &PersistenceError{Op: "upsert", Table: "banners", Key: b.Name, Err: err}
	}
	if err := r.db.WithContext(ctx).Model(&model.Banner{}).
		Where("game = ? AND name = ?", b.Game, b.Name).
		Select("id").Scan(&b.ID).Error; err != nil {
		return &PersistenceError{Op: "select", Table: "banners", Key: b.Name, Err: err}
	}
	return nil
}

// UpsertVersion 按 (game, version_number) upsert
func (r *scheduleRepository) UpsertVersion(ctx context.Context, v *model.GameVersion) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game"}, {Name: "version_number"}},
		DoUpdates: clause.AssignmentColumns(versionUpdateColumns),
	}).Create(v).Error; err != nil {
		return &PersistenceError{Op: "upsert", Table: "game_versions", Key: v.VersionNumber, Err: err}
	}
	if err := r.db.WithContext(ctx).Model(&model.GameVersion{}).
		Where("game = ? AND version_number = ?", v.Game, v.VersionNumber).
		Select("id").Scan(&v.ID).Error; err != nil {
		return &PersistenceError{Op: "select", Table: "game_versions", Key: v.VersionNumber, Err: err}
	}
	return nil
}

// SaveBanner 带id按主键覆盖（可改名），否则按自然键upsert
func (r *scheduleRepository) SaveBanner(ctx context.Context, b *model.Banner) error {
	if b.ID == "" {
		return r.UpsertBanner(ctx, b)
	}
	if err := saveByID(r.db.WithContext(ctx), b, b.ID); err != nil {
		return &PersistenceError{Op: "save", Table: "banners", Key: b.ID, Err: err}
	}
	return nil
}

func (r *scheduleRepository) SaveVersion(ctx context.Context, v *model.GameVersion) error {
	if v.ID == "" {
		return r.UpsertVersion(ctx, v)
	}
	if err := saveByID(r.db.WithContext(ctx), v, v.ID); err != nil {
		return &PersistenceError{Op: "save", Table: "game_versions", Key: v.ID, Err: err}
	}
	return nil
}

// SaveEvent 无id时新建
func (r *scheduleRepository) SaveEvent(ctx context.Context, e *model.GameEvent) error {
	db := r.db.WithContext(ctx)
	var err error
	if e.ID == "" {
		err = db.Create(e).Error
	} else {
		err = saveByID(db, e, e.ID)
	}
	if err != nil {
		return &PersistenceError{Op: "save", Table: "events", Key: e.EventName, Err: err}
	}
	return nil
}

// saveByID 按id整行覆盖，created_at保持首次写入的值；id不存在时新建。
// 写入后回读整行，调用方拿到的是库里的时间戳
func saveByID(db *gorm.DB, row any, id string) error {
	res := db.Model(row).Select("*").Omit("id", "created_at").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if err := db.Create(row).Error; err != nil {
			return err
		}
	}
	return db.Take(row, "id = ?", id).Error
}

// DeleteBanner id不存在时不报错
func (r *scheduleRepository) DeleteBanner(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &model.Banner{}, "banners", id)
}

func (r *scheduleRepository) DeleteVersion(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &model.GameVersion{}, "game_versions", id)
}

func (r *scheduleRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &model.GameEvent{}, "events", id)
}

func (r *scheduleRepository) deleteByID(ctx context.Context, value any, table, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(value).Error; err != nil {
		return &PersistenceError{Op: "delete", Table: table, Key: id, Err: err}
	}
	return nil
}

// ListBanners 按开始时间正序
func (r *scheduleRepository) ListBanners(ctx context.Context, game model.Game) ([]*model.Banner, error) {
	var banners []*model.Banner
	if err := r.db.WithContext(ctx).Where("game = ?", game).
		Order("start_date ASC").Order("name ASC").Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

// ListVersions 按上线时间倒序
func (r *scheduleRepository) ListVersions(ctx context.Context, game model.Game) ([]*model.GameVersion, error) {
	var versions []*model.GameVersion
	if err := r.db.WithContext(ctx).Where("game = ?", game).
		Order("release_date DESC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// ListEvents 按开始时间正序
func (r *scheduleRepository) ListEvents(ctx context.Context, game model.Game) ([]*model.GameEvent, error) {
	var events []*model.GameEvent
	if err := r.db.WithContext(ctx).Where("game = ?", game).
		Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
