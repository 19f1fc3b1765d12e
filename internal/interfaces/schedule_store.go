package interfaces

import (
	"context"

	"GachaSync/internal/model"
)

// ScheduleStore 排期数据存储
type ScheduleStore interface {
	// UpsertBanner 冲突键 (game, name)，后写覆盖
	UpsertBanner(ctx context.Context, banner *model.Banner) error
	// UpsertVersion 冲突键 (game, version_number)，后写覆盖
	UpsertVersion(ctx context.Context, version *model.GameVersion) error
	// SaveBanner 后台编辑：带id按id覆盖，不带id按自然键upsert
	SaveBanner(ctx context.Context, banner *model.Banner) error
	// SaveVersion 同上
	SaveVersion(ctx context.Context, version *model.GameVersion) error
	// SaveEvent 活动没有自然键，按id覆盖
	SaveEvent(ctx context.Context, event *model.GameEvent) error

	DeleteBanner(ctx context.Context, id string) error
	DeleteVersion(ctx context.Context, id string) error
	DeleteEvent(ctx context.Context, id string) error

	ListBanners(ctx context.Context, game model.Game) ([]*model.Banner, error)
	ListVersions(ctx context.Context, game model.Game) ([]*model.GameVersion, error)
	ListEvents(ctx context.Context, game model.Game) ([]*model.GameEvent, error)
}

// SyncRunStore 同步审计记录
type SyncRunStore interface {
	SaveSyncRun(ctx context.Context, run *model.SyncRun) error
}
