package interfaces

import (
	"context"

	"GachaSync/internal/model"
)

// SiteAdapter 每个来源站点必须实现的核心接口
type SiteAdapter interface {
	// GetName 适配器名称
	GetName() string
	// GetGame 负责的游戏
	GetGame() model.Game
	// FetchRecords 抓取页面并抽取字段；只有网络失败或文档无法解析时返回错误
	FetchRecords(ctx context.Context) ([]*model.ScrapedRecord, error)
}

// CharacterCatalogue 角色图鉴（fetch_characters 透传）
type CharacterCatalogue interface {
	FetchCharacters(ctx context.Context, game model.Game) (any, error)
}

// SyncNotifier 同步完成后的通知
type SyncNotifier interface {
	NotifySynced(ctx context.Context, summary *model.SyncSummary) error
}
