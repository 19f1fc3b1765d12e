package service

import (
	"context"
	"fmt"
	"time"

	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Schedule 倒计时页读取的排期
type Schedule struct {
	Game        model.Game           `json:"game"`
	Versions    []*model.GameVersion `json:"versions"`
	Banners     []*model.Banner      `json:"banners"`
	Events      []*model.GameEvent   `json:"events"`
	LiveBanners []*model.Banner      `json:"live_banners"`
	NextVersion *model.GameVersion   `json:"next_version"`
}

type ScheduleService struct {
	store  interfaces.ScheduleStore
	logger *logrus.Logger
	now    func() time.Time
}

func NewScheduleService(store interfaces.ScheduleStore, logger *logrus.Logger) *ScheduleService {
	return &ScheduleService{store: store, logger: logger, now: time.Now}
}

// GetSchedule versions按上线时间倒序，banners/events按开始时间正序（由存储层保证）
func (s *ScheduleService) GetSchedule(ctx context.Context, game model.Game) (*Schedule, error) {
	versions, err := s.store.ListVersions(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("查询版本失败: %w", err)
	}
	banners, err := s.store.ListBanners(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("查询卡池失败: %w", err)
	}
	events, err := s.store.ListEvents(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("查询活动失败: %w", err)
	}

	now := s.now().UTC()
	out := &Schedule{
		Game:        game,
		Versions:    versions,
		Banners:     banners,
		Events:      events,
		LiveBanners: make([]*model.Banner, 0),
	}
	for _, b := range banners {
		if b.LiveAt(now) {
			out.LiveBanners = append(out.LiveBanners, b)
		}
	}
	// 最近一个尚未上线的版本
	for _, v := range versions {
		if v.ReleaseDate.After(now) && (out.NextVersion == nil || v.ReleaseDate.Before(out.NextVersion.ReleaseDate)) {
			out.NextVersion = v
		}
	}
	return out, nil
}
