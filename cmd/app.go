package main

import (
	"context"
	"fmt"
	"time"

	"GachaSync/internal/adapter"
	"GachaSync/internal/adapter/genshindev"
	"GachaSync/internal/config"
	"GachaSync/internal/dates"
	"GachaSync/internal/enrich"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/publisher"
	"GachaSync/internal/repository"
	"GachaSync/internal/service"
	"GachaSync/internal/utils/httpclient"

	// 站点适配器在 init 中注册工厂
	_ "GachaSync/internal/adapter/eurogamer"
	_ "GachaSync/internal/adapter/gengamer"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app 进程内共享的依赖
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *gorm.DB
	redis     *redis.Client
	sync      *service.SyncService
	schedules *service.ScheduleService
	runs      *repository.SyncRunRepository
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*app, error) {
	db, err := openDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Sync.Location()
	if err != nil {
		return nil, err
	}
	normalizer := dates.NewNormalizer(loc, cfg.Sync.ReferenceHour)
	images := enrich.NewImageTable(cfg.CharacterImages)
	deriver := service.NewDeriver(normalizer, images, cfg.Sync.BannerDays, cfg.Sync.LiveLeadDays, logger)

	sources, err := adapter.NewSourceRegistry(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化抓取来源失败: %w", err)
	}

	catalogueClient := httpclient.NewHTTPClient(httpclient.Options{
		Timeout: time.Duration(cfg.Catalogue.Timeout) * time.Second,
	}, logger)
	catalogue := genshindev.NewClient(cfg.Catalogue.GenshinURL, catalogueClient, logger)

	redisClient, err := publisher.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	var notifier interfaces.SyncNotifier
	if redisClient != nil {
		notifier = publisher.NewStreamPublisher(redisClient, logger)
		logger.WithField("addr", cfg.Redis.Addr).Info("同步结果将推送到Redis Stream")
	}

	store := repository.NewScheduleRepository(db)
	runs := repository.NewSyncRunRepository(db)

	return &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		sync:      service.NewSyncService(sources, deriver, store, runs, catalogue, notifier, logger),
		schedules: service.NewScheduleService(store, logger),
		runs:      runs,
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
