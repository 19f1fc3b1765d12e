package scheduler

import (
	"context"
	"fmt"
	"time"

	"GachaSync/internal/model"
	"GachaSync/internal/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// defaultRunTimeout 单个游戏一次同步的超时
const defaultRunTimeout = 2 * time.Minute

// SyncRunner 定时任务执行的同步动作
type SyncRunner interface {
	ScrapeAndSync(ctx context.Context, game model.Game) *service.ActionResponse
}

// CronSync 按cron表达式对启用的游戏执行 scrape_and_sync，每次执行互不依赖
type CronSync struct {
	sched   gocron.Scheduler
	runner  SyncRunner
	games   []model.Game
	timeout time.Duration
	logger  *logrus.Logger
}

func NewCronSync(expr string, games []model.Game, runner SyncRunner, logger *logrus.Logger) (*CronSync, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("创建调度器失败: %w", err)
	}
	c := &CronSync{
		sched:   sched,
		runner:  runner,
		games:   games,
		timeout: defaultRunTimeout,
		logger:  logger,
	}
	// 上一轮未结束时跳过本轮
	_, err = sched.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() { c.RunOnce(context.Background()) }),
		gocron.WithName("scrape_and_sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("注册定时同步任务失败(%s): %w", expr, err)
	}
	return c, nil
}

func (c *CronSync) Start() {
	c.sched.Start()
	c.logger.WithField("games", c.games).Info("定时同步已启动")
}

func (c *CronSync) Shutdown() error {
	return c.sched.Shutdown()
}

// RunOnce 依次同步每个游戏，单个游戏失败不影响其他
func (c *CronSync) RunOnce(ctx context.Context) {
	for _, game := range c.games {
		runCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp := c.runner.ScrapeAndSync(runCtx, game)
		cancel()

		entry := c.logger.WithField("game", game)
		switch {
		case resp == nil:
			entry.Error("定时同步无返回")
		case !resp.Success:
			entry.WithFields(logrus.Fields{"error": resp.Error, "message": resp.Message}).Warn("定时同步未完全成功")
		default:
			entry.WithField("message", resp.Message).Info("定时同步完成")
		}
	}
}
