package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"GachaSync/internal/config"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// streamMaxLen 每个stream保留的大致条数
const streamMaxLen = 1000

// StreamKey schedule.synced.{game}
func StreamKey(game model.Game) string {
	return fmt.Sprintf("schedule.synced.%s", game)
}

// StreamPublisher 把同步摘要写入 Redis Stream，供倒计时页刷新缓存
type StreamPublisher struct {
	redis  *redis.Client
	logger *logrus.Logger
}

var _ interfaces.SyncNotifier = (*StreamPublisher)(nil)

func NewStreamPublisher(client *redis.Client, logger *logrus.Logger) *StreamPublisher {
	return &StreamPublisher{redis: client, logger: logger}
}

// NewRedisClient 地址为空时返回nil（不推送）
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}
	return client, nil
}

// NotifySynced 未配置Redis时直接返回
func (p *StreamPublisher) NotifySynced(ctx context.Context, summary *model.SyncSummary) error {
	if p == nil || p.redis == nil {
		return nil
	}
	streamKey := StreamKey(summary.Game)

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("序列化同步摘要失败: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":    string(data),
			"game":    string(summary.Game),
			"action":  summary.Action,
			"success": summary.Success,
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("推送到 %s 失败: %w", streamKey, err)
	}

	p.logger.WithFields(logrus.Fields{"stream": streamKey, "id": id}).Debug("同步摘要已推送")
	return nil
}
