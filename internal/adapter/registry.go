package adapter

import (
	"fmt"

	"GachaSync/internal/config"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"
	"GachaSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// SourceRegistry 游戏→适配器实例列表（按配置顺序）
type SourceRegistry struct {
	logger   *logrus.Logger
	adapters map[model.Game][]interfaces.SiteAdapter
}

// NewSourceRegistry 按配置从工厂注册表创建适配器实例
func NewSourceRegistry(cfg *config.Config, logger *logrus.Logger) (*SourceRegistry, error) {
	r := &SourceRegistry{
		logger:   logger,
		adapters: make(map[model.Game][]interfaces.SiteAdapter),
	}
	logger.WithField("factories", ListFactories()).Info("已注册的适配器工厂")

	for gameStr, sources := range cfg.Sources {
		game, ok := model.ParseGame(gameStr)
		if !ok {
			return nil, fmt.Errorf("未知游戏: %s", gameStr)
		}
		for _, src := range sources {
			factory, ok := GetFactory(src.Adapter)
			if !ok {
				return nil, fmt.Errorf("游戏%s配置了未注册的适配器: %s", game, src.Adapter)
			}
			client := httpclient.NewHTTPClient(httpclient.Options{
				Timeout: src.TimeoutOr(cfg.Sync.FetchTimeout),
				Proxy:   src.Proxy,
			}, logger)
			r.Add(factory(game, src, client, logger))
			logger.WithFields(logrus.Fields{
				"game":    game,
				"adapter": src.Adapter,
				"url":     src.URL,
			}).Info("适配器实例初始化成功")
		}
	}
	return r, nil
}

// NewStaticRegistry 直接使用给定实例（测试或一次性调用）
func NewStaticRegistry(logger *logrus.Logger, adapters ...interfaces.SiteAdapter) *SourceRegistry {
	r := &SourceRegistry{logger: logger, adapters: make(map[model.Game][]interfaces.SiteAdapter)}
	for _, a := range adapters {
		r.Add(a)
	}
	return r
}

// Add 追加一个适配器实例
func (r *SourceRegistry) Add(a interfaces.SiteAdapter) {
	r.adapters[a.GetGame()] = append(r.adapters[a.GetGame()], a)
}

// AdaptersFor 获取游戏对应的适配器，未配置时返回错误
func (r *SourceRegistry) AdaptersFor(game model.Game) ([]interfaces.SiteAdapter, error) {
	list := r.adapters[game]
	if len(list) == 0 {
		return nil, fmt.Errorf("游戏%s未配置任何抓取来源", game)
	}
	return list, nil
}

// Games 已配置来源的游戏（固定顺序）
func (r *SourceRegistry) Games() []model.Game {
	var games []model.Game
	for _, g := range model.AllGames {
		if len(r.adapters[g]) > 0 {
			games = append(games, g)
		}
	}
	return games
}
