package genshindev

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"GachaSync/internal/adapter"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Name 来源名称
const Name = "genshin.dev"

// ErrUnsupportedGame 该游戏没有可用的图鉴接口
var ErrUnsupportedGame = errors.New("该游戏没有可用的角色图鉴接口")

// Client 角色图鉴，目前只有原神有公开接口
type Client struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(url string, client *http.Client, logger *logrus.Logger) *Client {
	return &Client{url: url, httpClient: client, logger: logger}
}

// FetchCharacters 原样透传接口返回的JSON
func (c *Client) FetchCharacters(ctx context.Context, game model.Game) (any, error) {
	if game != model.GameGenshin || c.url == "" {
		return nil, ErrUnsupportedGame
	}
	body, err := adapter.FetchPage(ctx, c.httpClient, Name, c.url)
	if err != nil {
		return nil, err
	}
	var characters any
	if err := json.Unmarshal(body, &characters); err != nil {
		return nil, &adapter.FetchError{Source: Name, URL: c.url, Err: fmt.Errorf("解析角色列表失败: %w", err)}
	}
	c.logger.WithField("game", game).Info("角色图鉴拉取成功")
	return characters, nil
}
