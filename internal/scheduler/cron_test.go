package scheduler

import (
	"context"
	"io"
	"sync"
	"testing"

	"GachaSync/internal/model"
	"GachaSync/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu    sync.Mutex
	games []model.Game
}

func (r *recordingRunner) ScrapeAndSync(ctx context.Context, game model.Game) *service.ActionResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, game)
	if _, ok := ctx.Deadline(); !ok {
		return nil
	}
	return &service.ActionResponse{Success: game == model.GameGenshin}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCronSync_RunOnce(t *testing.T) {
	runner := &recordingRunner{}
	c, err := NewCronSync("0 */6 * * *", model.AllGames, runner, quietLogger())
	require.NoError(t, err)
	defer c.Shutdown()

	c.RunOnce(context.Background())
	c.RunOnce(context.Background())
	assert.Equal(t, []model.Game{
		model.GameGenshin, model.GameStarRail,
		model.GameGenshin, model.GameStarRail,
	}, runner.games)
}

func TestCronSync_StartShutdown(t *testing.T) {
	c, err := NewCronSync("*/30 * * * *", []model.Game{model.GameStarRail}, &recordingRunner{}, quietLogger())
	require.NoError(t, err)
	c.Start()
	assert.NoError(t, c.Shutdown())
}

func TestCronSync_InvalidExpression(t *testing.T) {
	_, err := NewCronSync("every tuesday", model.AllGames, &recordingRunner{}, quietLogger())
	assert.Error(t, err)
}
