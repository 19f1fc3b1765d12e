package adapter_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"GachaSync/internal/adapter"
	"GachaSync/internal/config"
	"GachaSync/internal/model"

	_ "GachaSync/internal/adapter/eurogamer"
	_ "GachaSync/internal/adapter/gengamer"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestListFactories(t *testing.T) {
	assert.Subset(t, adapter.ListFactories(), []string{"eurogamer", "gengamer"})
	_, ok := adapter.GetFactory("gengamer")
	assert.True(t, ok)
	_, ok = adapter.GetFactory("fandom")
	assert.False(t, ok)
}

func TestNewSourceRegistry(t *testing.T) {
	cfg := &config.Config{
		Sync: config.SyncConfig{FetchTimeout: 5},
		Sources: map[string][]config.SourceConfig{
			"genshin_impact":   {{Adapter: "eurogamer", URL: "https://example.com/genshin"}},
			"honkai_star_rail": {{Adapter: "gengamer", URL: "https://example.com/hsr", Timeout: 3}},
		},
	}
	r, err := adapter.NewSourceRegistry(cfg, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []model.Game{model.GameGenshin, model.GameStarRail}, r.Games())

	list, err := r.AdaptersFor(model.GameStarRail)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "gengamer", list[0].GetName())
	assert.Equal(t, model.GameStarRail, list[0].GetGame())
}

func TestNewSourceRegistry_Errors(t *testing.T) {
	_, err := adapter.NewSourceRegistry(&config.Config{
		Sources: map[string][]config.SourceConfig{"honkai_star_rail": {{Adapter: "fandom"}}},
	}, quietLogger())
	assert.ErrorContains(t, err, "fandom")

	_, err = adapter.NewSourceRegistry(&config.Config{
		Sources: map[string][]config.SourceConfig{"zenless": {{Adapter: "gengamer"}}},
	}, quietLogger())
	assert.Error(t, err)

	r := adapter.NewStaticRegistry(quietLogger())
	_, err = r.AdaptersFor(model.GameGenshin)
	assert.Error(t, err)
	assert.Empty(t, r.Games())
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body, err := adapter.FetchPage(context.Background(), srv.Client(), "test", srv.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))

	_, err = adapter.FetchPage(context.Background(), srv.Client(), "test", srv.URL+"/missing")
	var fetchErr *adapter.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, "test", fetchErr.Source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = adapter.FetchPage(ctx, srv.Client(), "test", srv.URL+"/")
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, errors.Is(err, context.Canceled))
}
