package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"GachaSync/internal/adapter"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	svc      *SyncService
	store    *memStore
	notifier *fakeNotifier
}

func newSyncFixture(adapters ...interfaces.SiteAdapter) *syncFixture {
	store := newMemStore()
	notifier := &fakeNotifier{}
	registry := adapter.NewStaticRegistry(quietLogger(), adapters...)
	catalogue := &fakeCatalogue{data: []any{"albedo"}}
	svc := NewSyncService(registry, newTestDeriver(), store, store, catalogue, notifier, quietLogger())
	return &syncFixture{svc: svc, store: store, notifier: notifier}
}

func countdownRecord(version string, entities ...string) *model.ScrapedRecord {
	return &model.ScrapedRecord{
		Game:             model.GameStarRail,
		Source:           "gengamer",
		Phase:            model.PhaseCountdown,
		BannerType:       model.BannerCharacter,
		Version:          version,
		FeaturedEntities: entities,
		ReleaseDate:      "not a date",
	}
}

func syncedOf(t *testing.T, resp *ActionResponse) *SyncResult {
	t.Helper()
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	result, ok := data["synced"].(*SyncResult)
	require.True(t, ok)
	return result
}

func TestRunAction_UnknownAction(t *testing.T) {
	f := newSyncFixture()
	_, err := f.svc.RunAction(context.Background(), ActionRequest{Action: "scrape_everything", Game: "honkai_star_rail"})
	var unknown *UnknownActionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "scrape_everything", unknown.Action)
}

func TestRunAction_InvalidGame(t *testing.T) {
	f := newSyncFixture()
	for _, action := range []string{ActionScrapeCountdown, ActionScrapeAndSync, ActionScrapeCurrentBanners, ActionFetchCharacters, ActionSyncFromSource} {
		_, err := f.svc.RunAction(context.Background(), ActionRequest{Action: action, Game: "zenless"})
		var invalid *ValidationError
		require.True(t, errors.As(err, &invalid), action)
		assert.Equal(t, "game", invalid.Field)
	}
}

func TestScrapeAndSync_PersistsBannersAndVersion(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{
		name:    "gengamer",
		game:    model.GameStarRail,
		records: []*model.ScrapedRecord{countdownRecord("6.2", "Varesa", "Xilonen")},
	})

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "synced 2 banners", resp.Message)

	result := syncedOf(t, resp)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []string{"6.2"}, result.Versions)
	assert.Equal(t, []string{"6.2 - Varesa", "6.2 - Xilonen"}, f.store.bannerNames())

	varesa := f.store.banners["honkai_star_rail|6.2 - Varesa"]
	assert.Equal(t, fixedNow.Add(-7*day), varesa.StartDate)
	assert.Equal(t, fixedNow.Add(21*day), varesa.EndDate)

	require.Len(t, f.store.runs, 1)
	assert.Equal(t, ActionScrapeAndSync, f.store.runs[0].Action)
	assert.True(t, f.store.runs[0].Success)
	require.Len(t, f.notifier.summaries, 1)
	assert.Equal(t, model.GameStarRail, f.notifier.summaries[0].Game)
	assert.Equal(t, 2, f.notifier.summaries[0].SuccessCount)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["scraped"], 1)
}

func TestScrapeAndSync_PartialFailure(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{
		name:    "gengamer",
		game:    model.GameStarRail,
		records: []*model.ScrapedRecord{countdownRecord("3.5", "Anaxa", "Cerydra", "Hysilens")},
	})
	f.store.reject["3.5 - Cerydra"] = true

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "partial sync with errors", resp.Message)

	result := syncedOf(t, resp)
	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "3.5 - Cerydra: ")
	assert.Equal(t, []string{"3.5 - Anaxa", "3.5 - Hysilens"}, f.store.bannerNames())
	assert.Equal(t, []string{"3.5"}, result.Versions, "version upsert is independent of banner failures")

	require.Len(t, f.store.runs, 1)
	assert.False(t, f.store.runs[0].Success)
	assert.Equal(t, 1, f.store.runs[0].FailureCount)
}

func TestScrapeAndSync_Idempotent(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{
		name:    "gengamer",
		game:    model.GameStarRail,
		records: []*model.ScrapedRecord{countdownRecord("3.4", "The Dahlia", "Firefly")},
	})
	req := ActionRequest{Action: ActionScrapeAndSync, Game: "honkai_star_rail"}

	_, err := f.svc.RunAction(context.Background(), req)
	require.NoError(t, err)
	first := f.store.banners["honkai_star_rail|3.4 - Firefly"].ID
	_, err = f.svc.RunAction(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, f.store.banners, 2)
	assert.Len(t, f.store.versions, 1)
	assert.Equal(t, first, f.store.banners["honkai_star_rail|3.4 - Firefly"].ID)
}

func TestScrapeAndSync_AllSourcesFail(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{name: "gengamer", game: model.GameStarRail, err: &adapter.FetchError{Source: "gengamer", StatusCode: 503}})

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
	assert.Empty(t, f.store.banners)
	assert.Empty(t, f.store.runs)
	assert.Empty(t, f.notifier.summaries)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	scraped, ok := data["scraped"].([]*model.ScrapedRecord)
	require.True(t, ok)
	assert.NotNil(t, scraped)
	assert.Empty(t, scraped)
}

func TestScrapeActions_FailureKeepsScraped(t *testing.T) {
	for _, action := range []string{ActionScrapeCountdown, ActionScrapeCurrentBanners} {
		t.Run(action, func(t *testing.T) {
			f := newSyncFixture(&fakeAdapter{name: "gengamer", game: model.GameStarRail, err: errors.New("timeout")})
			resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: action, Game: "honkai_star_rail"})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)

			body, err := json.Marshal(resp)
			require.NoError(t, err)
			assert.Contains(t, string(body), `"data":{"scraped":[]}`)
		})
	}
}

func TestScrapeAndSync_UnconfiguredGame(t *testing.T) {
	f := newSyncFixture()
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "genshin_impact"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestScrapeAndSync_OneSourceFails(t *testing.T) {
	f := newSyncFixture(
		&fakeAdapter{name: "broken", game: model.GameStarRail, err: errors.New("timeout")},
		&fakeAdapter{name: "gengamer", game: model.GameStarRail, records: []*model.ScrapedRecord{countdownRecord("3.4", "Firefly")}},
	)
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"3.4 - Firefly"}, f.store.bannerNames())
}

func TestScrapeAndSync_NothingFound(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{name: "eurogamer", game: model.GameGenshin})
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "genshin_impact"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Note)
	assert.Empty(t, resp.Error)
	assert.Empty(t, f.store.runs)
}

func TestScrapeAndSync_VersionKeepsEarliestRelease(t *testing.T) {
	current := &model.ScrapedRecord{
		Game: model.GameGenshin, Phase: model.PhaseCurrent, PhaseNumber: 1, Version: "6.2",
		FeaturedEntities: []string{"Durin"}, EndDate: "Tuesday 23rd December",
	}
	next := &model.ScrapedRecord{
		Game: model.GameGenshin, Phase: model.PhaseNext, PhaseNumber: 2, Version: "6.2",
		FeaturedEntities: []string{"Varesa"}, ReleaseDate: "Wednesday 24th December",
	}
	f := newSyncFixture(&fakeAdapter{name: "eurogamer", game: model.GameGenshin, records: []*model.ScrapedRecord{next, current}})

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeAndSync, Game: "genshin_impact"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, f.store.versions, 1)
	v := f.store.versions["genshin_impact|6.2"]
	assert.Equal(t, time.Date(2025, time.December, 2, 10, 0, 0, 0, time.UTC), v.ReleaseDate)
}

func TestScrapeCountdown_DoesNotPersist(t *testing.T) {
	f := newSyncFixture(&fakeAdapter{name: "gengamer", game: model.GameStarRail, records: []*model.ScrapedRecord{countdownRecord("3.4", "Firefly")}})
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeCountdown, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, f.store.banners)
	assert.Empty(t, f.store.runs)

	data := resp.Data.(map[string]any)
	assert.Len(t, data["scraped"], 1)
}

func TestScrapeCurrentBanners_OnlyLive(t *testing.T) {
	rec := countdownRecord("3.4", "The Dahlia", "Firefly")
	rec.ReleaseDate = "Wednesday, December 23 at 5:00 AM EST"
	f := newSyncFixture(&fakeAdapter{name: "gengamer", game: model.GameStarRail, records: []*model.ScrapedRecord{rec}})

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeCurrentBanners, Game: "honkai_star_rail"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	live := resp.Data.(map[string]any)["banners"].([]*model.Banner)
	require.Len(t, live, 1)
	assert.Equal(t, "3.4 - The Dahlia", live[0].Name)
	assert.Empty(t, f.store.banners)
}

func TestScrapeBothGames_KeyedByGame(t *testing.T) {
	f := newSyncFixture(
		&fakeAdapter{name: "eurogamer", game: model.GameGenshin, err: errors.New("connection refused")},
		&fakeAdapter{name: "gengamer", game: model.GameStarRail, records: []*model.ScrapedRecord{countdownRecord("3.4", "Firefly")}},
	)
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionScrapeBothGames})
	require.NoError(t, err)
	assert.False(t, resp.Success)

	data := resp.Data.(map[string]gameScrape)
	require.Len(t, data, 2)
	assert.NotEmpty(t, data["genshin_impact"].Error)
	assert.Empty(t, data["genshin_impact"].Scraped)
	assert.Empty(t, data["honkai_star_rail"].Error)
	require.Len(t, data["honkai_star_rail"].Scraped, 1)
	assert.Equal(t, model.GameStarRail, data["honkai_star_rail"].Scraped[0].Game)
}

func TestFetchCharacters(t *testing.T) {
	f := newSyncFixture()
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionFetchCharacters, Game: "genshin_impact"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []any{"albedo"}, resp.Data)

	f.svc.catalogue = &fakeCatalogue{err: errors.New("not available")}
	resp, err = f.svc.RunAction(context.Background(), ActionRequest{Action: ActionFetchCharacters, Game: "honkai_star_rail"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "not available", resp.Error)
}

func TestSyncFromSource(t *testing.T) {
	f := newSyncFixture()
	data, err := json.Marshal([]map[string]any{{
		"phase":             "next",
		"version":           "6.3",
		"featured_entities": []string{"Columbina"},
		"release_date":      "Wednesday 14th January",
	}})
	require.NoError(t, err)

	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionSyncFromSource, Game: "genshin_impact", Data: data})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"6.3 Phase 2 - Columbina"}, f.store.bannerNames())
	require.Len(t, f.store.runs, 1)
	assert.Equal(t, ActionSyncFromSource, f.store.runs[0].Action)

	b := f.store.banners["genshin_impact|6.3 Phase 2 - Columbina"]
	assert.Equal(t, time.Date(2026, time.January, 14, 10, 0, 0, 0, time.UTC), b.StartDate)
}

func TestSyncFromSource_SingleObject(t *testing.T) {
	f := newSyncFixture()
	data := json.RawMessage(`{"phase":"countdown","version":"3.4","featured_entities":["Firefly"],"release_date":"January 14, 2026"}`)
	resp, err := f.svc.RunAction(context.Background(), ActionRequest{Action: ActionSyncFromSource, Game: "honkai_star_rail", Data: data})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"3.4 - Firefly"}, f.store.bannerNames())
}

func TestSyncFromSource_Invalid(t *testing.T) {
	f := newSyncFixture()
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{"missing data", ``, "data"},
		{"null data", `null`, "data"},
		{"bad json", `{"phase":`, "data"},
		{"unknown phase", `[{"phase":"someday","featured_entities":["A"]}]`, "data[0].phase"},
		{"other game", `[{"game":"genshin_impact","phase":"next"}]`, "data[0].game"},
		{"bad type", `[{"phase":"next","banner_type":"relic"}]`, "data[0].banner_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RunAction(context.Background(), ActionRequest{
				Action: ActionSyncFromSource,
				Game:   "honkai_star_rail",
				Data:   json.RawMessage(tt.data),
			})
			var invalid *ValidationError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
	assert.Empty(t, f.store.banners)
}
