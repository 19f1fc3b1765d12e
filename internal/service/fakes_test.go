package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"GachaSync/internal/model"

	"github.com/google/uuid"
)

// memStore 内存版存储，按自然键覆盖
type memStore struct {
	mu        sync.Mutex
	banners   map[string]*model.Banner
	versions  map[string]*model.GameVersion
	events    map[string]*model.GameEvent
	runs      []*model.SyncRun
	reject    map[string]bool
	deleteErr error
	listErr   error
}

func newMemStore() *memStore {
	return &memStore{
		banners:  make(map[string]*model.Banner),
		versions: make(map[string]*model.GameVersion),
		events:   make(map[string]*model.GameEvent),
		reject:   make(map[string]bool),
	}
}

var errRejected = errors.New("violates check constraint")

func (m *memStore) UpsertBanner(_ context.Context, b *model.Banner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject[b.Name] {
		return errRejected
	}
	key := string(b.Game) + "|" + b.Name
	if existing, ok := m.banners[key]; ok {
		b.ID = existing.ID
	} else if b.ID == "" {
		b.ID = uuid.NewString()
	}
	cp := *b
	m.banners[key] = &cp
	return nil
}

func (m *memStore) UpsertVersion(_ context.Context, v *model.GameVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reject["version "+v.VersionNumber] {
		return errRejected
	}
	key := string(v.Game) + "|" + v.VersionNumber
	if existing, ok := m.versions[key]; ok {
		v.ID = existing.ID
	} else if v.ID == "" {
		v.ID = uuid.NewString()
	}
	cp := *v
	m.versions[key] = &cp
	return nil
}

func (m *memStore) SaveBanner(ctx context.Context, b *model.Banner) error {
	return m.UpsertBanner(ctx, b)
}

func (m *memStore) SaveVersion(ctx context.Context, v *model.GameVersion) error {
	return m.UpsertVersion(ctx, v)
}

func (m *memStore) SaveEvent(_ context.Context, e *model.GameEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memStore) DeleteBanner(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for k, b := range m.banners {
		if b.ID == id {
			delete(m.banners, k)
		}
	}
	return nil
}

func (m *memStore) DeleteVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for k, v := range m.versions {
		if v.ID == id {
			delete(m.versions, k)
		}
	}
	return nil
}

func (m *memStore) DeleteEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.events, id)
	return nil
}

func (m *memStore) ListBanners(_ context.Context, game model.Game) ([]*model.Banner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.Banner, 0)
	for _, b := range m.banners {
		if b.Game == game {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memStore) ListVersions(_ context.Context, game model.Game) ([]*model.GameVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.GameVersion, 0)
	for _, v := range m.versions {
		if v.Game == game {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReleaseDate.After(out[j].ReleaseDate) })
	return out, nil
}

func (m *memStore) ListEvents(_ context.Context, game model.Game) ([]*model.GameEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.GameEvent, 0)
	for _, e := range m.events {
		if e.Game == game {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memStore) SaveSyncRun(_ context.Context, run *model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memStore) bannerNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.banners))
	for _, b := range m.banners {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

// fakeAdapter 固定返回给定记录或错误
type fakeAdapter struct {
	name    string
	game    model.Game
	records []*model.ScrapedRecord
	err     error
}

func (f *fakeAdapter) GetName() string     { return f.name }
func (f *fakeAdapter) GetGame() model.Game { return f.game }

func (f *fakeAdapter) FetchRecords(context.Context) ([]*model.ScrapedRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	summaries []*model.SyncSummary
}

func (f *fakeNotifier) NotifySynced(_ context.Context, s *model.SyncSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
	return nil
}

type fakeCatalogue struct {
	data any
	err  error
}

func (f *fakeCatalogue) FetchCharacters(context.Context, model.Game) (any, error) {
	return f.data, f.err
}
