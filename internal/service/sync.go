package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"GachaSync/internal/adapter"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// 支持的动作
const (
	ActionScrapeCountdown      = "scrape_countdown"
	ActionScrapeCurrentBanners = "scrape_current_banners"
	ActionScrapeAndSync        = "scrape_and_sync"
	ActionScrapeBothGames      = "scrape_both_games"
	ActionFetchCharacters      = "fetch_characters"
	ActionSyncFromSource       = "sync_from_source"
	ActionUpsertVersion        = "upsert_version"
	ActionUpsertBanner         = "upsert_banner"
	ActionUpsertEvent          = "upsert_event"
	ActionDeleteBanner         = "delete_banner"
	ActionDeleteEvent          = "delete_event"
	ActionDeleteVersion        = "delete_version"
)

// Actions 全部动作（错误提示用）
var Actions = []string{
	ActionScrapeCountdown, ActionScrapeCurrentBanners, ActionScrapeAndSync, ActionScrapeBothGames,
	ActionFetchCharacters, ActionSyncFromSource, ActionUpsertVersion, ActionUpsertBanner,
	ActionUpsertEvent, ActionDeleteBanner, ActionDeleteEvent, ActionDeleteVersion,
}

const (
	msgPartialSync = "partial sync with errors"
	noteNoData     = "no banner data found on the configured sources"
)

// ActionRequest 动作分发请求体
type ActionRequest struct {
	Action string          `json:"action"`
	Game   string          `json:"game"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ActionResponse 统一响应体；失败也走200，由 Success 区分
type ActionResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Note    string `json:"note,omitempty"`
}

// UnknownActionError 未识别的动作
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q, available actions: %v", e.Action, Actions)
}

// ValidationError 请求参数不合法
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SyncResult 单次落库结果，失败逐条收集不中断
type SyncResult struct {
	SuccessCount int                    `json:"count"`
	Failures     []string               `json:"errors"`
	Banners      []string               `json:"banners"`
	Versions     []string               `json:"versions"`
	Scraped      []*model.ScrapedRecord `json:"-"`
}

// gameScrape scrape_both_games 中单个游戏的结果
type gameScrape struct {
	Scraped []*model.ScrapedRecord `json:"scraped"`
	Error   string                 `json:"error,omitempty"`
	Note    string                 `json:"note,omitempty"`
}

// SyncService 动作编排：抓取 → 派生 → 落库
type SyncService struct {
	sources   *adapter.SourceRegistry
	deriver   *Deriver
	store     interfaces.ScheduleStore
	runs      interfaces.SyncRunStore
	catalogue interfaces.CharacterCatalogue
	notifier  interfaces.SyncNotifier
	logger    *logrus.Logger
}

// NewSyncService runs/catalogue/notifier 可为nil
func NewSyncService(
	sources *adapter.SourceRegistry,
	deriver *Deriver,
	store interfaces.ScheduleStore,
	runs interfaces.SyncRunStore,
	catalogue interfaces.CharacterCatalogue,
	notifier interfaces.SyncNotifier,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		sources:   sources,
		deriver:   deriver,
		store:     store,
		runs:      runs,
		catalogue: catalogue,
		notifier:  notifier,
		logger:    logger,
	}
}

// RunAction 分发入口；只有参数错误（UnknownActionError/ValidationError）和未预期错误返回error
func (s *SyncService) RunAction(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	s.logger.WithFields(logrus.Fields{"action": req.Action, "game": req.Game}).Info("收到动作请求")

	switch req.Action {
	case ActionScrapeCountdown, ActionScrapeCurrentBanners, ActionScrapeAndSync, ActionFetchCharacters:
		game, err := requireGame(req.Game)
		if err != nil {
			return nil, err
		}
		switch req.Action {
		case ActionScrapeCountdown:
			return s.ScrapeCountdown(ctx, game), nil
		case ActionScrapeCurrentBanners:
			return s.ScrapeCurrentBanners(ctx, game), nil
		case ActionScrapeAndSync:
			return s.ScrapeAndSync(ctx, game), nil
		default:
			return s.FetchCharacters(ctx, game), nil
		}
	case ActionScrapeBothGames:
		return s.ScrapeBothGames(ctx), nil
	case ActionSyncFromSource:
		return s.SyncFromSource(ctx, req)
	case ActionUpsertVersion, ActionUpsertBanner, ActionUpsertEvent,
		ActionDeleteBanner, ActionDeleteEvent, ActionDeleteVersion:
		return s.runAdmin(ctx, req)
	}
	return nil, &UnknownActionError{Action: req.Action}
}

func requireGame(raw string) (model.Game, error) {
	game, ok := model.ParseGame(raw)
	if !ok {
		return "", &ValidationError{Field: "game", Reason: fmt.Sprintf("%q is not one of %v", raw, model.AllGames)}
	}
	return game, nil
}

// fetchRecords 依次调用该游戏的所有来源；单个来源失败只降级，全部失败才返回错误
func (s *SyncService) fetchRecords(ctx context.Context, game model.Game) ([]*model.ScrapedRecord, error) {
	adapters, err := s.sources.AdaptersFor(game)
	if err != nil {
		return nil, err
	}

	records := make([]*model.ScrapedRecord, 0)
	var errs []error
	for _, a := range adapters {
		got, err := a.FetchRecords(ctx)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"game":    game,
				"adapter": a.GetName(),
			}).Warn("来源抓取失败，跳过")
			errs = append(errs, err)
			continue
		}
		records = append(records, got...)
	}
	if len(errs) == len(adapters) {
		return nil, fmt.Errorf("所有来源抓取失败: %w", errors.Join(errs...))
	}
	s.logger.WithFields(logrus.Fields{"game": game, "records": len(records)}).Info("来源抓取完成")
	return records, nil
}

// fetchFailed 抓取失败时 data.scraped 仍为空数组
func fetchFailed(err error) *ActionResponse {
	return &ActionResponse{
		Success: false,
		Data:    map[string]any{"scraped": []*model.ScrapedRecord{}},
		Error:   err.Error(),
	}
}

// ScrapeCountdown 只抓取不落库
func (s *SyncService) ScrapeCountdown(ctx context.Context, game model.Game) *ActionResponse {
	records, err := s.fetchRecords(ctx, game)
	if err != nil {
		return fetchFailed(err)
	}
	if len(records) == 0 {
		return &ActionResponse{Success: true, Data: map[string]any{"scraped": records}, Note: noteNoData}
	}
	return &ActionResponse{
		Success: true,
		Data:    map[string]any{"scraped": records},
		Message: fmt.Sprintf("fetched %d records for %s", len(records), game),
	}
}

// ScrapeCurrentBanners 抓取并派生，只返回当前开放的卡池
func (s *SyncService) ScrapeCurrentBanners(ctx context.Context, game model.Game) *ActionResponse {
	records, err := s.fetchRecords(ctx, game)
	if err != nil {
		return fetchFailed(err)
	}
	now := s.deriver.now()
	live := make([]*model.Banner, 0)
	for _, rec := range records {
		for _, b := range s.deriver.Derive(rec).Banners {
			if b.LiveAt(now) {
				live = append(live, b)
			}
		}
	}
	resp := &ActionResponse{
		Success: true,
		Data:    map[string]any{"scraped": records, "banners": live},
		Message: fmt.Sprintf("%d banners live for %s", len(live), game),
	}
	if len(records) == 0 {
		resp.Message = ""
		resp.Note = noteNoData
	}
	return resp
}

// ScrapeAndSync 抓取 → 派生 → upsert
func (s *SyncService) ScrapeAndSync(ctx context.Context, game model.Game) *ActionResponse {
	records, err := s.fetchRecords(ctx, game)
	if err != nil {
		return fetchFailed(err)
	}
	if len(records) == 0 {
		return &ActionResponse{Success: true, Data: map[string]any{"scraped": records}, Note: noteNoData}
	}
	return s.persist(ctx, game, ActionScrapeAndSync, records)
}

// ScrapeBothGames 两个游戏并发抓取，结果按游戏分开返回
func (s *SyncService) ScrapeBothGames(ctx context.Context) *ActionResponse {
	results := make([]gameScrape, len(model.AllGames))
	var wg sync.WaitGroup
	for i, game := range model.AllGames {
		wg.Add(1)
		go func(i int, game model.Game) {
			defer wg.Done()
			records, err := s.fetchRecords(ctx, game)
			switch {
			case err != nil:
				results[i] = gameScrape{Scraped: []*model.ScrapedRecord{}, Error: err.Error()}
			case len(records) == 0:
				results[i] = gameScrape{Scraped: records, Note: noteNoData}
			default:
				results[i] = gameScrape{Scraped: records}
			}
		}(i, game)
	}
	wg.Wait()

	data := make(map[string]gameScrape, len(results))
	success := true
	for i, game := range model.AllGames {
		data[string(game)] = results[i]
		if results[i].Error != "" {
			success = false
		}
	}
	resp := &ActionResponse{Success: success, Data: data, Message: "fetched both games"}
	if !success {
		resp.Message = "some games could not be fetched"
	}
	return resp
}

// FetchCharacters 角色图鉴透传
func (s *SyncService) FetchCharacters(ctx context.Context, game model.Game) *ActionResponse {
	if s.catalogue == nil {
		return &ActionResponse{Success: false, Error: "character catalogue not available for this game"}
	}
	characters, err := s.catalogue.FetchCharacters(ctx, game)
	if err != nil {
		s.logger.WithError(err).WithField("game", game).Warn("角色图鉴获取失败")
		return &ActionResponse{Success: false, Error: err.Error()}
	}
	return &ActionResponse{Success: true, Data: characters}
}

// SyncFromSource 后台手工录入的抓取记录，走与 scrape_and_sync 相同的派生落库流程
func (s *SyncService) SyncFromSource(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	game, err := requireGame(req.Game)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(req.Data)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if rec.Game == "" {
			rec.Game = game
		}
		if rec.Game != game {
			return nil, &ValidationError{Field: fmt.Sprintf("data[%d].game", i), Reason: "does not match request game"}
		}
		switch rec.Phase {
		case model.PhaseCurrent, model.PhaseNext, model.PhaseCountdown:
		default:
			return nil, &ValidationError{Field: fmt.Sprintf("data[%d].phase", i), Reason: fmt.Sprintf("unknown phase %q", rec.Phase)}
		}
		if rec.BannerType != "" && !rec.BannerType.Valid() {
			return nil, &ValidationError{Field: fmt.Sprintf("data[%d].banner_type", i), Reason: fmt.Sprintf("unknown banner type %q", rec.BannerType)}
		}
		if rec.Source == "" {
			rec.Source = "manual"
		}
	}
	if len(records) == 0 {
		return &ActionResponse{Success: true, Data: map[string]any{"scraped": records}, Note: noteNoData}, nil
	}
	return s.persist(ctx, game, ActionSyncFromSource, records), nil
}

// decodeRecords 支持单条对象或数组
func decodeRecords(raw json.RawMessage) ([]*model.ScrapedRecord, error) {
	if isEmptyJSON(raw) {
		return nil, &ValidationError{Field: "data", Reason: "required"}
	}
	var list []*model.ScrapedRecord
	if err := json.Unmarshal(raw, &list); err == nil {
		out := list[:0]
		for _, rec := range list {
			if rec != nil {
				out = append(out, rec)
			}
		}
		return out, nil
	}
	var one model.ScrapedRecord
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, &ValidationError{Field: "data", Reason: err.Error()}
	}
	return []*model.ScrapedRecord{&one}, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

// persist 派生并逐条upsert，记录审计并推送摘要
func (s *SyncService) persist(ctx context.Context, game model.Game, action string, records []*model.ScrapedRecord) *ActionResponse {
	result := s.syncRecords(ctx, records)

	resp := &ActionResponse{
		Success: len(result.Failures) == 0,
		Data:    map[string]any{"scraped": records, "synced": result},
		Message: fmt.Sprintf("synced %d banners", result.SuccessCount),
	}
	if !resp.Success {
		resp.Message = msgPartialSync
	}

	entry := s.logger.WithFields(logrus.Fields{
		"game":     game,
		"action":   action,
		"banners":  result.SuccessCount,
		"failures": len(result.Failures),
	})
	if resp.Success {
		entry.Info("同步完成")
	} else {
		entry.Warn("同步完成，部分数据落库失败")
	}

	s.recordRun(ctx, game, action, result)
	s.notify(ctx, game, action, result)
	return resp
}

// syncRecords 单条失败不影响后续；同一版本号只保留最早的上线时间
func (s *SyncService) syncRecords(ctx context.Context, records []*model.ScrapedRecord) *SyncResult {
	result := &SyncResult{
		Failures: make([]string, 0),
		Banners:  make([]string, 0),
		Versions: make([]string, 0),
		Scraped:  records,
	}
	versions := make(map[string]*model.GameVersion)
	var versionOrder []string

	for _, rec := range records {
		derived := s.deriver.Derive(rec)
		for _, b := range derived.Banners {
			if err := s.store.UpsertBanner(ctx, b); err != nil {
				s.logger.WithError(err).WithField("banner", b.Name).Warn("卡池落库失败")
				result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", b.Name, err))
				continue
			}
			result.SuccessCount++
			result.Banners = append(result.Banners, b.Name)
		}

		if v := derived.Version; v != nil {
			key := string(v.Game) + "|" + v.VersionNumber
			existing, ok := versions[key]
			if !ok {
				versions[key] = v
				versionOrder = append(versionOrder, key)
			} else if v.ReleaseDate.Before(existing.ReleaseDate) {
				versions[key] = v
			}
		}
	}

	for _, key := range versionOrder {
		v := versions[key]
		if err := s.store.UpsertVersion(ctx, v); err != nil {
			s.logger.WithError(err).WithField("version", v.VersionNumber).Warn("版本落库失败")
			result.Failures = append(result.Failures, fmt.Sprintf("version %s: %v", v.VersionNumber, err))
			continue
		}
		result.Versions = append(result.Versions, v.VersionNumber)
	}
	return result
}

// recordRun 审计失败只记日志
func (s *SyncService) recordRun(ctx context.Context, game model.Game, action string, result *SyncResult) {
	if s.runs == nil {
		return
	}
	failures, err := json.Marshal(result.Failures)
	if err != nil {
		s.logger.WithError(err).Warn("序列化失败明细出错")
		failures = []byte("[]")
	}
	scraped, err := json.Marshal(result.Scraped)
	if err != nil {
		s.logger.WithError(err).Warn("序列化抓取数据出错")
		scraped = []byte("[]")
	}
	run := &model.SyncRun{
		Game:         game,
		Action:       action,
		Success:      len(result.Failures) == 0,
		SuccessCount: result.SuccessCount,
		FailureCount: len(result.Failures),
		Failures:     datatypes.JSON(failures),
		Scraped:      datatypes.JSON(scraped),
	}
	if err := s.runs.SaveSyncRun(ctx, run); err != nil {
		s.logger.WithError(err).WithField("game", game).Warn("写入同步审计记录失败")
	}
}

// notify 推送失败只记日志
func (s *SyncService) notify(ctx context.Context, game model.Game, action string, result *SyncResult) {
	if s.notifier == nil {
		return
	}
	summary := &model.SyncSummary{
		Game:         game,
		Action:       action,
		Success:      len(result.Failures) == 0,
		SuccessCount: result.SuccessCount,
		FailureCount: len(result.Failures),
		Versions:     result.Versions,
		Banners:      result.Banners,
		SyncedAt:     time.Now().UTC(),
	}
	if err := s.notifier.NotifySynced(ctx, summary); err != nil {
		s.logger.WithError(err).WithField("game", game).Warn("同步结果推送失败")
	}
}
