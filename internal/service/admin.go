package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// idPayload 删除类动作的 data
type idPayload struct {
	ID string `json:"id"`
}

// runAdmin 后台手工维护排期；参数错误返回 ValidationError，落库错误以 success:false 返回
func (s *SyncService) runAdmin(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	if isEmptyJSON(req.Data) {
		return nil, &ValidationError{Field: "data", Reason: "required"}
	}

	var err error
	switch req.Action {
	case ActionUpsertVersion:
		var v model.GameVersion
		if err := decodeData(req.Data, &v); err != nil {
			return nil, err
		}
		if err := validateVersion(&v, req.Game); err != nil {
			return nil, err
		}
		err = s.store.SaveVersion(ctx, &v)
	case ActionUpsertBanner:
		var b model.Banner
		if err := decodeData(req.Data, &b); err != nil {
			return nil, err
		}
		if err := validateBanner(&b, req.Game); err != nil {
			return nil, err
		}
		err = s.store.SaveBanner(ctx, &b)
	case ActionUpsertEvent:
		var e model.GameEvent
		if err := decodeData(req.Data, &e); err != nil {
			return nil, err
		}
		if err := validateEvent(&e, req.Game); err != nil {
			return nil, err
		}
		err = s.store.SaveEvent(ctx, &e)
	default:
		var p idPayload
		if err := decodeData(req.Data, &p); err != nil {
			return nil, err
		}
		if strings.TrimSpace(p.ID) == "" {
			return nil, &ValidationError{Field: "data.id", Reason: "required"}
		}
		switch req.Action {
		case ActionDeleteBanner:
			err = s.store.DeleteBanner(ctx, p.ID)
		case ActionDeleteEvent:
			err = s.store.DeleteEvent(ctx, p.ID)
		case ActionDeleteVersion:
			err = s.store.DeleteVersion(ctx, p.ID)
		default:
			return nil, &UnknownActionError{Action: req.Action}
		}
	}

	entry := s.logger.WithFields(logrus.Fields{"action": req.Action, "game": req.Game})
	if err != nil {
		entry.WithError(err).Warn("后台操作落库失败")
		return &ActionResponse{Success: false, Error: err.Error()}, nil
	}
	entry.Info("后台操作完成")
	return &ActionResponse{Success: true}, nil
}

func decodeData(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{Field: "data." + typeErr.Field, Reason: "wrong type"}
		}
		return &ValidationError{Field: "data", Reason: err.Error()}
	}
	return nil
}

// resolveGame data.game 优先，缺省时使用请求上的 game
func resolveGame(fromData model.Game, fromRequest string) (model.Game, error) {
	raw := string(fromData)
	if raw == "" {
		raw = fromRequest
	}
	game, ok := model.ParseGame(raw)
	if !ok {
		return "", &ValidationError{Field: "game", Reason: fmt.Sprintf("%q is not one of %v", raw, model.AllGames)}
	}
	return game, nil
}

func validateVersion(v *model.GameVersion, reqGame string) error {
	game, err := resolveGame(v.Game, reqGame)
	if err != nil {
		return err
	}
	v.Game = game
	v.VersionNumber = strings.TrimSpace(v.VersionNumber)
	if v.VersionNumber == "" {
		return &ValidationError{Field: "data.version_number", Reason: "required"}
	}
	if v.ReleaseDate.IsZero() {
		return &ValidationError{Field: "data.release_date", Reason: "required"}
	}
	v.ReleaseDate = v.ReleaseDate.UTC()
	v.CreatedAt, v.UpdatedAt = time.Time{}, time.Time{}
	return nil
}

func validateBanner(b *model.Banner, reqGame string) error {
	game, err := resolveGame(b.Game, reqGame)
	if err != nil {
		return err
	}
	b.Game = game
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return &ValidationError{Field: "data.name", Reason: "required"}
	}
	if b.BannerType == "" {
		b.BannerType = model.BannerCharacter
	}
	if !b.BannerType.Valid() {
		return &ValidationError{Field: "data.banner_type", Reason: fmt.Sprintf("unknown banner type %q", b.BannerType)}
	}
	if b.Rarity == 0 {
		b.Rarity = model.DefaultRarity
	}
	if b.Rarity < 1 || b.Rarity > 5 {
		return &ValidationError{Field: "data.rarity", Reason: "must be between 1 and 5"}
	}
	if err := validateWindow(b.StartDate.IsZero(), b.EndDate.IsZero(), b.EndDate.Before(b.StartDate)); err != nil {
		return err
	}
	b.StartDate, b.EndDate = b.StartDate.UTC(), b.EndDate.UTC()
	b.CreatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return nil
}

func validateEvent(e *model.GameEvent, reqGame string) error {
	game, err := resolveGame(e.Game, reqGame)
	if err != nil {
		return err
	}
	e.Game = game
	e.EventName = strings.TrimSpace(e.EventName)
	if e.EventName == "" {
		return &ValidationError{Field: "data.event_name", Reason: "required"}
	}
	if err := validateWindow(e.StartDate.IsZero(), e.EndDate.IsZero(), e.EndDate.Before(e.StartDate)); err != nil {
		return err
	}
	e.StartDate, e.EndDate = e.StartDate.UTC(), e.EndDate.UTC()
	e.CreatedAt, e.UpdatedAt = time.Time{}, time.Time{}
	return nil
}

func validateWindow(startMissing, endMissing, reversed bool) error {
	switch {
	case startMissing:
		return &ValidationError{Field: "data.start_date", Reason: "required"}
	case endMissing:
		return &ValidationError{Field: "data.end_date", Reason: "required"}
	case reversed:
		return &ValidationError{Field: "data.end_date", Reason: "must not be before start_date"}
	}
	return nil
}
