package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"GachaSync/internal/dates"
	"GachaSync/internal/enrich"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	defaultBannerDays   = 21
	defaultLiveLeadDays = 7
	weaponsLabel        = "Weapons"
)

// Derivation 单条抓取记录派生出的候选数据
type Derivation struct {
	Banners []*model.Banner
	Version *model.GameVersion
}

// Deriver 抓取记录 → 卡池/版本候选
type Deriver struct {
	Normalizer   *dates.Normalizer
	Images       *enrich.ImageTable
	BannerDays   int
	LiveLeadDays int
	Now          func() time.Time // 为空时跟随 Normalizer 的时钟
	logger       *logrus.Logger
}

// NewDeriver 天数<=0时使用默认值（21天卡池、7天提前开放）
func NewDeriver(normalizer *dates.Normalizer, images *enrich.ImageTable, bannerDays, liveLeadDays int, logger *logrus.Logger) *Deriver {
	if bannerDays <= 0 {
		bannerDays = defaultBannerDays
	}
	if liveLeadDays <= 0 {
		liveLeadDays = defaultLiveLeadDays
	}
	if images == nil {
		images = enrich.NewImageTable(nil)
	}
	return &Deriver{
		Normalizer:   normalizer,
		Images:       images,
		BannerDays:   bannerDays,
		LiveLeadDays: liveLeadDays,
		logger:       logger,
	}
}

func (d *Deriver) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return d.Normalizer.Now().UTC()
}

func (d *Deriver) bannerSpan() time.Duration {
	return time.Duration(d.BannerDays) * 24 * time.Hour
}

// Derive 按阶段计算时间窗口；日期解析失败时使用 now+卡池天数 兜底
func (d *Deriver) Derive(rec *model.ScrapedRecord) *Derivation {
	now := d.now()
	out := &Derivation{}
	entities := nonEmpty(rec.FeaturedEntities)

	bannerType := rec.BannerType
	if bannerType == "" {
		bannerType = model.BannerCharacter
	}

	switch {
	case bannerType == model.BannerWeapon:
		if len(entities) == 0 {
			break
		}
		start, end := d.window(rec, now, 0)
		featured := strings.Join(entities, ", ")
		out.Banners = append(out.Banners, &model.Banner{
			Game:              rec.Game,
			Name:              d.bannerName(rec, weaponsLabel),
			BannerType:        model.BannerWeapon,
			FeaturedCharacter: &featured,
			StartDate:         start,
			EndDate:           end,
			Rarity:            model.DefaultRarity,
		})
	default:
		for i, entity := range entities {
			start, end := d.window(rec, now, i)
			character := entity
			out.Banners = append(out.Banners, &model.Banner{
				Game:              rec.Game,
				Name:              d.bannerName(rec, entity),
				BannerType:        bannerType,
				FeaturedCharacter: &character,
				StartDate:         start,
				EndDate:           end,
				ImageURL:          d.Images.Resolve(entity, rec.ImageURL),
				Rarity:            model.DefaultRarity,
			})
		}
	}

	if rec.Version != "" {
		out.Version = d.version(rec, now, entities, out.Banners)
	}
	return out
}

// window 计算第index个实体的 [start, end)
func (d *Deriver) window(rec *model.ScrapedRecord, now time.Time, index int) (time.Time, time.Time) {
	span := d.bannerSpan()
	switch rec.Phase {
	case model.PhaseCurrent:
		end := d.parse(rec, rec.EndDate, dates.PastAllowed, now)
		return end.Add(-span), end
	case model.PhaseCountdown:
		pivot := d.parse(rec, rec.ReleaseDate, dates.FutureBiased, now)
		if index > 0 {
			return pivot, pivot.Add(span)
		}
		start := now.AddDate(0, 0, -d.LiveLeadDays)
		// 新版本日期早于“已开放”起点时，保证 end >= start
		if pivot.Before(start) {
			start = pivot.Add(-span)
		}
		return start, pivot
	default:
		start := d.parse(rec, rec.ReleaseDate, dates.FutureBiased, now)
		return start, start.Add(span)
	}
}

// parse 解析失败或缺失时返回 now+卡池天数
func (d *Deriver) parse(rec *model.ScrapedRecord, text string, mode dates.Mode, now time.Time) time.Time {
	fallback := now.Add(d.bannerSpan())
	entry := d.logger.WithFields(logrus.Fields{
		"game":    rec.Game,
		"source":  rec.Source,
		"version": rec.Version,
		"phase":   rec.Phase,
	})
	if strings.TrimSpace(text) == "" {
		entry.Warn("抓取记录缺少日期，使用兜底日期")
		return fallback
	}
	t, err := d.Normalizer.Normalize(text, mode)
	if err != nil {
		var parseErr *dates.DateParseError
		if errors.As(err, &parseErr) {
			entry.WithField("text", parseErr.Text).Warn("日期解析失败，使用兜底日期")
		} else {
			entry.WithError(err).Warn("日期解析失败，使用兜底日期")
		}
		return fallback
	}
	return t
}

// bannerName 自然键，重复抓取必须稳定
func (d *Deriver) bannerName(rec *model.ScrapedRecord, label string) string {
	if rec.Version == "" {
		return label
	}
	if rec.Phase == model.PhaseCountdown {
		return fmt.Sprintf("%s - %s", rec.Version, label)
	}
	return fmt.Sprintf("%s Phase %d - %s", rec.Version, phaseNumber(rec), label)
}

func phaseNumber(rec *model.ScrapedRecord) int {
	if rec.PhaseNumber > 0 {
		return rec.PhaseNumber
	}
	if rec.Phase == model.PhaseNext {
		return 2
	}
	return 1
}

func (d *Deriver) version(rec *model.ScrapedRecord, now time.Time, entities []string, banners []*model.Banner) *model.GameVersion {
	var release time.Time
	switch {
	case rec.Phase == model.PhaseCountdown:
		release = d.parse(rec, rec.ReleaseDate, dates.FutureBiased, now)
	case len(banners) > 0:
		release = banners[0].StartDate
		for _, b := range banners[1:] {
			if b.StartDate.Before(release) {
				release = b.StartDate
			}
		}
	default:
		start, _ := d.window(rec, now, 0)
		release = start
	}
	description := "Version " + rec.Version
	if len(entities) > 0 {
		description += " - " + strings.Join(entities, " & ")
	}
	return &model.GameVersion{
		Game:          rec.Game,
		VersionNumber: rec.Version,
		ReleaseDate:   release,
		Description:   &description,
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
