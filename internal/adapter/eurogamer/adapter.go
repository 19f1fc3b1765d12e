package eurogamer

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"GachaSync/internal/adapter"
	"GachaSync/internal/adapter/extract"
	"GachaSync/internal/config"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/sirupsen/logrus"
)

// Name 适配器注册名
const Name = "eurogamer"

func init() {
	adapter.Register(Name, NewEurogamerAdapter)
}

// 页面上的固定文案
const (
	currentMarker       = "current Banners in Genshin Impact feature"
	nextMarker          = "are on the next Banners"
	currentWeaponMarker = "Current Epitome Invocation Banner"
	nextWeaponMarker    = "next boosted weapons in Phase 2"
)

// 形如 Tuesday 23rd December
const dayMonth = `[A-Za-z]+day,?\s+\d{1,2}(?:st|nd|rd|th)\s+[A-Za-z]+`

var (
	versionRe      = regexp.MustCompile(`(?i)version\s+(\d+\.\d+)`)
	endOnRe        = regexp.MustCompile(`(?i)end on (` + dayMonth + `)`)
	releasedOnRe   = regexp.MustCompile(`(?i)set to be released on (` + dayMonth + `)`)
	weaponRunsRe   = regexp.MustCompile(`(?i)current Epitome Invocation Banner runs until (` + dayMonth + `)`)
	currentWeapons = regexp.MustCompile(`(?is)` + currentWeaponMarker + `.*?5-Star weapons.*?<ul[^>]*>(.*?)</ul>`)
	nextWeapons    = regexp.MustCompile(`(?is)` + nextWeaponMarker + `.*?<ul[^>]*>(.*?)</ul>`)
	weaponTypeRe   = regexp.MustCompile(`(?i)\((?:sword|bow|claymore|polearm|catalyst)\)`)
)

type Adapter struct {
	game       model.Game
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewEurogamerAdapter(game model.Game, src config.SourceConfig, client *http.Client, logger *logrus.Logger) interfaces.SiteAdapter {
	return &Adapter{
		game:       game,
		url:        src.URL,
		httpClient: client,
		logger:     logger,
	}
}

// GetName ========== 实现SiteAdapter接口 ==========
func (a *Adapter) GetName() string {
	return Name
}

func (a *Adapter) GetGame() model.Game {
	return a.game
}

func (a *Adapter) FetchRecords(ctx context.Context) ([]*model.ScrapedRecord, error) {
	a.logger.WithField("url", a.url).Info("开始抓取Eurogamer卡池页")
	body, err := adapter.FetchPage(ctx, a.httpClient, Name, a.url)
	if err != nil {
		return nil, err
	}

	records, err := Extract(body, a.game)
	if err != nil {
		return nil, &adapter.FetchError{Source: Name, URL: a.url, Err: err}
	}

	a.logger.WithFields(logrus.Fields{
		"game":    a.game,
		"records": len(records),
	}).Info("Eurogamer抓取完成")
	return records, nil
}

// Extract 从页面抽取当期/下期角色卡池与武器卡池，各自独立成记录
func Extract(body []byte, game model.Game) ([]*model.ScrapedRecord, error) {
	doc, err := extract.Document(body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	markup := string(body)
	text := extract.PlainText(doc)

	version := extract.Submatch(versionRe, text, 1).Value

	var records []*model.ScrapedRecord

	// 1. 当期角色卡池："current Banners in Genshin Impact feature <strong>A</strong> and <strong>B</strong>"
	if _, after, ok := extract.Paragraph(markup, currentMarker); ok {
		if chars := extract.StrongEntities(after); len(chars) > 0 {
			records = append(records, &model.ScrapedRecord{
				Game:             game,
				Source:           Name,
				Phase:            model.PhaseCurrent,
				PhaseNumber:      1,
				BannerType:       model.BannerCharacter,
				Version:          version,
				Title:            phaseTitle(version, 1),
				FeaturedEntities: chars,
				EndDate:          extract.Submatch(endOnRe, text, 1).Value,
			})
		}
	}

	// 2. 下期角色卡池："<strong>A</strong> and <strong>B</strong> are on the next Banners"
	releaseText := extract.Submatch(releasedOnRe, text, 1).Value
	if before, _, ok := extract.Paragraph(markup, nextMarker); ok {
		if chars := extract.StrongEntities(before); len(chars) > 0 {
			records = append(records, &model.ScrapedRecord{
				Game:             game,
				Source:           Name,
				Phase:            model.PhaseNext,
				PhaseNumber:      2,
				BannerType:       model.BannerCharacter,
				Version:          version,
				Title:            phaseTitle(version, 2),
				FeaturedEntities: chars,
				ReleaseDate:      releaseText,
			})
		}
	}

	// 3. 当期武器池：只保留带武器类型后缀的条目
	if m := currentWeapons.FindStringSubmatch(markup); m != nil {
		var weapons []string
		for _, item := range extract.ListItems(m[1]) {
			if weaponTypeRe.MatchString(item) {
				weapons = append(weapons, item)
			}
		}
		if len(weapons) > 0 {
			records = append(records, &model.ScrapedRecord{
				Game:             game,
				Source:           Name,
				Phase:            model.PhaseCurrent,
				PhaseNumber:      1,
				BannerType:       model.BannerWeapon,
				Version:          version,
				Title:            phaseTitle(version, 1) + " Weapons",
				FeaturedEntities: weapons,
				EndDate:          extract.Submatch(weaponRunsRe, text, 1).Value,
			})
		}
	}

	// 4. 下期武器池，上线时间与下期角色池相同
	if m := nextWeapons.FindStringSubmatch(markup); m != nil {
		if weapons := extract.ListItems(m[1]); len(weapons) > 0 {
			records = append(records, &model.ScrapedRecord{
				Game:             game,
				Source:           Name,
				Phase:            model.PhaseNext,
				PhaseNumber:      2,
				BannerType:       model.BannerWeapon,
				Version:          version,
				Title:            phaseTitle(version, 2) + " Weapons",
				FeaturedEntities: weapons,
				ReleaseDate:      releaseText,
			})
		}
	}

	return records, nil
}

func phaseTitle(version string, phase int) string {
	return strings.TrimSpace(fmt.Sprintf("%s Phase %d", version, phase))
}
