package gengamer

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"GachaSync/internal/adapter"
	"GachaSync/internal/adapter/extract"
	"GachaSync/internal/config"
	"GachaSync/internal/interfaces"
	"GachaSync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// Name 适配器注册名
const Name = "gengamer"

func init() {
	adapter.Register(Name, NewGengamerAdapter)
}

var (
	versionRe     = regexp.MustCompile(`(\d+\.\d+)`)
	countdownRe   = regexp.MustCompile(`(?i)\s*Banner\s*Countdown\s*`)
	releaseDateRe = regexp.MustCompile(`(?i)Release Date[^:]*:\s*([A-Za-z]+,\s*[A-Za-z]+\s+\d{1,2}\s+at\s+\d{1,2}:\d{2}\s*[AP]M\s+[A-Za-z]+)`)
	hiddenDateRe  = regexp.MustCompile(`(?i)is set to release on ([A-Za-z]+\.?\s+\d{1,2},\s*\d{4})`)
)

type Adapter struct {
	game       model.Game
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewGengamerAdapter(game model.Game, src config.SourceConfig, client *http.Client, logger *logrus.Logger) interfaces.SiteAdapter {
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
	a.logger.WithField("url", a.url).Info("开始抓取倒计时页")
	body, err := adapter.FetchPage(ctx, a.httpClient, Name, a.url)
	if err != nil {
		return nil, err
	}

	record, err := Extract(body, a.game)
	if err != nil {
		return nil, &adapter.FetchError{Source: Name, URL: a.url, Err: err}
	}

	a.logger.WithFields(logrus.Fields{
		"game":       a.game,
		"version":    record.Version,
		"characters": record.FeaturedEntities,
		"release":    record.ReleaseDate,
	}).Info("倒计时页抓取完成")
	return []*model.ScrapedRecord{record}, nil
}

// Extract 倒计时页只有一条记录：标题、UP角色、上线时间、背景图
func Extract(body []byte, game model.Game) (*model.ScrapedRecord, error) {
	doc, err := extract.Document(body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	// 1. H1：标题与版本号
	title := extract.SelectionText(doc.Find("h1").First())
	version := extract.Submatch(versionRe, title.Value, 1)

	// 2. H2 内第一个加粗：UP角色
	featured := extract.SelectionText(doc.Find("h2 strong").First())
	characters := extract.SplitEntities(countdownRe.ReplaceAllString(featured.Value, " "))

	// 3. 上线时间，页面隐藏文案兜底
	release := releaseText(doc)
	if !release.Found {
		release = extract.Submatch(hiddenDateRe, extract.PlainText(doc), 1)
	}

	// 4. 背景图
	image := extract.Missing
	if style, ok := doc.Find("#bg-imageHome").First().Attr("style"); ok {
		image = extract.CSSBackgroundURL(style)
	}

	return &model.ScrapedRecord{
		Game:             game,
		Source:           Name,
		Phase:            model.PhaseCountdown,
		BannerType:       model.BannerCharacter,
		Version:          version.Value,
		Title:            title.Value,
		FeaturedEntities: characters,
		ReleaseDate:      release.Value,
		ImageURL:         image.Ptr(),
	}, nil
}

func releaseText(doc *goquery.Document) extract.Field {
	field := extract.Missing
	doc.Find(`p[id^="display-time"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		field = extract.Submatch(releaseDateRe, extract.CleanText(s.Text()), 1)
		return !field.Found
	})
	return field
}
