package model

import "strings"

// Game 游戏枚举（只支持两个作品）
type Game string

const (
	GameGenshin  Game = "genshin_impact"
	GameStarRail Game = "honkai_star_rail"
)

// AllGames 固定顺序，双游戏并发抓取和定时任务都按这个顺序输出
var AllGames = []Game{GameGenshin, GameStarRail}

// Valid 判断是否为已知游戏
func (g Game) Valid() bool {
	return g == GameGenshin || g == GameStarRail
}

// ParseGame 宽松解析（去空格、忽略大小写）
func ParseGame(s string) (Game, bool) {
	g := Game(strings.ToLower(strings.TrimSpace(s)))
	return g, g.Valid()
}

// BannerType 卡池类型
type BannerType string

const (
	BannerCharacter BannerType = "character"
	BannerWeapon    BannerType = "weapon"
	BannerStandard  BannerType = "standard"
)

func (t BannerType) Valid() bool {
	switch t {
	case BannerCharacter, BannerWeapon, BannerStandard:
		return true
	}
	return false
}
