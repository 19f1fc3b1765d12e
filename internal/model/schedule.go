package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRarity 未指定时卡池星级
const DefaultRarity = 5

// Banner 卡池排期，(game, name) 为自然键
type Banner struct {
	ID                string     `gorm:"column:id;type:varchar(36);primaryKey;comment:主键UUID" json:"id"`
	Game              Game       `gorm:"column:game;type:varchar(32);not null;uniqueIndex:uq_banner_game_name;comment:游戏" json:"game"`
	Name              string     `gorm:"column:name;type:varchar(256);not null;uniqueIndex:uq_banner_game_name;comment:卡池名称（自然键）" json:"name"`
	BannerType        BannerType `gorm:"column:banner_type;type:varchar(16);not null;comment:character/weapon/standard" json:"banner_type"`
	FeaturedCharacter *string    `gorm:"column:featured_character;type:text;comment:UP角色或武器，多个用逗号分隔" json:"featured_character"`
	StartDate         time.Time  `gorm:"column:start_date;type:timestamp;not null;comment:开始时间" json:"start_date"`
	EndDate           time.Time  `gorm:"column:end_date;type:timestamp;not null;comment:结束时间" json:"end_date"`
	ImageURL          *string    `gorm:"column:image_url;type:varchar(512);comment:图片地址" json:"image_url"`
	Rarity            int        `gorm:"column:rarity;type:int;default:5;comment:星级" json:"rarity"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updated_at"`
}

// GameVersion 版本，(game, version_number) 为自然键
type GameVersion struct {
	ID            string    `gorm:"column:id;type:varchar(36);primaryKey;comment:主键UUID" json:"id"`
	Game          Game      `gorm:"column:game;type:varchar(32);not null;uniqueIndex:uq_version_game_number;comment:游戏" json:"game"`
	VersionNumber string    `gorm:"column:version_number;type:varchar(32);not null;uniqueIndex:uq_version_game_number;comment:版本号（自然键）" json:"version_number"`
	ReleaseDate   time.Time `gorm:"column:release_date;type:timestamp;not null;comment:上线时间" json:"release_date"`
	Description   *string   `gorm:"column:description;type:text;comment:描述" json:"description"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updated_at"`
}

// GameEvent 游戏活动，只由后台手动录入
type GameEvent struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey;comment:主键UUID" json:"id"`
	Game        Game      `gorm:"column:game;type:varchar(32);not null;index;comment:游戏" json:"game"`
	EventName   string    `gorm:"column:event_name;type:varchar(256);not null;comment:活动名称" json:"event_name"`
	Description *string   `gorm:"column:description;type:text;comment:描述" json:"description"`
	StartDate   time.Time `gorm:"column:start_date;type:timestamp;not null;comment:开始时间" json:"start_date"`
	EndDate     time.Time `gorm:"column:end_date;type:timestamp;not null;comment:结束时间" json:"end_date"`
	Rewards     *string   `gorm:"column:rewards;type:text;comment:奖励" json:"rewards"`
	ImageURL    *string   `gorm:"column:image_url;type:varchar(512);comment:图片地址" json:"image_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (Banner) TableName() string      { return "banners" }
func (GameVersion) TableName() string { return "game_versions" }
func (GameEvent) TableName() string   { return "events" }

// BeforeCreate 补全UUID主键
func (b *Banner) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (v *GameVersion) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (e *GameEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// LiveAt 判断卡池在t时刻是否开放
func (b *Banner) LiveAt(t time.Time) bool {
	return !t.Before(b.StartDate) && t.Before(b.EndDate)
}
