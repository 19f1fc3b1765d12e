package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"GachaSync/internal/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（对应 config/config.yaml）
type Config struct {
	Server          ServerConfig              `mapstructure:"server"`           // 服务器配置
	Database        DatabaseConfig            `mapstructure:"database"`         // PostgreSQL配置
	Sync            SyncConfig                `mapstructure:"sync"`             // 同步与派生参数
	Sources         map[string][]SourceConfig `mapstructure:"sources"`          // 每个游戏的抓取来源（按顺序执行）
	Catalogue       CatalogueConfig           `mapstructure:"catalogue"`        // 角色图鉴接口
	Redis           RedisConfig               `mapstructure:"redis"`            // 同步结果通知
	CharacterImages map[string]string         `mapstructure:"character_images"` // 角色名→立绘地址
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SyncConfig 同步调度与卡池派生参数
type SyncConfig struct {
	Cron           string   `mapstructure:"cron"`            // 定时同步Cron表达式，空则不启用
	EnabledGames   []string `mapstructure:"enabled_games"`   // 定时任务同步的游戏
	BannerDays     int      `mapstructure:"banner_days"`     // 卡池持续天数
	LiveLeadDays   int      `mapstructure:"live_lead_days"`  // 倒计时页第一个角色视为已开放的天数
	ReferenceHour  int      `mapstructure:"reference_hour"`  // 无时刻日期的默认小时
	SourceTimezone string   `mapstructure:"source_timezone"` // 来源站点时区
	FetchTimeout   int      `mapstructure:"fetch_timeout"`   // 单次抓取超时（秒）
}

// SourceConfig 单个抓取来源
type SourceConfig struct {
	Adapter string `mapstructure:"adapter"` // 适配器名称：eurogamer/gengamer
	URL     string `mapstructure:"url"`     // 页面地址
	Proxy   string `mapstructure:"proxy"`   // 代理地址
	Timeout int    `mapstructure:"timeout"` // 请求超时（秒），0则用全局
}

// CatalogueConfig 角色图鉴
type CatalogueConfig struct {
	GenshinURL string `mapstructure:"genshin_url"`
	Timeout    int    `mapstructure:"timeout"`
}

// RedisConfig Redis地址为空时不推送
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig 加载 config/config.yaml，敏感项从 .env / 环境变量覆盖
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录加载
func LoadConfigFrom(dir string) (*Config, error) {
	// .env 可不存在
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("sync.banner_days", 21)
	v.SetDefault("sync.live_lead_days", 7)
	v.SetDefault("sync.reference_hour", 10)
	v.SetDefault("sync.source_timezone", "UTC")
	v.SetDefault("sync.fetch_timeout", 15)
	v.SetDefault("sync.enabled_games", []string{string(model.GameGenshin), string(model.GameStarRail)})
	v.SetDefault("catalogue.genshin_url", "https://genshin.dev/api/characters")
	v.SetDefault("catalogue.timeout", 10)
}

// overrideFromEnv 用环境变量覆盖敏感配置（优先级 env > yaml）
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("SYNC_CRON"); v != "" {
		cfg.Sync.Cron = v
	}
}

// Validate 启动前检查
func (c *Config) Validate() error {
	for game := range c.Sources {
		if _, ok := model.ParseGame(game); !ok {
			return fmt.Errorf("sources 中存在未知游戏: %s", game)
		}
	}
	for _, game := range c.Sync.EnabledGames {
		if _, ok := model.ParseGame(game); !ok {
			return fmt.Errorf("sync.enabled_games 中存在未知游戏: %s", game)
		}
	}
	if c.Sync.BannerDays <= 0 {
		return fmt.Errorf("sync.banner_days 必须大于0")
	}
	if c.Sync.ReferenceHour < 0 || c.Sync.ReferenceHour > 23 {
		return fmt.Errorf("sync.reference_hour 超出范围: %d", c.Sync.ReferenceHour)
	}
	return nil
}

// Location 来源站点时区
func (s SyncConfig) Location() (*time.Location, error) {
	if s.SourceTimezone == "" || strings.EqualFold(s.SourceTimezone, "UTC") {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.SourceTimezone)
	if err != nil {
		return nil, fmt.Errorf("加载时区%s失败: %w", s.SourceTimezone, err)
	}
	return loc, nil
}

// TimeoutOr 抓取超时，未配置时回退到全局
func (s SourceConfig) TimeoutOr(fallback int) time.Duration {
	if s.Timeout > 0 {
		return time.Duration(s.Timeout) * time.Second
	}
	if fallback > 0 {
		return time.Duration(fallback) * time.Second
	}
	return 15 * time.Second
}

// SourcesFor 指定游戏的来源列表
func (c *Config) SourcesFor(game model.Game) []SourceConfig {
	return c.Sources[string(game)]
}
