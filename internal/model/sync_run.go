package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncRun 每次落库类操作的审计记录，保留原始抓取结果便于排查
type SyncRun struct {
	ID           string         `gorm:"column:id;type:varchar(36);primaryKey;comment:主键UUID" json:"id"`
	Game         Game           `gorm:"column:game;type:varchar(32);not null;index;comment:游戏" json:"game"`
	Action       string         `gorm:"column:action;type:varchar(64);not null;comment:触发动作" json:"action"`
	Success      bool           `gorm:"column:success;type:boolean;not null;comment:是否全部成功" json:"success"`
	SuccessCount int            `gorm:"column:success_count;type:int;not null;comment:成功条数" json:"success_count"`
	FailureCount int            `gorm:"column:failure_count;type:int;not null;comment:失败条数" json:"failure_count"`
	Failures     datatypes.JSON `gorm:"column:failures;comment:失败明细" json:"failures"`
	Scraped      datatypes.JSON `gorm:"column:scraped;comment:原始抓取数据" json:"scraped"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"created_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }

func (r *SyncRun) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SyncSummary 同步完成后推送给下游（倒计时页）的摘要
type SyncSummary struct {
	Game         Game      `json:"game"`
	Action       string    `json:"action"`
	Success      bool      `json:"success"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Versions     []string  `json:"versions"`
	Banners      []string  `json:"banners"`
	SyncedAt     time.Time `json:"synced_at"`
}
