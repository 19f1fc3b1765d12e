package model

// Phase 抓取记录所处阶段，决定派生卡池时间窗口的方式
type Phase string

const (
	PhaseCurrent   Phase = "current"   // 当前卡池，带结束时间
	PhaseNext      Phase = "next"      // 下期卡池，带上线时间
	PhaseCountdown Phase = "countdown" // 倒计时页：第一个角色在线，后面的等新版本上线
)

// ScrapedRecord 适配器输出的中间结构（不落库）
type ScrapedRecord struct {
	Game             Game       `json:"game"`
	Source           string     `json:"source"`
	Phase            Phase      `json:"phase"`
	PhaseNumber      int        `json:"phase_number,omitempty"`
	BannerType       BannerType `json:"banner_type"`
	Version          string     `json:"version"`
	Title            string     `json:"title"`
	FeaturedEntities []string   `json:"featured_entities"`
	ReleaseDate      string     `json:"release_date,omitempty"`
	EndDate          string     `json:"end_date,omitempty"`
	ImageURL         *string    `json:"image_url"`
}
