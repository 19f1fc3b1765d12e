package api

import (
	"context"
	"net/http"
	"strconv"

	"GachaSync/internal/model"
	"GachaSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScheduleReader 排期查询
type ScheduleReader interface {
	GetSchedule(ctx context.Context, game model.Game) (*service.Schedule, error)
}

// SyncRunLister 同步审计查询
type SyncRunLister interface {
	ListSyncRuns(ctx context.Context, game model.Game, limit int) ([]*model.SyncRun, error)
}

// ScheduleHandler 提供给倒计时页的只读接口
type ScheduleHandler struct {
	schedules ScheduleReader
	runs      SyncRunLister
	logger    *logrus.Logger
}

func NewScheduleHandler(schedules ScheduleReader, runs SyncRunLister, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, runs: runs, logger: logger}
}

// GetSchedule 版本/卡池/活动 + 下个版本
// GET /api/schedule/:game
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	game, ok := model.ParseGame(c.Param("game"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game: " + c.Param("game")})
		return
	}
	schedule, err := h.schedules.GetSchedule(c.Request.Context(), game)
	if err != nil {
		h.logger.WithError(err).WithField("game", game).Error("查询排期失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// ListSyncRuns 最近的同步记录
// GET /api/sync-runs/:game?limit=20
func (h *ScheduleHandler) ListSyncRuns(c *gin.Context) {
	game, ok := model.ParseGame(c.Param("game"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown game: " + c.Param("game")})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.runs.ListSyncRuns(c.Request.Context(), game, limit)
	if err != nil {
		h.logger.WithError(err).WithField("game", game).Error("查询同步记录失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
