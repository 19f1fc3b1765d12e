package api

import (
	"context"
	"errors"
	"net/http"

	"GachaSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActionRunner 动作分发
type ActionRunner interface {
	RunAction(ctx context.Context, req service.ActionRequest) (*service.ActionResponse, error)
}

// ActionHandler 后台/定时器调用的动作入口
type ActionHandler struct {
	runner ActionRunner
	logger *logrus.Logger
}

func NewActionHandler(runner ActionRunner, logger *logrus.Logger) *ActionHandler {
	return &ActionHandler{runner: runner, logger: logger}
}

// HandleAction 执行动作
// POST /api/actions  {"action": "...", "game": "...", "data": {...}}
func (h *ActionHandler) HandleAction(c *gin.Context) {
	var req service.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, service.ActionResponse{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}

	resp, err := h.runner.RunAction(c.Request.Context(), req)
	if err != nil {
		var unknown *service.UnknownActionError
		var invalid *service.ValidationError
		if errors.As(err, &unknown) || errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, service.ActionResponse{Success: false, Error: err.Error()})
			return
		}
		h.logger.WithError(err).WithField("action", req.Action).Error("动作执行失败")
		c.JSON(http.StatusInternalServerError, service.ActionResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
