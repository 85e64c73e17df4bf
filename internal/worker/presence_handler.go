package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"cordi-chat/internal/tasks"
)

// IdleSweeper 把长时间无活动的在线账号标记为离线，由 service.UserService 实现
type IdleSweeper interface {
	SweepIdle(ctx context.Context, idleTimeout time.Duration) (int64, error)
}

// PresenceSweepHandler 处理周期性的在线状态清理任务
type PresenceSweepHandler struct {
	sweeper IdleSweeper
}

// NewPresenceSweepHandler 创建 Handler 实例
func NewPresenceSweepHandler(sweeper IdleSweeper) *PresenceSweepHandler {
	if sweeper == nil {
		panic("IdleSweeper cannot be nil for PresenceSweepHandler")
	}
	return &PresenceSweepHandler{sweeper: sweeper}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *PresenceSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	currentRetry, _ := asynq.GetRetryCount(ctx)
	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     currentRetry,
	})

	payload, err := tasks.ParsePresenceSweepPayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Invalid presence sweep payload")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	// 避免任务卡死
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	n, err := h.sweeper.SweepIdle(sweepCtx, payload.IdleTimeout())
	if err != nil {
		logCtx.WithError(err).Error("Presence sweep failed")
		return fmt.Errorf("presence sweep: %w", err)
	}

	if n > 0 {
		logCtx.WithField("marked_offline", n).Info("Presence sweep marked idle users offline")
	} else {
		logCtx.Debug("Presence sweep found no idle users")
	}
	return nil
}
