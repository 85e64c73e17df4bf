package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"cordi-chat/internal/tasks"
)

// Scheduler 负责注册并触发周期任务
type Scheduler struct {
	scheduler *asynq.Scheduler
	log       *logrus.Entry
}

// NewScheduler 创建 Scheduler，并按 schedule 注册在线状态清理任务。
// schedule 使用 cron 语法或 "@every 1m" 形式。
func NewScheduler(redisOpt asynq.RedisClientOpt, schedule string, idleTimeout time.Duration, logger *logrus.Logger) (*Scheduler, error) {
	logEntry := logger.WithField("component", "scheduler")
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})

	task, err := tasks.NewPresenceSweepTask(idleTimeout)
	if err != nil {
		return nil, fmt.Errorf("create presence sweep task: %w", err)
	}
	entryID, err := scheduler.Register(schedule, task, asynq.Queue("low"))
	if err != nil {
		return nil, fmt.Errorf("register presence sweep task with schedule %q: %w", schedule, err)
	}
	logEntry.Infof("Presence sweep task registered with schedule '%s' (EntryID: %s)", schedule, entryID)

	return &Scheduler{scheduler: scheduler, log: logEntry}, nil
}

// Start 在后台启动 Scheduler，不阻塞
func (s *Scheduler) Start() error {
	s.log.Info("Asynq scheduler starting...")
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

// Shutdown 停止 Scheduler
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.log.Info("Asynq scheduler stopped.")
}
