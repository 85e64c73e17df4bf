package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量
const (
	TypePresenceSweep = "presence:sweep" // 周期性下线长时间无活动的账号
)

// PresenceSweepPayload 是在线状态清理任务的数据
type PresenceSweepPayload struct {
	IdleTimeoutSeconds int64 `json:"idle_timeout_seconds"`
}

// IdleTimeout 返回负载中的超时时间
func (p PresenceSweepPayload) IdleTimeout() time.Duration {
	return time.Duration(p.IdleTimeoutSeconds) * time.Second
}

// NewPresenceSweepTask 创建在线状态清理任务
func NewPresenceSweepTask(idleTimeout time.Duration) (*asynq.Task, error) {
	if idleTimeout < time.Second {
		return nil, fmt.Errorf("idle timeout %s is too short", idleTimeout)
	}
	payload, err := json.Marshal(PresenceSweepPayload{IdleTimeoutSeconds: int64(idleTimeout / time.Second)})
	if err != nil {
		return nil, err
	}
	// 清理是幂等的，失败后等下一个周期即可
	return asynq.NewTask(TypePresenceSweep, payload, asynq.MaxRetry(1)), nil
}

// ParsePresenceSweepPayload 解析任务负载
func ParsePresenceSweepPayload(data []byte) (PresenceSweepPayload, error) {
	var p PresenceSweepPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("unmarshal presence sweep payload: %w", err)
	}
	if p.IdleTimeoutSeconds <= 0 {
		return p, fmt.Errorf("invalid idle timeout %d", p.IdleTimeoutSeconds)
	}
	return p, nil
}
