package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cordi-chat/internal/tasks"
)

type fakeSweeper struct {
	got time.Duration
	n   int64
	err error
}

func (f *fakeSweeper) SweepIdle(_ context.Context, idleTimeout time.Duration) (int64, error) {
	f.got = idleTimeout
	return f.n, f.err
}

func TestPresenceSweepHandler_ProcessTask(t *testing.T) {
	sweeper := &fakeSweeper{n: 2}
	h := NewPresenceSweepHandler(sweeper)

	task, err := tasks.NewPresenceSweepTask(10 * time.Minute)
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, 10*time.Minute, sweeper.got)
}

func TestPresenceSweepHandler_Errors(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	h := NewPresenceSweepHandler(sweeper)

	task, err := tasks.NewPresenceSweepTask(time.Minute)
	require.NoError(t, err)
	assert.Error(t, h.ProcessTask(context.Background(), task))

	bad := asynq.NewTask(tasks.TypePresenceSweep, []byte(`{}`))
	err = h.ProcessTask(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
