package loadstate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTaskSettlesReady(t *testing.T) {
	task := Start(context.Background(), zap.NewNop(), "tools", func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	})
	st := task.Wait(context.Background())
	require.True(t, st.IsReady())
	data, ok := st.Data()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, data)
	assert.Empty(t, st.Cause())
	assert.Equal(t, "ready", st.Status().String())
}

func TestTaskFailureIsLoggedNotThrown(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	task := Start(context.Background(), zap.New(core), "content", func(context.Context) (int, error) {
		return 0, errors.New("status 503")
	})
	st := task.Wait(context.Background())
	require.True(t, st.IsFailed())
	assert.NotEmpty(t, st.Cause())
	assert.Contains(t, st.Cause(), "status 503")
	_, ok := st.Data()
	assert.False(t, ok)

	entries := logs.FilterMessage("document load failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "content", entries[0].ContextMap()["document"])
}

func TestTaskRecoversPanics(t *testing.T) {
	task := Start(context.Background(), nil, "tools", func(context.Context) (int, error) {
		panic("boom")
	})
	st := task.Wait(context.Background())
	require.True(t, st.IsFailed())
	assert.Contains(t, st.Cause(), "boom")
}

func TestTaskCancelDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	task := Start(context.Background(), zap.NewNop(), "tools", func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	})
	require.True(t, task.State().IsLoading())

	task.Cancel()
	close(release)
	<-task.Done()

	assert.True(t, task.State().IsLoading(), "result arriving after teardown must be dropped")
}

func TestTaskWaitCancelsOnContextEnd(t *testing.T) {
	var sawCancel atomic.Bool
	task := Start(context.Background(), zap.NewNop(), "tools", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		sawCancel.Store(true)
		return 0, ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	st := task.Wait(ctx)
	assert.True(t, st.IsLoading())

	<-task.Done()
	assert.True(t, sawCancel.Load())
	assert.True(t, task.State().IsLoading())
}

func TestTaskTimeoutSettlesToError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	task := Start(ctx, zap.NewNop(), "content", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	st := task.Wait(context.Background())
	require.True(t, st.IsFailed())
	assert.Contains(t, st.Cause(), "deadline exceeded")
}

func TestWaitOutlivingFetchDeadlineSeesError(t *testing.T) {
	fetchCtx, cancelFetch := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelFetch()
	waitCtx, cancelWait := context.WithTimeout(context.Background(), 20*time.Millisecond+time.Second)
	defer cancelWait()

	core, logs := observer.New(zap.ErrorLevel)
	task := Start(fetchCtx, zap.New(core), "tools", func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	st := task.Wait(waitCtx)
	require.True(t, st.IsFailed())
	assert.Equal(t, 1, logs.FilterMessage("document load failed").Len())
}

func TestCancelAfterSettleKeepsState(t *testing.T) {
	task := Start(context.Background(), zap.NewNop(), "tools", func(context.Context) (string, error) {
		return "ok", nil
	})
	<-task.Done()
	task.Cancel()
	task.Cancel()
	require.True(t, task.State().IsReady())
}

func TestObserverCalledOnce(t *testing.T) {
	var calls atomic.Int32
	var got Status
	task := Start(context.Background(), zap.NewNop(), "tools", func(context.Context) (int, error) {
		return 1, nil
	}, WithObserver(func(name string, status Status, _ time.Duration) {
		calls.Add(1)
		got = status
		assert.Equal(t, "tools", name)
	}))
	task.Wait(context.Background())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Ready, got)
}

func TestFailedStateDefaultsCause(t *testing.T) {
	st := FailedState[int]("")
	assert.True(t, st.IsFailed())
	assert.NotEmpty(t, st.Cause())
}
