// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tosho/internal/platform/scheduler"
)

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition never held")
}

/*
TestScheduler_PeriodicTask checks that a registered task fires repeatedly on
its interval and stops firing after Stop.
*/
func TestScheduler_PeriodicTask(t *testing.T) {
	sched := scheduler.New(slog.Default())

	var runs atomic.Int32
	sched.Register(scheduler.Task{
		ID:           "tick",
		Interval:     10 * time.Millisecond,
		InitialDelay: time.Millisecond,
		Run: func(_ context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	sched.Start(context.Background())
	waitFor(t, func() bool { return runs.Load() >= 3 })

	sched.Stop()
	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, runs.Load(), "no runs after Stop")
}

/*
TestScheduler_OneShotTask checks that a non-positive interval runs the task
exactly once.
*/
func TestScheduler_OneShotTask(t *testing.T) {
	sched := scheduler.New(slog.Default())

	var runs atomic.Int32
	sched.Register(scheduler.Task{
		ID:           "once",
		Interval:     0,
		InitialDelay: time.Millisecond,
		Run: func(_ context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	sched.Start(context.Background())
	waitFor(t, func() bool { return runs.Load() == 1 })

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	sched.Stop()
}

/*
TestScheduler_TaskErrorsAreIsolated checks that a failing or panicking task
never takes down its neighbors.
*/
func TestScheduler_TaskErrorsAreIsolated(t *testing.T) {
	sched := scheduler.New(slog.Default())

	var healthyRuns atomic.Int32
	sched.Register(scheduler.Task{
		ID:           "flaky",
		Interval:     5 * time.Millisecond,
		InitialDelay: time.Millisecond,
		Run: func(_ context.Context) error {
			return errors.New("boom")
		},
	})
	sched.Register(scheduler.Task{
		ID:           "panicky",
		Interval:     5 * time.Millisecond,
		InitialDelay: time.Millisecond,
		Run: func(_ context.Context) error {
			panic("boom")
		},
	})
	sched.Register(scheduler.Task{
		ID:           "healthy",
		Interval:     5 * time.Millisecond,
		InitialDelay: time.Millisecond,
		Run: func(_ context.Context) error {
			healthyRuns.Add(1)
			return nil
		},
	})

	sched.Start(context.Background())
	waitFor(t, func() bool { return healthyRuns.Load() >= 3 })
	sched.Stop()
}

/*
TestScheduler_StopCancelsTaskContext checks cooperative cancellation of an
in-flight callback.
*/
func TestScheduler_StopCancelsTaskContext(t *testing.T) {
	sched := scheduler.New(slog.Default())

	started := make(chan struct{})
	var sawCancel atomic.Bool

	sched.Register(scheduler.Task{
		ID:           "long",
		Interval:     time.Hour,
		InitialDelay: time.Millisecond,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		},
	})

	sched.Start(context.Background())
	<-started
	sched.Stop()

	assert.True(t, sawCancel.Load())
}
