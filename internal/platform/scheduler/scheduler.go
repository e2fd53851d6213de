// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler owns every periodic background task in the process.

It maintains a registry of (id, interval, callback) entries, runs each on its
own ticker goroutine, and tears all of them down cooperatively on shutdown.

Architecture:

  - Registry: Tasks are registered before Start; no ad-hoc global timers.
  - Cancellation: One context fans out to every task; Stop cancels it.
  - Grace: Stop waits for in-flight callbacks up to a bounded grace period.

Callbacks receive the scheduler's context and must honor its cancellation.
*/
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/tosho/internal/platform/constants"
)

// Task is a single periodic registry entry.
type Task struct {
	// ID names the task in logs.
	ID string

	// Interval is the cadence between runs. Non-positive intervals run once.
	Interval time.Duration

	// InitialDelay postpones the first run; zero means one full Interval.
	InitialDelay time.Duration

	// Run is the callback. Errors are logged, never fatal.
	Run func(ctx context.Context) error
}

// Scheduler drives the registered tasks.
type Scheduler struct {
	log   *slog.Logger
	tasks []Task

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs an empty scheduler.
func New(log *slog.Logger) *Scheduler {
	return &Scheduler{log: log}
}

// Register adds a task to the registry. It must be called before Start.
func (scheduler *Scheduler) Register(task Task) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.started {
		scheduler.log.Error("scheduler_register_after_start", slog.String("task", task.ID))
		return
	}
	scheduler.tasks = append(scheduler.tasks, task)
}

// Start launches one goroutine per registered task.
//
// The provided parent context bounds the whole scheduler lifetime; Stop
// cancels the derived context explicitly.
func (scheduler *Scheduler) Start(parent context.Context) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.started {
		return
	}
	scheduler.started = true

	ctx, cancel := context.WithCancel(parent)
	scheduler.cancel = cancel

	for _, task := range scheduler.tasks {
		scheduler.wg.Add(1)
		go scheduler.runLoop(ctx, task)
	}

	scheduler.log.Info("scheduler_started", slog.Int("tasks", len(scheduler.tasks)))
}

// Stop cancels every task and waits for in-flight callbacks.
//
// The wait is bounded by [constants.SchedulerGracePeriod]; tasks still running
// after the grace period are abandoned to their cancelled context.
func (scheduler *Scheduler) Stop() {
	scheduler.mu.Lock()
	if !scheduler.started || scheduler.cancel == nil {
		scheduler.mu.Unlock()
		return
	}
	scheduler.cancel()
	scheduler.mu.Unlock()

	done := make(chan struct{})
	go func() {
		scheduler.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		scheduler.log.Info("scheduler_stopped")
	case <-time.After(constants.SchedulerGracePeriod):
		scheduler.log.Warn("scheduler_stop_grace_period_exceeded")
	}
}

// runLoop executes one task on its cadence until the context is cancelled.
func (scheduler *Scheduler) runLoop(ctx context.Context, task Task) {
	defer scheduler.wg.Done()

	// First-run delay: explicit InitialDelay, else one full interval.
	delay := task.InitialDelay
	if delay <= 0 {
		delay = task.Interval
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		scheduler.invoke(ctx, task)

		if task.Interval <= 0 {
			return
		}
		timer.Reset(task.Interval)
	}
}

// invoke runs a single callback with panic isolation and timing.
func (scheduler *Scheduler) invoke(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			scheduler.log.Error("scheduled_task_panic",
				slog.String("task", task.ID),
				slog.Any("panic", r),
			)
		}
	}()

	startTime := time.Now()
	scheduler.log.Info("scheduled_task_started", slog.String("task", task.ID))

	if err := task.Run(ctx); err != nil {
		scheduler.log.Error("scheduled_task_failed",
			slog.String("task", task.ID),
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(startTime)),
		)
		return
	}

	scheduler.log.Info("scheduled_task_finished",
		slog.String("task", task.ID),
		slog.Duration("elapsed", time.Since(startTime)),
	)
}
