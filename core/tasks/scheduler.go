// Package tasks runs units of work on intervals or after a delay,
// independently of message traffic.
package tasks

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"GoCommando/core"
	"GoCommando/core/metrics"
)

// Task is a unit of scheduled work. An interval task has Every or
// Schedule set; otherwise it is one-shot and fires once after Delay.
type Task struct {
	Name string
	// Every is the interval between firings.
	Every time.Duration
	// Schedule is an interval in ParseEvery's syntax, used when Every is zero.
	Schedule string
	// Delay postpones the first firing.
	Delay time.Duration
	// Jitter adds a random duration up to Jitter to every interval.
	Jitter time.Duration
	// RunOnStart fires the task as soon as the scheduler starts.
	RunOnStart bool
	Run        func(ctx context.Context) error
}

func (t *Task) interval() (time.Duration, error) {
	if t.Every < 0 {
		return 0, errors.New("negative interval")
	}
	if t.Every > 0 || t.Schedule == "" {
		return t.Every, nil
	}
	return ParseEvery(t.Schedule)
}

// Scheduler owns one timer per task. Timers start with Start, not when a
// task is scheduled, and are cancelled by Stop.
type Scheduler struct {
	Metrics *metrics.Metrics

	mu      sync.Mutex
	tasks   []*Task
	every   map[string]time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
	active  atomic.Int32
}

func NewScheduler() *Scheduler {
	return &Scheduler{every: map[string]time.Duration{}}
}

// Schedule adds tasks. A task scheduled after Start is started immediately.
// If any task is invalid or its name is taken, none of them are added.
func (s *Scheduler) Schedule(tasks ...*Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	intervals := make(map[string]time.Duration, len(tasks))
	for _, t := range tasks {
		if t == nil || t.Run == nil {
			return errors.New("task without a function")
		}
		if t.Name == "" {
			return errors.New("task without a name")
		}
		if _, ok := s.every[t.Name]; ok {
			return &core.DuplicateTaskError{Name: t.Name}
		}
		if _, ok := intervals[t.Name]; ok {
			return &core.DuplicateTaskError{Name: t.Name}
		}
		every, err := t.interval()
		if err != nil {
			return err
		}
		if every == 0 && t.Delay <= 0 && !t.RunOnStart {
			return errors.New("task " + t.Name + " never fires")
		}
		intervals[t.Name] = every
	}

	for _, t := range tasks {
		every := intervals[t.Name]
		s.every[t.Name] = every
		s.tasks = append(s.tasks, t)
		if every > 0 {
			core.LogDebugF("Scheduled task %s every %s", t.Name, core.FormatDuration(every))
		} else {
			core.LogDebugF("Scheduled task %s once after %s", t.Name, core.FormatDuration(t.Delay))
		}
		if s.ctx != nil && !s.stopped {
			s.start(t, every)
		}
	}
	return nil
}

// Start starts the timers. Calling it again fails with core.ErrAlreadyStarted
// and starts nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return core.ErrAlreadyStarted
	}
	if s.stopped {
		return errors.New("scheduler stopped")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	core.LogInfoF("Starting %d tasks", len(s.tasks))
	for _, t := range s.tasks {
		s.start(t, s.every[t.Name])
	}
	return nil
}

// start must be called with s.mu held.
func (s *Scheduler) start(t *Task, every time.Duration) {
	s.wg.Add(1)
	s.active.Add(1)
	go s.loop(s.ctx, t, every)
}

// Stop cancels every timer and waits for running tasks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped || s.cancel == nil {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	core.LogInfo("Scheduler stopped")
}

// Active returns the number of tasks with a pending or running timer.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

func (s *Scheduler) loop(ctx context.Context, t *Task, every time.Duration) {
	defer s.wg.Done()
	defer s.active.Add(-1)

	if t.RunOnStart {
		s.run(ctx, t)
	}
	wait := t.Delay
	if wait <= 0 {
		if every == 0 {
			return
		}
		wait = calculateJitteredInterval(every, t.Jitter)
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			s.run(ctx, t)
			if every == 0 {
				return
			}
			timer.Reset(calculateJitteredInterval(every, t.Jitter))
		case <-ctx.Done():
			return
		}
	}
}

// run fires the task once. Failures are logged and never stop the timer.
func (s *Scheduler) run(ctx context.Context, t *Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := core.Contain(core.KindTask, t.Name, func() error {
		return t.Run(ctx)
	})
	s.Metrics.TaskRan(t.Name, time.Since(start), err)
	if err != nil {
		core.LogError(err)
	}
}

func calculateJitteredInterval(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(jitter.Nanoseconds()))
}
