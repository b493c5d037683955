package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Locker is the cluster-wide single-flight guarantee: Acquire succeeds on
// exactly one node at a time for a given name.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, name, token string) error
}

// Task is one periodic job. SingleFlight serializes runs cluster-wide;
// SkipIfRunning additionally drops a tick while the previous run of this
// process is still in flight. AtHour aligns the first tick of a daily task
// to that UTC hour instead of ticking from process start.
type Task struct {
	Name          string
	Every         time.Duration
	LockTTL       time.Duration
	SingleFlight  bool
	SkipIfRunning bool
	RunAtStart    bool
	AtHour        *int
	Run           func(ctx context.Context) error
}

type taskState struct {
	Task
	inFlight atomic.Bool
}

// Scheduler owns an explicit task table and a ticker loop per task.
type Scheduler struct {
	locker Locker
	tasks  []*taskState
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func New(locker Locker) *Scheduler {
	return &Scheduler{locker: locker}
}

func (s *Scheduler) Add(t Task) {
	if t.LockTTL <= 0 {
		t.LockTTL = 10 * time.Minute
	}
	s.tasks = append(s.tasks, &taskState{Task: t})
}

func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
}

// Stop cancels every task loop and waits for in-flight runs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, t *taskState) {
	defer s.wg.Done()

	if t.RunAtStart {
		s.fire(ctx, t)
	}

	if t.AtHour != nil {
		wait := time.NewTimer(untilHour(time.Now().UTC(), *t.AtHour))
		select {
		case <-ctx.Done():
			wait.Stop()
			log.Printf("scheduler: stopping %s", t.Name)
			return
		case <-wait.C:
			s.fire(ctx, t)
		}
	}

	ticker := time.NewTicker(t.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("scheduler: stopping %s", t.Name)
			return
		case <-ticker.C:
			s.fire(ctx, t)
		}
	}
}

// fire launches one run. Runs are asynchronous so a slow run delays nothing;
// SkipIfRunning drops the tick instead of queueing behind the previous run.
func (s *Scheduler) fire(ctx context.Context, t *taskState) {
	if t.SkipIfRunning && !t.inFlight.CompareAndSwap(false, true) {
		log.Printf("scheduler: %s still running, skipping tick", t.Name)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if t.SkipIfRunning {
			defer t.inFlight.Store(false)
		}
		if err := RunTask(ctx, s.locker, t.Task); err != nil {
			log.Printf("scheduler: %s: %v", t.Name, err)
		}
	}()
}

// untilHour returns the wait from now to the next occurrence of hour (UTC).
// A zero wait rolls to tomorrow so the aligning task never double-fires.
func untilHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// RunTask executes one task under its concurrency policy. The tasks binary
// uses the same path so a cron-invoked run and a scheduler tick can never
// overlap.
func RunTask(ctx context.Context, locker Locker, t Task) error {
	if !t.SingleFlight {
		return t.Run(ctx)
	}
	token, ok, err := locker.Acquire(ctx, t.Name, t.LockTTL)
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("scheduler: %s held elsewhere, skipping", t.Name)
		return nil
	}
	defer func() {
		if err := locker.Release(ctx, t.Name, token); err != nil {
			log.Printf("scheduler: release %s: %v", t.Name, err)
		}
	}()
	return t.Run(ctx)
}
