package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sauti-platform/sauti/src/analytics"
	"github.com/sauti-platform/sauti/src/api/config"
	"github.com/sauti-platform/sauti/src/lifecycle"
	"github.com/sauti-platform/sauti/src/scheduler"
)

// Task names, shared by the scheduler and the sauti-tasks binary.
const (
	CloseExpiredBills    = "bills:close-expired"
	OpenScheduledBills   = "bills:open-scheduled"
	UpdateClauseAnalytic = "analytics:update-clause-analytics"
)

// Tasks is the explicit task table: name, cadence, concurrency policy.
// Lifecycle sweeps run daily at the configured UTC hour (with a catch-up
// run at boot); analytics every five minutes with overlap skipping on top
// of the cluster-wide lock.
func Tasks(cfg config.Config, lc *lifecycle.Service, agg *analytics.Aggregator) []scheduler.Task {
	sweepHour := cfg.LifecycleHour
	return []scheduler.Task{
		{
			Name:         CloseExpiredBills,
			Every:        24 * time.Hour,
			LockTTL:      15 * time.Minute,
			SingleFlight: true,
			RunAtStart:   true,
			AtHour:       &sweepHour,
			Run: func(ctx context.Context) error {
				n, err := lc.CloseExpiredBills(ctx, time.Now().UTC())
				log.Printf("jobs: closed %d expired bills", n)
				return err
			},
		},
		{
			Name:         OpenScheduledBills,
			Every:        24 * time.Hour,
			LockTTL:      15 * time.Minute,
			SingleFlight: true,
			RunAtStart:   true,
			AtHour:       &sweepHour,
			Run: func(ctx context.Context) error {
				n, err := lc.OpenScheduledBills(ctx, time.Now().UTC())
				log.Printf("jobs: opened %d scheduled bills", n)
				return err
			},
		},
		{
			Name:          UpdateClauseAnalytic,
			Every:         cfg.AnalyticsEvery,
			LockTTL:       cfg.AnalyticsEvery,
			SingleFlight:  true,
			SkipIfRunning: true,
			Run:           agg.RecomputeAllOpenBills,
		},
	}
}

// Find returns the named task for one-shot invocation.
func Find(tasks []scheduler.Task, name string) (scheduler.Task, error) {
	for _, t := range tasks {
		if t.Name == name {
			return t, nil
		}
	}
	return scheduler.Task{}, fmt.Errorf("unknown task %q", name)
}
