package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sauti-platform/sauti/src/analytics"
	"github.com/sauti-platform/sauti/src/api/config"
	"github.com/sauti-platform/sauti/src/api/data"
	"github.com/sauti-platform/sauti/src/jobs"
	"github.com/sauti-platform/sauti/src/lifecycle"
	"github.com/sauti-platform/sauti/src/queue"
	"github.com/sauti-platform/sauti/src/scheduler"
)

// sauti-tasks runs one named task and exits 0 on success, non-zero on
// failure. It takes the same cluster-wide lock as the in-process
// scheduler, so cron-driven and scheduler-driven runs cannot overlap.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <%s|%s|%s>\n",
			os.Args[0], jobs.CloseExpiredBills, jobs.OpenScheduledBills, jobs.UpdateClauseAnalytic)
		os.Exit(2)
	}

	cfg := config.Load()
	db := data.MustMySQL(cfg.MySQLDSN)
	rdb := data.MustRedis(cfg.RedisURL)

	q := queue.New(rdb, cfg.JobMaxAttempts)
	lc := lifecycle.New(db, queue.NewEmitter(q, rdb))
	agg := analytics.New(db)

	task, err := jobs.Find(jobs.Tasks(cfg, lc, agg), os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := scheduler.RunTask(context.Background(), scheduler.NewRedisLocker(rdb), task); err != nil {
		log.Printf("task %s: %v", task.Name, err)
		os.Exit(1)
	}
}
