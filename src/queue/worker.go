package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, job Job) error

// Alerter surfaces dead-lettered jobs to operators.
type Alerter interface {
	JobBuried(ctx context.Context, job Job, lastErr error)
}

// Worker pops jobs and dispatches by kind. A failed job goes back on the
// queue with an incremented attempt count until the budget is exhausted,
// then it is buried and the alerter fires.
type Worker struct {
	q        *Queue
	handlers map[string]Handler
	alerter  Alerter
}

func NewWorker(q *Queue, alerter Alerter) *Worker {
	return &Worker{q: q, handlers: make(map[string]Handler), alerter: alerter}
}

func (w *Worker) Handle(kind string, h Handler) {
	w.handlers[kind] = h
}

func (w *Worker) Run(ctx context.Context) {
	for {
		res, err := w.q.rdb.BRPop(ctx, 5*time.Second, jobsKey).Result()
		if err != nil {
			if ctx.Err() != nil {
				log.Println("queue: worker stopping")
				return
			}
			if !errors.Is(err, redis.Nil) {
				log.Printf("queue: pop: %v", err)
				time.Sleep(time.Second)
			}
			continue
		}
		// BRPop returns [key, value]
		if len(res) != 2 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Printf("queue: bad job payload: %v", err)
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	h, ok := w.handlers[job.Kind]
	if !ok {
		log.Printf("queue: no handler for kind %s, burying job %s", job.Kind, job.ID)
		_ = w.q.Bury(ctx, job)
		return
	}

	err := h(ctx, job)
	if err == nil {
		return
	}

	job.Attempts++
	job.LastError = err.Error()
	if job.Attempts >= w.q.maxAttempts {
		log.Printf("queue: job %s (%s) exhausted %d attempts: %v", job.ID, job.Kind, job.Attempts, err)
		if buryErr := w.q.Bury(ctx, job); buryErr != nil {
			log.Printf("queue: bury %s: %v", job.ID, buryErr)
		}
		if w.alerter != nil {
			w.alerter.JobBuried(ctx, job, err)
		}
		return
	}

	log.Printf("queue: job %s (%s) attempt %d failed, retrying: %v", job.ID, job.Kind, job.Attempts, err)
	if reErr := w.q.Enqueue(ctx, job); reErr != nil {
		log.Printf("queue: re-enqueue %s: %v", job.ID, reErr)
	}
}
