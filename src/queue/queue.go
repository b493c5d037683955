package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job kinds
const (
	KindNotifyStatusChange = "notify_status_change"
	KindNotifyEngagement   = "notify_engagement"
	KindRecomputeAnalytics = "recompute_analytics"
)

const (
	jobsKey = "sauti.jobs"
	deadKey = "sauti.jobs.dead"
)

// Job is one unit of deferred work. Attempts travels with the payload so
// any worker can enforce the retry budget.
type Job struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	BillID       uint64 `json:"bill_id,omitempty"`
	OldStatus    string `json:"old_status,omitempty"`
	NewStatus    string `json:"new_status,omitempty"`
	EngagementID uint64 `json:"engagement_id,omitempty"`
	Attempts     int    `json:"attempts"`
	LastError    string `json:"last_error,omitempty"`
}

// Queue is a redis-list work queue shared by every node.
type Queue struct {
	rdb         *redis.Client
	maxAttempts int
}

func New(rdb *redis.Client, maxAttempts int) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Queue{rdb: rdb, maxAttempts: maxAttempts}
}

func (q *Queue) MaxAttempts() int { return q.maxAttempts }

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.rdb.LPush(ctx, jobsKey, raw).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", job.Kind, err)
	}
	return nil
}

// Bury moves an exhausted job to the dead set for manual inspection.
func (q *Queue) Bury(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal dead job: %w", err)
	}
	return q.rdb.LPush(ctx, deadKey, raw).Err()
}

// DeadJobs lists buried jobs, newest first.
func (q *Queue) DeadJobs(ctx context.Context) ([]Job, error) {
	raws, err := q.rdb.LRange(ctx, deadKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, 0, len(raws))
	for _, r := range raws {
		var j Job
		if err := json.Unmarshal([]byte(r), &j); err != nil {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}
