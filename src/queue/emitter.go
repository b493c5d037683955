package queue

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/sauti-platform/sauti/src/api/data"
	"github.com/sauti-platform/sauti/src/notify"
)

// Emitter turns a status-changed event into a queued fan-out job and an
// entry on the shared event stream.
type Emitter struct {
	q   *Queue
	rdb *redis.Client
}

func NewEmitter(q *Queue, rdb *redis.Client) *Emitter {
	return &Emitter{q: q, rdb: rdb}
}

func (e *Emitter) EmitStatusChanged(ctx context.Context, ev notify.StatusChanged) error {
	if err := e.q.Enqueue(ctx, Job{
		Kind:      KindNotifyStatusChange,
		BillID:    ev.Bill.ID,
		OldStatus: ev.OldStatus,
		NewStatus: ev.NewStatus,
	}); err != nil {
		return err
	}
	// stream publish is best-effort; the queued job carries delivery
	if err := data.PublishBillEvent(ctx, e.rdb, map[string]interface{}{
		"bill_id":     ev.Bill.ID,
		"bill_number": ev.Bill.BillNumber,
		"old_status":  ev.OldStatus,
		"new_status":  ev.NewStatus,
	}); err != nil {
		log.Printf("queue: publish bill event for %s: %v", ev.Bill.BillNumber, err)
	}
	return nil
}
