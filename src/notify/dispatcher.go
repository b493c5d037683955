package notify

import (
	"context"
	"errors"
	"log"
)

// Delivery records one channel attempt for one recipient.
type Delivery struct {
	Channel string
	UserID  uint64
	Err     error
}

// Dispatcher fans a message out over an ordered list of channels. Channel
// failures are independent: a broken SMS gateway must not stop mail or
// in-app delivery. Only configuration errors abort the dispatch.
type Dispatcher struct {
	channels []Channel
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

func (d *Dispatcher) Dispatch(ctx context.Context, recipients []Notifiable, msg *Message) ([]Delivery, error) {
	results := make([]Delivery, 0, len(recipients)*len(d.channels))
	for _, to := range recipients {
		for _, ch := range d.channels {
			err := ch.Send(ctx, to, msg)
			results = append(results, Delivery{Channel: ch.Name(), UserID: to.UserID, Err: err})
			if err == nil {
				continue
			}
			if errors.Is(err, ErrConfig) {
				return results, err
			}
			log.Printf("notify: %s delivery to user %d failed: %v", ch.Name(), to.UserID, err)
		}
	}
	return results, nil
}

// Failed counts deliveries that errored.
func Failed(results []Delivery) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
