package notify

import (
	"context"
	"errors"

	"github.com/sauti-platform/sauti/src/api/types"
)

// ErrConfig marks a fatal misconfiguration (missing gateway credentials,
// unset from-address). It is never retried; the operator must fix it.
var ErrConfig = errors.New("notify: configuration error")

// Notification kinds
const (
	KindStatusChange = "status_change"
	KindEngagement   = "engagement"
)

// Message is one composed notification, delivered over every configured
// channel to each recipient.
type Message struct {
	Kind    string
	Subject string
	Body    string
	BillID  *uint64
}

// Notifiable is the recipient view a channel needs. Routing is explicit:
// an empty Phone means the recipient has no SMS route, which is a silent
// skip rather than an error.
type Notifiable struct {
	UserID  uint64
	Name    string
	Email   string
	Phone   string
	ByEmail bool
	BySMS   bool
}

func FromUser(u types.User) Notifiable {
	return Notifiable{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		ByEmail: u.NotifyByEmail,
		BySMS:   u.NotifyBySMS,
	}
}

// Channel delivers a message to one recipient. Implementations skip
// silently when the recipient has no route on that channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, to Notifiable, msg *Message) error
}
