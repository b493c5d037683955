package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"gorm.io/gorm"
)

// InApp persists a durable notification row the client polls for.
type InApp struct {
	db *gorm.DB
}

func NewInApp(db *gorm.DB) *InApp {
	return &InApp{db: db}
}

func (n *InApp) Name() string { return "in_app" }

func (n *InApp) Send(ctx context.Context, to Notifiable, msg *Message) error {
	rec := types.Notification{
		UserID:    to.UserID,
		BillID:    msg.BillID,
		Kind:      msg.Kind,
		Subject:   msg.Subject,
		Body:      msg.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := n.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("in-app notification for user %d: %w", to.UserID, err)
	}
	return nil
}
