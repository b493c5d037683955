package notify

import (
	"context"
	"fmt"

	"github.com/sauti-platform/sauti/src/api/types"
	"gorm.io/gorm"
)

// FanOut resolves recipients from the database and hands them to the
// dispatcher. It is the body of the queued notification jobs.
type FanOut struct {
	db *gorm.DB
	d  *Dispatcher
}

func NewFanOut(db *gorm.DB, d *Dispatcher) *FanOut {
	return &FanOut{db: db, d: d}
}

// StatusChanged notifies every follower of the bill.
func (f *FanOut) StatusChanged(ctx context.Context, billID uint64, oldStatus, newStatus string) error {
	var bill types.Bill
	if err := f.db.WithContext(ctx).First(&bill, billID).Error; err != nil {
		return fmt.Errorf("load bill %d: %w", billID, err)
	}

	var followers []types.User
	err := f.db.WithContext(ctx).
		Joins("JOIN bill_followers ON bill_followers.user_id = users.id").
		Where("bill_followers.bill_id = ?", billID).
		Order("users.id").
		Find(&followers).Error
	if err != nil {
		return fmt.Errorf("load followers of bill %d: %w", billID, err)
	}
	if len(followers) == 0 {
		return nil
	}

	recipients := make([]Notifiable, len(followers))
	for i, u := range followers {
		recipients[i] = FromUser(u)
	}

	msg := StatusChangeMessage(StatusChanged{Bill: bill, OldStatus: oldStatus, NewStatus: newStatus})
	_, err = f.d.Dispatch(ctx, recipients, msg)
	return err
}

// Engagement notifies the recipient of a direct message.
func (f *FanOut) Engagement(ctx context.Context, engagementID uint64) error {
	var eng types.CitizenEngagement
	err := f.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").
		First(&eng, engagementID).Error
	if err != nil {
		return fmt.Errorf("load engagement %d: %w", engagementID, err)
	}

	msg := EngagementMessage(eng, eng.Sender.Name)
	_, err = f.d.Dispatch(ctx, []Notifiable{FromUser(eng.Recipient)}, msg)
	return err
}
