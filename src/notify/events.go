package notify

import (
	"context"
	"fmt"

	"github.com/sauti-platform/sauti/src/api/types"
)

// StatusChanged is emitted once per bill transition, never batched.
type StatusChanged struct {
	Bill      types.Bill
	OldStatus string
	NewStatus string
}

// Emitter decouples the lifecycle service from delivery. The production
// emitter enqueues a fan-out job; tests substitute a recorder.
type Emitter interface {
	EmitStatusChanged(ctx context.Context, ev StatusChanged) error
}

// StatusChangeMessage composes the notification sent to a bill's followers.
func StatusChangeMessage(ev StatusChanged) *Message {
	billID := ev.Bill.ID
	var subject, body string
	switch ev.NewStatus {
	case types.BillStatusOpen:
		subject = fmt.Sprintf("%s is now open for public participation", ev.Bill.BillNumber)
		body = fmt.Sprintf("%s (%s) is open for public participation.", ev.Bill.Title, ev.Bill.BillNumber)
		if ev.Bill.ParticipationEndDate != nil {
			body += fmt.Sprintf(" Submissions close on %s.", ev.Bill.ParticipationEndDate.Format("2 January 2006"))
		}
	case types.BillStatusClosed:
		subject = fmt.Sprintf("Participation closed for %s", ev.Bill.BillNumber)
		body = fmt.Sprintf("The public participation window for %s (%s) has closed. Thank you for taking part.", ev.Bill.Title, ev.Bill.BillNumber)
	default:
		subject = fmt.Sprintf("%s: %s", ev.Bill.BillNumber, ev.NewStatus)
		body = fmt.Sprintf("%s (%s) moved from %s to %s.", ev.Bill.Title, ev.Bill.BillNumber, ev.OldStatus, ev.NewStatus)
	}
	return &Message{
		Kind:    KindStatusChange,
		Subject: subject,
		Body:    body,
		BillID:  &billID,
	}
}

// EngagementMessage composes the notification for a direct message.
func EngagementMessage(e types.CitizenEngagement, senderName string) *Message {
	return &Message{
		Kind:    KindEngagement,
		Subject: fmt.Sprintf("New message from %s: %s", senderName, e.Subject),
		Body:    e.Message,
		BillID:  e.BillID,
	}
}
