package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/notify"
	"gorm.io/gorm"
)

// Service applies the two time-driven bill transitions:
// gazetted -> open_for_participation and open_for_participation -> closed.
// All other transitions are manual (clerk API).
type Service struct {
	db      *gorm.DB
	emitter notify.Emitter
}

func New(db *gorm.DB, emitter notify.Emitter) *Service {
	return &Service{db: db, emitter: emitter}
}

// CloseExpiredBills closes every bill whose participation window has ended.
// Each bill is an independent unit of work: one failure is collected and the
// sweep continues. Returns the number of bills transitioned.
func (s *Service) CloseExpiredBills(ctx context.Context, now time.Time) (int, error) {
	return s.sweep(ctx, types.BillStatusOpen, types.BillStatusClosed,
		"participation_end_date <= ?", now)
}

// OpenScheduledBills opens every gazetted bill whose participation window
// has started.
func (s *Service) OpenScheduledBills(ctx context.Context, now time.Time) (int, error) {
	return s.sweep(ctx, types.BillStatusGazetted, types.BillStatusOpen,
		"participation_start_date <= ?", now)
}

func (s *Service) sweep(ctx context.Context, from, to, dateCond string, now time.Time) (int, error) {
	var bills []types.Bill
	err := s.db.WithContext(ctx).
		Where("status = ?", from).
		Where(dateCond, now).
		Order("id").
		Find(&bills).Error
	if err != nil {
		return 0, fmt.Errorf("select bills %s: %w", from, err)
	}

	var (
		count int
		errs  []error
	)
	for i := range bills {
		moved, err := s.transition(ctx, &bills[i], from, to)
		if moved {
			count++
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("bill %s: %w", bills[i].BillNumber, err))
		}
	}
	return count, errors.Join(errs...)
}

// transition applies a conditional update so an accidental concurrent sweep
// cannot double-transition a bill: the row moves only if it still has the
// expected status. One event per transitioned bill.
func (s *Service) transition(ctx context.Context, bill *types.Bill, from, to string) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&types.Bill{}).
		Where("id = ? AND status = ?", bill.ID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// already transitioned elsewhere
		return false, nil
	}

	bill.Status = to
	log.Printf("lifecycle: bill %s %s -> %s", bill.BillNumber, from, to)

	if err := s.emitter.EmitStatusChanged(ctx, notify.StatusChanged{
		Bill:      *bill,
		OldStatus: from,
		NewStatus: to,
	}); err != nil {
		return true, fmt.Errorf("emit status change: %w", err)
	}
	return true, nil
}
