package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/notify"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingEmitter struct {
	events []notify.StatusChanged
	failOn string // bill number that fails emission
}

func (r *recordingEmitter) EmitStatusChanged(ctx context.Context, ev notify.StatusChanged) error {
	if r.failOn != "" && ev.Bill.BillNumber == r.failOn {
		return fmt.Errorf("emitter down")
	}
	r.events = append(r.events, ev)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.Bill{}))
	return db
}

func seedBill(t *testing.T, db *gorm.DB, number, status string, start, end *time.Time) types.Bill {
	t.Helper()
	bill := types.Bill{
		BillNumber:             number,
		Title:                  "The " + number + " Bill",
		Type:                   "public",
		House:                  "national_assembly",
		Status:                 status,
		ParticipationStartDate: start,
		ParticipationEndDate:   end,
	}
	require.NoError(t, db.Create(&bill).Error)
	return bill
}

func ptr(t time.Time) *time.Time { return &t }

func TestCloseExpiredBills(t *testing.T) {
	db := newTestDB(t)
	em := &recordingEmitter{}
	svc := New(db, em)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	yesterday := ptr(now.Add(-24 * time.Hour))
	tomorrow := ptr(now.Add(24 * time.Hour))

	expired := seedBill(t, db, "NA-001-2026", types.BillStatusOpen, nil, yesterday)
	stillOpen := seedBill(t, db, "NA-002-2026", types.BillStatusOpen, nil, tomorrow)
	gazetted := seedBill(t, db, "NA-003-2026", types.BillStatusGazetted, nil, yesterday)

	n, err := svc.CloseExpiredBills(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var got types.Bill
	require.NoError(t, db.First(&got, expired.ID).Error)
	require.Equal(t, types.BillStatusClosed, got.Status)

	// one event, carrying old and new status
	require.Len(t, em.events, 1)
	require.Equal(t, expired.ID, em.events[0].Bill.ID)
	require.Equal(t, types.BillStatusOpen, em.events[0].OldStatus)
	require.Equal(t, types.BillStatusClosed, em.events[0].NewStatus)

	// untouched bills keep their status
	got = types.Bill{}
	require.NoError(t, db.First(&got, stillOpen.ID).Error)
	require.Equal(t, types.BillStatusOpen, got.Status)
	got = types.Bill{}
	require.NoError(t, db.First(&got, gazetted.ID).Error)
	require.Equal(t, types.BillStatusGazetted, got.Status)
}

func TestCloseExpiredBillsIdempotent(t *testing.T) {
	db := newTestDB(t)
	em := &recordingEmitter{}
	svc := New(db, em)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	seedBill(t, db, "NA-010-2026", types.BillStatusOpen, nil, ptr(now.Add(-time.Hour)))

	n, err := svc.CloseExpiredBills(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = svc.CloseExpiredBills(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Len(t, em.events, 1)
}

func TestTransitionGuardsConcurrentSweep(t *testing.T) {
	db := newTestDB(t)
	em := &recordingEmitter{}
	svc := New(db, em)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	bill := seedBill(t, db, "NA-030-2026", types.BillStatusOpen, nil, ptr(now.Add(-time.Hour)))

	// another sweep closes the bill between our select and update
	require.NoError(t, db.Model(&types.Bill{}).
		Where("id = ?", bill.ID).
		Update("status", types.BillStatusClosed).Error)

	moved, err := svc.transition(context.Background(), &bill, types.BillStatusOpen, types.BillStatusClosed)
	require.NoError(t, err)
	require.False(t, moved)
	// the losing sweep emits nothing: one transition, one event, ever
	require.Empty(t, em.events)

	var got types.Bill
	require.NoError(t, db.First(&got, bill.ID).Error)
	require.Equal(t, types.BillStatusClosed, got.Status)
}

func TestOpenScheduledBills(t *testing.T) {
	db := newTestDB(t)
	em := &recordingEmitter{}
	svc := New(db, em)

	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	due := seedBill(t, db, "SEN-001-2026", types.BillStatusGazetted, ptr(now.Add(-time.Minute)), nil)
	notYet := seedBill(t, db, "SEN-002-2026", types.BillStatusGazetted, ptr(now.Add(time.Hour)), nil)

	n, err := svc.OpenScheduledBills(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var got types.Bill
	require.NoError(t, db.First(&got, due.ID).Error)
	require.Equal(t, types.BillStatusOpen, got.Status)
	got = types.Bill{}
	require.NoError(t, db.First(&got, notYet.ID).Error)
	require.Equal(t, types.BillStatusGazetted, got.Status)

	require.Len(t, em.events, 1)
	require.Equal(t, types.BillStatusGazetted, em.events[0].OldStatus)
	require.Equal(t, types.BillStatusOpen, em.events[0].NewStatus)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	db := newTestDB(t)
	em := &recordingEmitter{failOn: "NA-020-2026"}
	svc := New(db, em)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	end := ptr(now.Add(-time.Hour))
	bad := seedBill(t, db, "NA-020-2026", types.BillStatusOpen, nil, end)
	good := seedBill(t, db, "NA-021-2026", types.BillStatusOpen, nil, end)

	n, err := svc.CloseExpiredBills(context.Background(), now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "NA-020-2026")
	// both bills are durably transitioned even though one emission failed
	require.Equal(t, 2, n)

	for _, id := range []uint64{bad.ID, good.ID} {
		var got types.Bill
		require.NoError(t, db.First(&got, id).Error)
		require.Equal(t, types.BillStatusClosed, got.Status)
	}
	require.Len(t, em.events, 1)
	require.Equal(t, good.ID, em.events[0].Bill.ID)
}

func TestValidateManualTransition(t *testing.T) {
	require.NoError(t, ValidateManualTransition(types.BillStatusDraft, types.BillStatusGazetted))
	require.NoError(t, ValidateManualTransition(types.BillStatusClosed, types.BillStatusCommitteeReview))
	require.NoError(t, ValidateManualTransition(types.BillStatusCommitteeReview, types.BillStatusPassed))
	require.NoError(t, ValidateManualTransition(types.BillStatusCommitteeReview, types.BillStatusRejected))

	// time-driven moves are not manual
	require.Error(t, ValidateManualTransition(types.BillStatusGazetted, types.BillStatusOpen))
	require.Error(t, ValidateManualTransition(types.BillStatusOpen, types.BillStatusClosed))
	// terminal states stay terminal
	require.Error(t, ValidateManualTransition(types.BillStatusPassed, types.BillStatusDraft))
	require.Error(t, ValidateManualTransition(types.BillStatusRejected, types.BillStatusCommitteeReview))
}
