package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Bill{}, &types.BillClause{}, &types.ClauseAnalytics{}, &types.Submission{},
	))
	return db
}

func seedBillWithClause(t *testing.T, db *gorm.DB, clauseNumber string) (types.Bill, types.BillClause) {
	t.Helper()
	bill := types.Bill{
		BillNumber: "NA-100-2026",
		Title:      "Public Finance Bill",
		Type:       "money",
		House:      "national_assembly",
		Status:     types.BillStatusOpen,
	}
	require.NoError(t, db.Create(&bill).Error)
	clause := types.BillClause{BillID: bill.ID, ClauseNumber: clauseNumber, Title: "Levy"}
	require.NoError(t, db.Create(&clause).Error)
	return bill, clause
}

func addSubmission(t *testing.T, db *gorm.DB, billID uint64, subType, content string) {
	t.Helper()
	require.NoError(t, db.Create(&types.Submission{
		BillID:         billID,
		UserID:         1,
		SubmissionType: subType,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}).Error)
}

func TestRecomputeClauseAnalytics(t *testing.T) {
	db := newTestDB(t)
	bill, clause := seedBillWithClause(t, db, "12")

	addSubmission(t, db, bill.ID, types.SubmissionSupport, "I support clause 12 fully")
	addSubmission(t, db, bill.ID, types.SubmissionSupport, "Clause 12 is overdue")
	addSubmission(t, db, bill.ID, types.SubmissionSupport, "12 should stay")
	addSubmission(t, db, bill.ID, types.SubmissionOppose, "Clause 12 harms small traders")
	addSubmission(t, db, bill.ID, types.SubmissionAmend, "No clause reference here")

	agg := New(db)
	require.NoError(t, agg.RecomputeClauseAnalytics(context.Background(), bill.ID))

	var snap types.ClauseAnalytics
	require.NoError(t, db.First(&snap, "clause_id = ?", clause.ID).Error)
	require.Equal(t, uint64(4), snap.TotalSubmissions)
	require.Equal(t, uint64(3), snap.SupportCount)
	require.Equal(t, uint64(1), snap.OpposeCount)
	require.Equal(t, uint64(0), snap.AmendCount)
	require.Equal(t, uint64(0), snap.NeutralCount)
	require.InDelta(t, 50.0, snap.SentimentScore, 1e-9)
	require.False(t, snap.LastCalculatedAt.IsZero())

	// counts always partition the total
	sum := snap.SupportCount + snap.OpposeCount + snap.AmendCount + snap.NeutralCount
	require.Equal(t, snap.TotalSubmissions, sum)
}

func TestRecomputeReplacesSnapshot(t *testing.T) {
	db := newTestDB(t)
	bill, clause := seedBillWithClause(t, db, "7")
	addSubmission(t, db, bill.ID, types.SubmissionOppose, "clause 7 is bad")

	agg := New(db)
	require.NoError(t, agg.RecomputeClauseAnalytics(context.Background(), bill.ID))
	require.NoError(t, agg.RecomputeClauseAnalytics(context.Background(), bill.ID))

	// re-running replaces, never accumulates
	var snaps []types.ClauseAnalytics
	require.NoError(t, db.Where("clause_id = ?", clause.ID).Find(&snaps).Error)
	require.Len(t, snaps, 1)
	require.Equal(t, uint64(1), snaps[0].TotalSubmissions)
	require.InDelta(t, -100.0, snaps[0].SentimentScore, 1e-9)

	addSubmission(t, db, bill.ID, types.SubmissionSupport, "on reflection clause 7 works")
	require.NoError(t, agg.RecomputeClauseAnalytics(context.Background(), bill.ID))
	require.NoError(t, db.First(&snaps[0], "clause_id = ?", clause.ID).Error)
	require.Equal(t, uint64(2), snaps[0].TotalSubmissions)
	require.InDelta(t, 0.0, snaps[0].SentimentScore, 1e-9)
}

func TestRecomputeEmptyClause(t *testing.T) {
	db := newTestDB(t)
	bill, clause := seedBillWithClause(t, db, "3")

	agg := New(db)
	require.NoError(t, agg.RecomputeClauseAnalytics(context.Background(), bill.ID))

	var snap types.ClauseAnalytics
	require.NoError(t, db.First(&snap, "clause_id = ?", clause.ID).Error)
	require.Equal(t, uint64(0), snap.TotalSubmissions)
	require.Equal(t, 0.0, snap.SentimentScore)
}

func TestSentiment(t *testing.T) {
	require.Equal(t, 0.0, Sentiment(0, 0, 0))
	require.InDelta(t, 100.0, Sentiment(5, 0, 5), 1e-9)
	require.InDelta(t, -100.0, Sentiment(0, 5, 5), 1e-9)
	require.InDelta(t, 50.0, Sentiment(3, 1, 4), 1e-9)
	// amend/neutral dilute the score through the total
	require.InDelta(t, 25.0, Sentiment(3, 1, 8), 1e-9)
}

func TestMatchesClause(t *testing.T) {
	require.True(t, MatchesClause("clause 12 needs work", "12"))
	require.False(t, MatchesClause("general comment", "12"))
	require.False(t, MatchesClause("anything", ""))
	// known over-match: "12" inside "112" still counts (naive containment)
	require.True(t, MatchesClause("see section 112", "12"))
}
