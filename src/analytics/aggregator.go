package analytics

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sauti-platform/sauti/src/api/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Aggregator recomputes per-clause submission counts and sentiment. Every
// run fully replaces the previous snapshot (upsert keyed by clause id), so
// re-running is safe.
type Aggregator struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// RecomputeClauseAnalytics rebuilds the analytics rows for one bill. A
// failure on any clause fails the whole call; the queue retries it.
func (a *Aggregator) RecomputeClauseAnalytics(ctx context.Context, billID uint64) error {
	var clauses []types.BillClause
	if err := a.db.WithContext(ctx).Where("bill_id = ?", billID).Order("clause_number").Find(&clauses).Error; err != nil {
		return fmt.Errorf("load clauses for bill %d: %w", billID, err)
	}
	if len(clauses) == 0 {
		return nil
	}

	var submissions []types.Submission
	if err := a.db.WithContext(ctx).Where("bill_id = ?", billID).Find(&submissions).Error; err != nil {
		return fmt.Errorf("load submissions for bill %d: %w", billID, err)
	}

	now := time.Now().UTC()
	for _, cl := range clauses {
		snap := buildSnapshot(cl, submissions, now)
		err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "clause_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_submissions", "support_count", "oppose_count",
				"amend_count", "neutral_count", "sentiment_score",
				"views_count", "last_calculated_at",
			}),
		}).Create(&snap).Error
		if err != nil {
			return fmt.Errorf("upsert analytics for clause %d: %w", cl.ID, err)
		}
	}
	return nil
}

// RecomputeAllOpenBills sweeps every bill currently open for participation.
func (a *Aggregator) RecomputeAllOpenBills(ctx context.Context) error {
	var ids []uint64
	err := a.db.WithContext(ctx).Model(&types.Bill{}).
		Where("status = ?", types.BillStatusOpen).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("list open bills: %w", err)
	}
	for _, id := range ids {
		if err := a.RecomputeClauseAnalytics(ctx, id); err != nil {
			return err
		}
	}
	if len(ids) > 0 {
		log.Printf("analytics: recomputed clause analytics for %d open bills", len(ids))
	}
	return nil
}

// buildSnapshot partitions the bill's submissions for one clause and
// derives the sentiment score.
func buildSnapshot(cl types.BillClause, submissions []types.Submission, now time.Time) types.ClauseAnalytics {
	snap := types.ClauseAnalytics{
		ClauseID:         cl.ID,
		ViewsCount:       cl.ViewsCount,
		LastCalculatedAt: now,
	}
	for _, sub := range submissions {
		if !MatchesClause(sub.Content, cl.ClauseNumber) {
			continue
		}
		snap.TotalSubmissions++
		switch sub.SubmissionType {
		case types.SubmissionSupport:
			snap.SupportCount++
		case types.SubmissionOppose:
			snap.OpposeCount++
		case types.SubmissionAmend:
			snap.AmendCount++
		default:
			snap.NeutralCount++
		}
	}
	snap.SentimentScore = Sentiment(snap.SupportCount, snap.OpposeCount, snap.TotalSubmissions)
	return snap
}

// MatchesClause associates a submission with a clause by naive textual
// containment of the clause number in the submission content. This both
// misses differently-formatted references and over-matches substrings of
// unrelated numbers; a structured clause reference on Submission is the
// real fix. Kept as-is deliberately so analytics stay comparable with the
// historical data.
func MatchesClause(content, clauseNumber string) bool {
	if clauseNumber == "" {
		return false
	}
	return strings.Contains(content, clauseNumber)
}

// Sentiment is (support - oppose) / total scaled to [-100, 100], defined
// as 0 for an empty clause.
func Sentiment(support, oppose, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return (float64(support) - float64(oppose)) / float64(total) * 100
}
