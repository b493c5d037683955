package webserver

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/queue"
	"gorm.io/gorm"
)

type Submissions struct {
	db        *gorm.DB
	q         *queue.Queue
	sanitizer *bluemonday.Policy
}

func NewSubmissions(db *gorm.DB, q *queue.Queue) Submissions {
	return Submissions{db: db, q: q, sanitizer: bluemonday.StrictPolicy()}
}

func (s Submissions) Create(c *gin.Context) {
	var req struct {
		BillID         uint64 `json:"billId" binding:"required"`
		SubmissionType string `json:"submissionType" binding:"required,oneof=support oppose amend neutral"`
		Content        string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var bill types.Bill
	if err := s.db.First(&bill, req.BillID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
		return
	}
	if bill.Status != types.BillStatusOpen {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"err": "bill is not open for participation"})
		return
	}

	sub := types.Submission{
		BillID:         bill.ID,
		UserID:         userID(c),
		SubmissionType: req.SubmissionType,
		Content:        s.sanitizer.Sanitize(req.Content),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.db.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	// analytics refreshes out of band; the periodic sweep covers a missed
	// enqueue
	if err := s.q.Enqueue(c.Request.Context(), queue.Job{
		Kind:   queue.KindRecomputeAnalytics,
		BillID: bill.ID,
	}); err != nil {
		log.Printf("submissions: enqueue analytics for bill %d: %v", bill.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"submission": sub})
}

func (s Submissions) ListForBill(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var subs []types.Submission
	if err := s.db.Where("bill_id = ?", id).Order("created_at DESC").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

type Analytics struct {
	db *gorm.DB
}

func NewAnalytics(db *gorm.DB) Analytics {
	return Analytics{db: db}
}

// ForBill returns the latest per-clause snapshot. Staleness is bounded by
// the recompute cadence; last_calculated_at tells the client how stale.
func (a Analytics) ForBill(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var rows []types.ClauseAnalytics
	err = a.db.
		Joins("JOIN bill_clauses ON bill_clauses.id = clause_analytics.clause_id").
		Where("bill_clauses.bill_id = ?", id).
		Preload("Clause").
		Order("bill_clauses.clause_number").
		Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": rows})
}
