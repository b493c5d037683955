package webserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/queue"
	"gorm.io/gorm"
)

type Engagements struct {
	db        *gorm.DB
	q         *queue.Queue
	sanitizer *bluemonday.Policy
}

func NewEngagements(db *gorm.DB, q *queue.Queue) Engagements {
	return Engagements{db: db, q: q, sanitizer: bluemonday.StrictPolicy()}
}

// Create records a directed message and queues the recipient notification.
// Engagements are immutable once sent; there is no update route.
func (e Engagements) Create(c *gin.Context) {
	var req struct {
		RecipientID  uint64  `json:"recipientId" binding:"required"`
		BillID       *uint64 `json:"billId"`
		SubmissionID *uint64 `json:"submissionId"`
		Subject      string  `json:"subject" binding:"required"`
		Message      string  `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var recipient types.User
	if err := e.db.First(&recipient, req.RecipientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "recipient not found"})
		return
	}
	if req.BillID != nil {
		var bill types.Bill
		if err := e.db.First(&bill, *req.BillID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
			return
		}
	}

	eng := types.CitizenEngagement{
		SenderID:     userID(c),
		RecipientID:  recipient.ID,
		BillID:       req.BillID,
		SubmissionID: req.SubmissionID,
		Subject:      req.Subject,
		Message:      e.sanitizer.Sanitize(req.Message),
		SentAt:       time.Now().UTC(),
	}
	if err := e.db.Create(&eng).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	if err := e.q.Enqueue(c.Request.Context(), queue.Job{
		Kind:         queue.KindNotifyEngagement,
		EngagementID: eng.ID,
	}); err != nil {
		// delivery failure never surfaces to the sender
		log.Printf("engagements: enqueue notify for %d: %v", eng.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"engagement": eng})
}

func (e Engagements) List(c *gin.Context) {
	uid := userID(c)
	var engs []types.CitizenEngagement
	err := e.db.
		Where("sender_id = ? OR recipient_id = ?", uid, uid).
		Order("sent_at DESC").
		Find(&engs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"engagements": engs})
}

type Notifications struct {
	db *gorm.DB
}

func NewNotifications(db *gorm.DB) Notifications {
	return Notifications{db: db}
}

func (n Notifications) List(c *gin.Context) {
	var rows []types.Notification
	err := n.db.Where("user_id = ?", userID(c)).Order("created_at DESC").Limit(100).Find(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": rows})
}

func (n Notifications) MarkRead(c *gin.Context) {
	now := time.Now().UTC()
	res := n.db.Model(&types.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", c.Param("id"), userID(c)).
		Update("read_at", &now)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": res.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": res.RowsAffected == 1})
}
