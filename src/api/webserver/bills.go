package webserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sauti-platform/sauti/src/api/types"
	"github.com/sauti-platform/sauti/src/lifecycle"
	"gorm.io/gorm"
)

type Bills struct {
	db *gorm.DB
}

func NewBills(db *gorm.DB) Bills {
	return Bills{db: db}
}

func (b Bills) List(c *gin.Context) {
	q := b.db.Model(&types.Bill{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if house := c.Query("house"); house != "" {
		q = q.Where("house = ?", house)
	}
	var bills []types.Bill
	if err := q.Find(&bills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (b Bills) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var bill types.Bill
	if err := b.db.Preload("Clauses").First(&bill, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill, "tags": bill.TagList()})
}

func (b Bills) Create(c *gin.Context) {
	var req struct {
		BillNumber             string     `json:"billNumber" binding:"required"`
		Title                  string     `json:"title"      binding:"required"`
		Description            string     `json:"description"`
		Type                   string     `json:"type"  binding:"required,oneof=public private money"`
		House                  string     `json:"house" binding:"required,oneof=national_assembly senate both"`
		Sponsor                string     `json:"sponsor"`
		Committee              string     `json:"committee"`
		GazetteDate            *time.Time `json:"gazetteDate"`
		ParticipationStartDate *time.Time `json:"participationStartDate"`
		ParticipationEndDate   *time.Time `json:"participationEndDate"`
		Tags                   string     `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	bill := types.Bill{
		BillNumber:             req.BillNumber,
		Title:                  req.Title,
		Description:            req.Description,
		Type:                   req.Type,
		House:                  req.House,
		Status:                 types.BillStatusDraft,
		Sponsor:                req.Sponsor,
		Committee:              req.Committee,
		GazetteDate:            req.GazetteDate,
		ParticipationStartDate: req.ParticipationStartDate,
		ParticipationEndDate:   req.ParticipationEndDate,
		Tags:                   req.Tags,
	}
	if err := b.db.Create(&bill).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "bill number already exists"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bill": bill})
}

// SetStatus applies a manual transition. Time-driven moves are rejected
// here; they belong to the lifecycle sweeps.
func (b Bills) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var bill types.Bill
	if err := b.db.First(&bill, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
		return
	}
	if err := lifecycle.ValidateManualTransition(bill.Status, req.Status); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"err": err.Error()})
		return
	}

	res := b.db.Model(&types.Bill{}).
		Where("id = ? AND status = ?", bill.ID, bill.Status).
		Update("status", req.Status)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"err": "bill status changed concurrently"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (b Bills) AddClause(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var req struct {
		ClauseNumber string `json:"clauseNumber" binding:"required"`
		Title        string `json:"title"`
		Content      string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var bill types.Bill
	if err := b.db.First(&bill, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
		return
	}
	clause := types.BillClause{
		BillID:       bill.ID,
		ClauseNumber: req.ClauseNumber,
		Title:        req.Title,
		Content:      req.Content,
	}
	if err := b.db.Create(&clause).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "clause number already exists for this bill"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"clause": clause})
}

func (b Bills) Follow(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	var bill types.Bill
	if err := b.db.First(&bill, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "bill not found"})
		return
	}
	follower := types.BillFollower{BillID: bill.ID, UserID: userID(c), CreatedAt: time.Now().UTC()}
	if err := b.db.FirstOrCreate(&follower, types.BillFollower{BillID: bill.ID, UserID: userID(c)}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true})
}

func (b Bills) Unfollow(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad bill id"})
		return
	}
	b.db.Delete(&types.BillFollower{}, "bill_id = ? AND user_id = ?", id, userID(c))
	c.JSON(http.StatusOK, gin.H{"following": false})
}
