package types

import (
	"strings"
	"time"
)

// Bill statuses
const (
	BillStatusDraft           = "draft"
	BillStatusGazetted        = "gazetted"
	BillStatusOpen            = "open_for_participation"
	BillStatusClosed          = "closed"
	BillStatusCommitteeReview = "committee_review"
	BillStatusPassed          = "passed"
	BillStatusRejected        = "rejected"
)

// Submission types
const (
	SubmissionSupport = "support"
	SubmissionOppose  = "oppose"
	SubmissionAmend   = "amend"
	SubmissionNeutral = "neutral"
)

// User roles
const (
	RoleCitizen    = "citizen"
	RoleLegislator = "legislator"
	RoleClerk      = "clerk"
	RoleAdmin      = "admin"
)

type User struct {
	ID            uint64 `gorm:"primaryKey"`
	Name          string `gorm:"size:128;not null"`
	Email         string `gorm:"size:191;uniqueIndex;not null"`
	PasswordHash  string `gorm:"size:128;not null"`
	Role          string `gorm:"size:16;not null;default:citizen"`
	Phone         string `gorm:"size:32"` // empty = no SMS route
	NotifyByEmail bool   `gorm:"default:true"`
	NotifyBySMS   bool   `gorm:"default:false"`
	CreatedAt     time.Time
}

type Bill struct {
	ID                     uint64 `gorm:"primaryKey"`
	BillNumber             string `gorm:"size:64;uniqueIndex;not null"`
	Title                  string `gorm:"size:255;not null"`
	Description            string `gorm:"type:text"`
	Type                   string `gorm:"size:16;not null"` // public|private|money
	House                  string `gorm:"size:32;not null"` // national_assembly|senate|both
	Status                 string `gorm:"size:32;index;not null;default:draft"`
	Sponsor                string `gorm:"size:128"`
	Committee              string `gorm:"size:128"`
	GazetteDate            *time.Time
	ParticipationStartDate *time.Time
	ParticipationEndDate   *time.Time
	Tags                   string `gorm:"size:512"` // comma separated
	CreatedAt              time.Time
	UpdatedAt              time.Time
	Clauses                []BillClause `gorm:"foreignKey:BillID"`
}

// TagList splits the comma-joined Tags column.
func (b *Bill) TagList() []string {
	if b.Tags == "" {
		return nil
	}
	parts := strings.Split(b.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Terminal reports whether a bill can no longer transition.
func (b *Bill) Terminal() bool {
	switch b.Status {
	case BillStatusClosed, BillStatusPassed, BillStatusRejected:
		return true
	}
	return false
}

type BillClause struct {
	ID           uint64 `gorm:"primaryKey"`
	BillID       uint64 `gorm:"uniqueIndex:idx_bill_clause;not null"`
	ClauseNumber string `gorm:"size:32;uniqueIndex:idx_bill_clause;not null"`
	Title        string `gorm:"size:255"`
	Content      string `gorm:"type:text"`
	ViewsCount   uint64 `gorm:"default:0"`
	Bill         Bill   `gorm:"foreignKey:BillID"`
}

// ClauseAnalytics is a derived snapshot, fully recomputable from submissions.
type ClauseAnalytics struct {
	ID               uint64 `gorm:"primaryKey"`
	ClauseID         uint64 `gorm:"uniqueIndex;not null"`
	TotalSubmissions uint64 `gorm:"default:0"`
	SupportCount     uint64 `gorm:"default:0"`
	OpposeCount      uint64 `gorm:"default:0"`
	AmendCount       uint64 `gorm:"default:0"`
	NeutralCount     uint64 `gorm:"default:0"`
	SentimentScore   float64
	ViewsCount       uint64 `gorm:"default:0"`
	LastCalculatedAt time.Time
	Clause           BillClause `gorm:"foreignKey:ClauseID"`
}

// TableName pins the table; the default pluralizer mangles "analytics".
func (ClauseAnalytics) TableName() string { return "clause_analytics" }

type Submission struct {
	ID             uint64 `gorm:"primaryKey"`
	BillID         uint64 `gorm:"index;not null"`
	UserID         uint64 `gorm:"index;not null"`
	SubmissionType string `gorm:"size:16;not null"` // support|oppose|amend|neutral
	Content        string `gorm:"type:text;not null"`
	CreatedAt      time.Time
	Bill           Bill `gorm:"foreignKey:BillID"`
	User           User `gorm:"foreignKey:UserID"`
}

// CitizenEngagement is a directed message; immutable once created.
type CitizenEngagement struct {
	ID           uint64  `gorm:"primaryKey"`
	SenderID     uint64  `gorm:"index;not null"`
	RecipientID  uint64  `gorm:"index;not null"`
	BillID       *uint64 `gorm:"index"`
	SubmissionID *uint64
	Subject      string `gorm:"size:255;not null"`
	Message      string `gorm:"type:text;not null"`
	SentAt       time.Time
	Sender       User `gorm:"foreignKey:SenderID"`
	Recipient    User `gorm:"foreignKey:RecipientID"`
}

type BillFollower struct {
	BillID    uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"primaryKey"`
	CreatedAt time.Time
	Bill      Bill `gorm:"foreignKey:BillID"`
	User      User `gorm:"foreignKey:UserID"`
}

// Notification is the in-app channel's durable record.
type Notification struct {
	ID        uint64  `gorm:"primaryKey"`
	UserID    uint64  `gorm:"index;not null"`
	BillID    *uint64 `gorm:"index"`
	Kind      string  `gorm:"size:32;not null"` // status_change|engagement
	Subject   string  `gorm:"size:255;not null"`
	Body      string  `gorm:"type:text"`
	ReadAt    *time.Time
	CreatedAt time.Time
	User      User `gorm:"foreignKey:UserID"`
}
