package models

import "time"

// Review is one reviewer's verdict for one round. The (round, reviewer) pair
// is unique; the row is created pending when the reviewer is assigned and
// completed when they submit. ConfidentialComments are visible to admins only
// and must be stripped before any non-admin response leaves the service layer.
type Review struct {
	ReviewID             int             `gorm:"primaryKey;column:review_id" json:"review_id"`
	RoundID              int             `gorm:"column:round_id;uniqueIndex:uniq_round_reviewer,priority:1" json:"round_id"`
	ReviewerID           int             `gorm:"column:reviewer_id;uniqueIndex:uniq_round_reviewer,priority:2" json:"reviewer_id,omitempty"`
	Status               ReviewStatus    `gorm:"column:status" json:"status"`
	Recommendation       *Recommendation `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Comments             string          `gorm:"column:comments" json:"comments"`
	ConfidentialComments string          `gorm:"column:confidential_comments" json:"confidential_comments,omitempty"`
	DueDate              *time.Time      `gorm:"column:due_date" json:"due_date,omitempty"`
	SubmittedAt          *time.Time      `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt            time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt            *time.Time      `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Round    *ReviewRound `gorm:"foreignKey:RoundID;references:RoundID" json:"round,omitempty"`
	Reviewer *User        `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}

// ReviewerAssignment grants one reviewer the right to review one round.
// Creation is idempotent on the unique (round, reviewer) key.
type ReviewerAssignment struct {
	AssignmentID  int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	RoundID       int       `gorm:"column:round_id;uniqueIndex:uniq_round_assignee,priority:1" json:"round_id"`
	ReviewerID    int       `gorm:"column:reviewer_id;uniqueIndex:uniq_round_assignee,priority:2" json:"reviewer_id"`
	EditorComment *string   `gorm:"column:editor_comment" json:"editor_comment,omitempty"`
	AssignedAt    time.Time `gorm:"column:assigned_at" json:"assigned_at"`

	Round    *ReviewRound `gorm:"foreignKey:RoundID" json:"round,omitempty"`
	Reviewer *User        `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// TableName specifies the table name for ReviewerAssignment.
func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}
