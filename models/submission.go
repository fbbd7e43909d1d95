package models

import "time"

// Submission represents one manuscript under editorial evaluation. The status
// column is derived by the workflow service from round/review state; the only
// client-driven transitions are draft→submitted and accepted→published.
type Submission struct {
	SubmissionID     int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string           `gorm:"column:submission_number;unique" json:"submission_number"`
	Title            string           `gorm:"column:title" json:"title"`
	Abstract         string           `gorm:"column:abstract" json:"abstract"`
	Keywords         []string         `gorm:"column:keywords;serializer:json" json:"keywords"`
	AuthorID         int              `gorm:"column:author_id" json:"author_id"`
	JournalName      string           `gorm:"column:journal_name" json:"journal_name"`
	IssueRef         *string          `gorm:"column:issue_ref" json:"issue_ref,omitempty"`
	ManuscriptRef    *string          `gorm:"column:manuscript_ref" json:"manuscript_ref,omitempty"`
	Status           SubmissionStatus `gorm:"column:status" json:"status"`
	SubmittedAt      *time.Time       `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        *time.Time       `gorm:"column:updated_at" json:"updated_at,omitempty"`
	DeletedAt        *time.Time       `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Author *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Rounds []ReviewRound `gorm:"foreignKey:SubmissionID" json:"rounds,omitempty"`
}

// TableName specifies the table name for Submission.
func (Submission) TableName() string {
	return "submissions"
}

// SubmissionStatusHistory is the append-only log of status changes. Rows are
// written in the same transaction as the change itself.
type SubmissionStatusHistory struct {
	HistoryID    int               `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID int               `gorm:"column:submission_id" json:"submission_id"`
	OldStatus    *SubmissionStatus `gorm:"column:old_status" json:"old_status"`
	NewStatus    SubmissionStatus  `gorm:"column:new_status" json:"new_status"`
	ChangedBy    int               `gorm:"column:changed_by" json:"changed_by"`
	Reason       *string           `gorm:"column:reason" json:"reason"`
	Notes        *string           `gorm:"column:notes" json:"notes"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for SubmissionStatusHistory.
func (SubmissionStatusHistory) TableName() string {
	return "submission_status_history"
}
