package models

import "time"

// ReviewRound is one discrete review cycle over a submission. Round numbers
// are 1-based and gapless per submission; at most one round per submission is
// in progress at a time. EndDate is stamped exactly when the round leaves
// in_progress and is never edited directly.
type ReviewRound struct {
	RoundID      int         `gorm:"primaryKey;column:round_id" json:"round_id"`
	SubmissionID int         `gorm:"column:submission_id;uniqueIndex:uniq_submission_round,priority:1" json:"submission_id"`
	RoundNumber  int         `gorm:"column:round_number;uniqueIndex:uniq_submission_round,priority:2" json:"round_number"`
	Status       RoundStatus `gorm:"column:status" json:"status"`
	StartDate    time.Time   `gorm:"column:start_date" json:"start_date"`
	EndDate      *time.Time  `gorm:"column:end_date" json:"end_date,omitempty"`
	EditorNotes  *string     `gorm:"column:editor_notes" json:"editor_notes,omitempty"`

	Submission  *Submission          `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	Assignments []ReviewerAssignment `gorm:"foreignKey:RoundID" json:"assignments,omitempty"`
	Reviews     []Review             `gorm:"foreignKey:RoundID" json:"reviews,omitempty"`
}

// TableName specifies the table name for ReviewRound.
func (ReviewRound) TableName() string {
	return "review_rounds"
}
