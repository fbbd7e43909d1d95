package services

import (
	"errors"
	"strings"
	"time"

	"journal-review-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionService owns submission records and their lifecycle up to the
// point the review workflow takes over (draft creation and the draft →
// submitted transition). Reads are role-scoped: authors see their own,
// reviewers see what they are assigned to, admins see everything.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

// CreateSubmissionInput is the author's manuscript metadata.
type CreateSubmissionInput struct {
	Title         string
	Abstract      string
	Keywords      []string
	JournalName   string
	IssueRef      *string
	ManuscriptRef *string
}

// CreateSubmission creates a draft owned by the caller.
func (s *SubmissionService) CreateSubmission(caller Caller, input CreateSubmissionInput) (*models.Submission, error) {
	if err := requireCap(caller, CapCreateSubmission); err != nil {
		return nil, err
	}

	submission := models.Submission{
		SubmissionNumber: "SUB-" + strings.ToUpper(uuid.NewString()[:8]),
		Title:            input.Title,
		Abstract:         input.Abstract,
		Keywords:         input.Keywords,
		AuthorID:         caller.UserID,
		JournalName:      input.JournalName,
		IssueRef:         input.IssueRef,
		ManuscriptRef:    input.ManuscriptRef,
		Status:           models.SubmissionDraft,
		CreatedAt:        time.Now(),
	}
	if submission.Keywords == nil {
		submission.Keywords = []string{}
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// SubmitSubmission moves the caller's own draft to submitted, the only
// client-driven entry into the review workflow.
func (s *SubmissionService) SubmitSubmission(caller Caller, submissionID int) (*models.Submission, error) {
	if err := requireCap(caller, CapSubmitOwnSubmission); err != nil {
		return nil, err
	}

	var submission models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}
		if submission.AuthorID != caller.UserID {
			return Errf(KindForbidden, "submission %d belongs to another author", submissionID)
		}
		if submission.Status != models.SubmissionDraft {
			return Errf(KindInvalidState,
				"submission %d is %s, only drafts can be submitted", submissionID, submission.Status)
		}

		now := time.Now()
		err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Updates(map[string]interface{}{
				"status":       models.SubmissionSubmitted,
				"submitted_at": now,
				"updated_at":   now,
			}).Error
		if err != nil {
			return err
		}

		old := submission.Status
		if err := recordStatusChangeTx(tx, submissionID, &old, models.SubmissionSubmitted, caller.UserID, nil, nil); err != nil {
			return err
		}

		submission.Status = models.SubmissionSubmitted
		submission.SubmittedAt = &now
		submission.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetSubmission returns one submission if the caller may see it.
func (s *SubmissionService) GetSubmission(caller Caller, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Author").
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound, "submission %d not found", submissionID)
		}
		return nil, err
	}

	visible, err := s.canView(caller, &submission)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, Errf(KindForbidden, "submission %d is not visible to the caller", submissionID)
	}
	return &submission, nil
}

// ListSubmissions returns the submissions visible to the caller, newest
// first. Admins may filter by status.
func (s *SubmissionService) ListSubmissions(caller Caller, statusFilter models.SubmissionStatus) ([]models.Submission, error) {
	query := s.db.Preload("Author").Where("deleted_at IS NULL")

	switch {
	case caller.Can(CapViewAllSubmissions):
		if statusFilter != "" {
			if !models.ValidSubmissionStatus(statusFilter) {
				return nil, Errf(KindInvalidState, "unknown submission status %q", statusFilter)
			}
			query = query.Where("status = ?", statusFilter)
		}
	case caller.RoleID == models.RoleReviewer:
		query = query.Where("submission_id IN (?)",
			s.db.Model(&models.ReviewRound{}).
				Select("review_rounds.submission_id").
				Joins("JOIN reviewer_assignments ON reviewer_assignments.round_id = review_rounds.round_id").
				Where("reviewer_assignments.reviewer_id = ?", caller.UserID))
	default:
		query = query.Where("author_id = ?", caller.UserID)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// ListStatusHistory returns the status audit trail of a submission the
// caller may see.
func (s *SubmissionService) ListStatusHistory(caller Caller, submissionID int) ([]models.SubmissionStatusHistory, error) {
	if _, err := s.GetSubmission(caller, submissionID); err != nil {
		return nil, err
	}

	var history []models.SubmissionStatusHistory
	err := s.db.Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SubmissionService) canView(caller Caller, submission *models.Submission) (bool, error) {
	if caller.Can(CapViewAllSubmissions) {
		return true, nil
	}
	if submission.AuthorID == caller.UserID {
		return true, nil
	}
	if caller.RoleID == models.RoleReviewer {
		var count int64
		err := s.db.Model(&models.ReviewerAssignment{}).
			Joins("JOIN review_rounds ON review_rounds.round_id = reviewer_assignments.round_id").
			Where("review_rounds.submission_id = ? AND reviewer_assignments.reviewer_id = ?",
				submission.SubmissionID, caller.UserID).
			Count(&count).Error
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}
	return false, nil
}

// lockSubmissionTx loads the submission row FOR UPDATE. The submission row is
// the lock of its whole aggregate: rounds, reviews and assignments are only
// mutated while it is held.
func lockSubmissionTx(tx *gorm.DB, submissionID int, dest *models.Submission) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ? AND deleted_at IS NULL", submissionID).
		First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Errf(KindNotFound, "submission %d not found", submissionID)
		}
		return err
	}
	return nil
}

// recordStatusChangeTx appends one row to the status history.
func recordStatusChangeTx(tx *gorm.DB, submissionID int, old *models.SubmissionStatus, next models.SubmissionStatus, changedBy int, reason, notes *string) error {
	history := models.SubmissionStatusHistory{
		SubmissionID: submissionID,
		OldStatus:    old,
		NewStatus:    next,
		ChangedBy:    changedBy,
		Reason:       reason,
		Notes:        notes,
		CreatedAt:    time.Now(),
	}
	return tx.Create(&history).Error
}
