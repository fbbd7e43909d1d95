package services

import (
	"errors"
	"os"
	"strconv"
	"time"

	"journal-review-api/models"

	"gorm.io/gorm"
)

const defaultReviewDueDays = 14

// AssignmentService manages the reviewer pool of a round. Assignment is
// idempotent on the (round, reviewer) key so a flaky UI can safely retry.
// Assigning a reviewer also creates their pending review row, which carries
// the due date the overdue sweep watches.
type AssignmentService struct {
	db      *gorm.DB
	dueDays int
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	dueDays := defaultReviewDueDays
	if v, err := strconv.Atoi(os.Getenv("REVIEW_DUE_DAYS")); err == nil && v > 0 {
		dueDays = v
	}
	return &AssignmentService{db: db, dueDays: dueDays}
}

// ListAssignments returns all assignments of a round with reviewer details.
func (s *AssignmentService) ListAssignments(roundID int) ([]models.ReviewerAssignment, error) {
	var assignments []models.ReviewerAssignment
	err := s.db.Preload("Reviewer").
		Where("round_id = ?", roundID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// assignTx grants a reviewer access to a round. When the pair already exists
// the stored assignment is returned unchanged with created=false.
func (s *AssignmentService) assignTx(tx *gorm.DB, round *models.ReviewRound, reviewerID int, comment *string, dueDate *time.Time) (*models.ReviewerAssignment, bool, error) {
	if round.Status != models.RoundInProgress {
		return nil, false, Errf(KindInvalidState,
			"round %d is %s, reviewers can only be assigned to an open round", round.RoundID, round.Status)
	}

	var reviewer models.User
	err := tx.Where("user_id = ? AND delete_at IS NULL", reviewerID).First(&reviewer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, Errf(KindNotFound, "reviewer %d not found", reviewerID)
		}
		return nil, false, err
	}
	if reviewer.RoleID != models.RoleReviewer {
		return nil, false, Errf(KindInvalidState, "user %d is not a reviewer", reviewerID)
	}

	var existing models.ReviewerAssignment
	err = tx.Where("round_id = ? AND reviewer_id = ?", round.RoundID, reviewerID).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	now := time.Now()
	assignment := models.ReviewerAssignment{
		RoundID:       round.RoundID,
		ReviewerID:    reviewerID,
		EditorComment: comment,
		AssignedAt:    now,
	}
	if err := tx.Create(&assignment).Error; err != nil {
		return nil, false, err
	}

	due := now.AddDate(0, 0, s.dueDays)
	if dueDate != nil {
		due = *dueDate
	}
	review := models.Review{
		RoundID:    round.RoundID,
		ReviewerID: reviewerID,
		Status:     models.ReviewPending,
		DueDate:    &due,
		CreatedAt:  now,
	}
	if err := tx.Create(&review).Error; err != nil {
		return nil, false, err
	}

	return &assignment, true, nil
}

// unassignTx revokes an assignment. A submitted review is permanent evidence,
// so revocation is only possible while the review has not been completed; the
// still-pending review row is removed together with the assignment.
func (s *AssignmentService) unassignTx(tx *gorm.DB, roundID, reviewerID int) error {
	var assignment models.ReviewerAssignment
	err := tx.Where("round_id = ? AND reviewer_id = ?", roundID, reviewerID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Errf(KindNotFound, "reviewer %d is not assigned to round %d", reviewerID, roundID)
		}
		return err
	}

	var review models.Review
	err = tx.Where("round_id = ? AND reviewer_id = ?", roundID, reviewerID).First(&review).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil {
		if review.Status == models.ReviewCompleted {
			return Errf(KindReviewAlreadySubmitted,
				"reviewer %d already submitted a review for round %d", reviewerID, roundID)
		}
		if err := tx.Delete(&models.Review{}, "review_id = ?", review.ReviewID).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&models.ReviewerAssignment{}, "assignment_id = ?", assignment.AssignmentID).Error
}
