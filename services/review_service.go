package services

import (
	"errors"
	"time"

	"journal-review-api/models"

	"gorm.io/gorm"
)

// ReviewService manages review records within a round: submission by the
// assigned reviewer, the admin correction path, and visibility rules for
// confidential content.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// SubmitReviewInput is a reviewer's verdict payload.
type SubmitReviewInput struct {
	Recommendation       models.Recommendation
	Comments             string
	ConfidentialComments string
}

// EditReviewInput is the admin correction payload; nil fields stay untouched.
type EditReviewInput struct {
	Status               *models.ReviewStatus
	Recommendation       *models.Recommendation
	Comments             *string
	ConfidentialComments *string
}

// submitTx completes the caller's pending review for the round. The round
// status check and the review write happen in the same transaction, so a
// concurrently closed round surfaces as RoundClosed rather than a review
// silently attaching to a closed round.
func (s *ReviewService) submitTx(tx *gorm.DB, round *models.ReviewRound, reviewerID int, input SubmitReviewInput) (*models.Review, error) {
	if !models.ValidRecommendation(input.Recommendation) {
		return nil, Errf(KindInvalidState, "unknown recommendation %q", input.Recommendation)
	}
	if round.Status != models.RoundInProgress {
		return nil, Errf(KindRoundClosed, "round %d is %s", round.RoundID, round.Status)
	}

	var assignment models.ReviewerAssignment
	err := tx.Where("round_id = ? AND reviewer_id = ?", round.RoundID, reviewerID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindForbidden,
				"reviewer %d holds no assignment for round %d", reviewerID, round.RoundID)
		}
		return nil, err
	}

	now := time.Now()
	rec := input.Recommendation

	var review models.Review
	err = tx.Where("round_id = ? AND reviewer_id = ?", round.RoundID, reviewerID).First(&review).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// Assignment without a review row predates eager creation; create the
		// completed review directly.
		review = models.Review{
			RoundID:              round.RoundID,
			ReviewerID:           reviewerID,
			Status:               models.ReviewCompleted,
			Recommendation:       &rec,
			Comments:             input.Comments,
			ConfidentialComments: input.ConfidentialComments,
			SubmittedAt:          &now,
			CreatedAt:            now,
		}
		if err := tx.Create(&review).Error; err != nil {
			return nil, err
		}
		return &review, nil
	}

	if !review.Status.Submittable() {
		return nil, Errf(KindDuplicateReview,
			"reviewer %d already has a %s review for round %d", reviewerID, review.Status, round.RoundID)
	}

	err = tx.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":                models.ReviewCompleted,
			"recommendation":        rec,
			"comments":              input.Comments,
			"confidential_comments": input.ConfidentialComments,
			"submitted_at":          now,
			"updated_at":            now,
		}).Error
	if err != nil {
		return nil, err
	}

	review.Status = models.ReviewCompleted
	review.Recommendation = &rec
	review.Comments = input.Comments
	review.ConfidentialComments = input.ConfidentialComments
	review.SubmittedAt = &now
	review.UpdatedAt = &now
	return &review, nil
}

// declineTx marks the caller's pending review as declined.
func (s *ReviewService) declineTx(tx *gorm.DB, round *models.ReviewRound, reviewerID int) (*models.Review, error) {
	if round.Status != models.RoundInProgress {
		return nil, Errf(KindRoundClosed, "round %d is %s", round.RoundID, round.Status)
	}

	var review models.Review
	err := tx.Where("round_id = ? AND reviewer_id = ?", round.RoundID, reviewerID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound,
				"reviewer %d has no review for round %d", reviewerID, round.RoundID)
		}
		return nil, err
	}
	if !review.Status.Submittable() {
		return nil, Errf(KindInvalidState,
			"review %d is already %s", review.ReviewID, review.Status)
	}

	now := time.Now()
	err = tx.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(map[string]interface{}{
			"status":     models.ReviewDeclined,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}

	review.Status = models.ReviewDeclined
	review.UpdatedAt = &now
	return &review, nil
}

// editTx is the admin correction path. It deliberately skips the round
// openness check so records can be fixed after a round closed.
func (s *ReviewService) editTx(tx *gorm.DB, reviewID int, input EditReviewInput) (*models.Review, error) {
	var review models.Review
	err := tx.Where("review_id = ?", reviewID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound, "review %d not found", reviewID)
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}

	if input.Status != nil {
		if !models.ValidReviewStatus(*input.Status) {
			return nil, Errf(KindIllegalTransition, "unknown review status %q", *input.Status)
		}
		updates["status"] = *input.Status
		review.Status = *input.Status
	}
	if input.Recommendation != nil {
		if !models.ValidRecommendation(*input.Recommendation) {
			return nil, Errf(KindInvalidState, "unknown recommendation %q", *input.Recommendation)
		}
		updates["recommendation"] = *input.Recommendation
		review.Recommendation = input.Recommendation
	}
	if input.Comments != nil {
		updates["comments"] = *input.Comments
		review.Comments = *input.Comments
	}
	if input.ConfidentialComments != nil {
		updates["confidential_comments"] = *input.ConfidentialComments
		review.ConfidentialComments = *input.ConfidentialComments
	}

	if err := tx.Model(&models.Review{}).Where("review_id = ?", reviewID).Updates(updates).Error; err != nil {
		return nil, err
	}
	review.UpdatedAt = &now
	return &review, nil
}

// ListReviews returns the reviews of a round, redacted for the caller's role.
func (s *ReviewService) ListReviews(roundID int, caller Caller) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Reviewer").
		Where("round_id = ?", roundID).
		Order("review_id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return RedactReviews(reviews, caller.RoleID), nil
}

// ListReviewsForReviewer returns the caller's own review rows across all
// rounds, newest first. The rows are the caller's own work, so no redaction
// applies.
func (s *ReviewService) ListReviewsForReviewer(reviewerID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Round").
		Where("reviewer_id = ?", reviewerID).
		Order("review_id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// completedRecommendationsTx collects the recommendations of all completed
// reviews in a round, for status derivation.
func (s *ReviewService) completedRecommendationsTx(tx *gorm.DB, roundID int) ([]models.Recommendation, error) {
	var reviews []models.Review
	err := tx.Where("round_id = ? AND status = ?", roundID, models.ReviewCompleted).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	recs := make([]models.Recommendation, 0, len(reviews))
	for _, r := range reviews {
		if r.Recommendation != nil {
			recs = append(recs, *r.Recommendation)
		}
	}
	return recs, nil
}

// RedactReviews strips fields the caller's role may not see. Redaction is
// applied to every listing path so a forgotten "safe variant" cannot leak:
// non-admins never see confidential comments, and authors additionally never
// see reviewer identities.
func RedactReviews(reviews []models.Review, roleID int) []models.Review {
	if RoleCan(roleID, CapViewConfidential) {
		return reviews
	}
	redacted := make([]models.Review, len(reviews))
	for i, r := range reviews {
		r.ConfidentialComments = ""
		if roleID == models.RoleAuthor {
			r.ReviewerID = 0
			r.Reviewer = nil
		}
		redacted[i] = r
	}
	return redacted
}
