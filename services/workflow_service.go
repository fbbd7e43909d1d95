package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"journal-review-api/config"
	"journal-review-api/models"
	"journal-review-api/utils"

	"gorm.io/gorm"
)

// WorkflowService is the single authorized entry point into the review
// workflow. It composes the round manager, review collector, assignment
// service and submission store; the sub-services never call each other
// directly. Every mutating operation runs as one transaction that first locks
// the submission row, so all checks observe a consistent snapshot of the
// aggregate and no partial write ever commits.
type WorkflowService struct {
	db          *gorm.DB
	rounds      *RoundService
	reviews     *ReviewService
	assignments *AssignmentService
	submissions *SubmissionService
}

func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{
		db:          db,
		rounds:      NewRoundService(db),
		reviews:     NewReviewService(db),
		assignments: NewAssignmentService(db),
		submissions: NewSubmissionService(db),
	}
}

// Rounds exposes the round manager's read operations.
func (s *WorkflowService) Rounds() *RoundService { return s.rounds }

// Reviews exposes the review collector's read operations.
func (s *WorkflowService) Reviews() *ReviewService { return s.reviews }

// Assignments exposes the assignment service's read operations.
func (s *WorkflowService) Assignments() *AssignmentService { return s.assignments }

// Submissions exposes the submission store.
func (s *WorkflowService) Submissions() *SubmissionService { return s.submissions }

// StartReviewProcess opens round 1 for a submitted manuscript and moves it
// under review.
func (s *WorkflowService) StartReviewProcess(caller Caller, submissionID int, notes *string) (*models.ReviewRound, error) {
	if err := requireCap(caller, CapStartReview); err != nil {
		return nil, err
	}

	var round *models.ReviewRound
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}
		if submission.Status != models.SubmissionSubmitted {
			return Errf(KindInvalidState,
				"submission %d is %s, review can only start on a submitted manuscript",
				submissionID, submission.Status)
		}

		created, err := s.rounds.createRoundTx(tx, submissionID, 1, notes)
		if err != nil {
			return err
		}
		round = created

		if err := s.setStatusTx(tx, caller, &submission, models.SubmissionUnderReview, nil, nil); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "start_review", &submission, map[string]interface{}{
			"round_id":     created.RoundID,
			"round_number": created.RoundNumber,
		}, "Review process started")
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// AdvanceRound opens the next round once the current one is closed, for
// revision cycles.
func (s *WorkflowService) AdvanceRound(caller Caller, submissionID int, notes *string) (*models.ReviewRound, error) {
	if err := requireCap(caller, CapManageRounds); err != nil {
		return nil, err
	}

	var round *models.ReviewRound
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}

		var maxRound int
		err := tx.Model(&models.ReviewRound{}).
			Where("submission_id = ?", submissionID).
			Select("COALESCE(MAX(round_number), 0)").
			Scan(&maxRound).Error
		if err != nil {
			return err
		}
		if maxRound == 0 {
			return Errf(KindInvalidState,
				"submission %d has no rounds yet, start the review process first", submissionID)
		}

		created, err := s.rounds.createRoundTx(tx, submissionID, maxRound+1, notes)
		if err != nil {
			return err
		}
		round = created

		if err := s.setStatusTx(tx, caller, &submission, models.SubmissionUnderReview, nil, notes); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "advance_round", &submission, map[string]interface{}{
			"round_id":     created.RoundID,
			"round_number": created.RoundNumber,
		}, "New review round opened")
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// CreateRound opens a round with an explicit round number. The number must be
// exactly one past the current maximum; gaps and duplicates are rejected with
// SequenceViolation before anything is written.
func (s *WorkflowService) CreateRound(caller Caller, submissionID, roundNumber int, notes *string) (*models.ReviewRound, error) {
	if err := requireCap(caller, CapManageRounds); err != nil {
		return nil, err
	}

	var round *models.ReviewRound
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}
		if submission.Status == models.SubmissionDraft {
			return Errf(KindInvalidState,
				"submission %d is still a draft, review rounds require a submitted manuscript", submissionID)
		}

		created, err := s.rounds.createRoundTx(tx, submissionID, roundNumber, notes)
		if err != nil {
			return err
		}
		round = created

		if err := s.setStatusTx(tx, caller, &submission, models.SubmissionUnderReview, nil, notes); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "create_round", &submission, map[string]interface{}{
			"round_id":     created.RoundID,
			"round_number": created.RoundNumber,
		}, "Review round created")
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// CloseRound completes or cancels a round and recomputes the submission
// status from the round's collected recommendations.
func (s *WorkflowService) CloseRound(caller Caller, roundID int, next models.RoundStatus, notes *string) (*models.ReviewRound, error) {
	if err := requireCap(caller, CapManageRounds); err != nil {
		return nil, err
	}

	var round *models.ReviewRound
	err := s.db.Transaction(func(tx *gorm.DB) error {
		located, err := s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		var submission models.Submission
		if err := lockSubmissionTx(tx, located.SubmissionID, &submission); err != nil {
			return err
		}
		// Re-read after taking the lock so the transition check is current.
		located, err = s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		if err := s.rounds.closeRoundTx(tx, located, next, notes); err != nil {
			return err
		}
		round = located

		if err := s.recomputeStatusTx(tx, caller, &submission); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "close_round", &submission, map[string]interface{}{
			"round_id": located.RoundID,
			"status":   next,
		}, fmt.Sprintf("Round %d %s", located.RoundNumber, next))
	})
	if err != nil {
		return nil, err
	}
	return round, nil
}

// SubmitReview records the calling reviewer's recommendation for a round.
func (s *WorkflowService) SubmitReview(caller Caller, roundID int, input SubmitReviewInput) (*models.Review, error) {
	if err := requireCap(caller, CapSubmitReview); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		located, err := s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		var submission models.Submission
		if err := lockSubmissionTx(tx, located.SubmissionID, &submission); err != nil {
			return err
		}
		located, err = s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		submitted, err := s.reviews.submitTx(tx, located, caller.UserID, input)
		if err != nil {
			return err
		}
		review = submitted

		// While the round stays in progress the derived status is unchanged,
		// but the recompute keeps the invariant explicit.
		return s.recomputeStatusTx(tx, caller, &submission)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// DeclineReview marks the calling reviewer's pending review as declined.
func (s *WorkflowService) DeclineReview(caller Caller, roundID int) (*models.Review, error) {
	if err := requireCap(caller, CapDeclineReview); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		located, err := s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		var submission models.Submission
		if err := lockSubmissionTx(tx, located.SubmissionID, &submission); err != nil {
			return err
		}
		located, err = s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		declined, err := s.reviews.declineTx(tx, located, caller.UserID)
		if err != nil {
			return err
		}
		review = declined
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// EditReview is the admin correction path; it may touch closed rounds and
// triggers a recompute because recommendations can change.
func (s *WorkflowService) EditReview(caller Caller, reviewID int, input EditReviewInput) (*models.Review, error) {
	if err := requireCap(caller, CapEditReviews); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Review
		if err := tx.Where("review_id = ?", reviewID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "review %d not found", reviewID)
			}
			return err
		}

		round, err := s.rounds.getRoundTx(tx, existing.RoundID)
		if err != nil {
			return err
		}

		var submission models.Submission
		if err := lockSubmissionTx(tx, round.SubmissionID, &submission); err != nil {
			return err
		}

		edited, err := s.reviews.editTx(tx, reviewID, input)
		if err != nil {
			return err
		}
		review = edited

		if err := s.recomputeStatusTx(tx, caller, &submission); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "edit_review", &submission, map[string]interface{}{
			"review_id": reviewID,
		}, "Review corrected by admin")
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// AssignReviewer grants a reviewer access to a round. The call is idempotent;
// the bool result reports whether a new assignment was created. A newly
// assigned reviewer is notified in-app and by best-effort email.
func (s *WorkflowService) AssignReviewer(caller Caller, roundID, reviewerID int, comment *string, dueDate *time.Time) (*models.ReviewerAssignment, bool, error) {
	if err := requireCap(caller, CapAssignReviewers); err != nil {
		return nil, false, err
	}

	var (
		assignment *models.ReviewerAssignment
		created    bool
		submission models.Submission
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		located, err := s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}
		if err := lockSubmissionTx(tx, located.SubmissionID, &submission); err != nil {
			return err
		}
		located, err = s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}

		assignment, created, err = s.assignments.assignTx(tx, located, reviewerID, comment, dueDate)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		if err := s.notifyTx(tx, reviewerID, "New review assignment",
			fmt.Sprintf("You have been assigned to review submission %s (round %d).",
				submission.SubmissionNumber, located.RoundNumber),
			"info", submission.SubmissionID); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "assign_reviewer", &submission, map[string]interface{}{
			"round_id":    roundID,
			"reviewer_id": reviewerID,
		}, "Reviewer assigned")
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.emailUser(reviewerID, "New review assignment",
			fmt.Sprintf("You have been assigned to review submission %s. Please log in to the review system for details.",
				submission.SubmissionNumber))
	}
	return assignment, created, nil
}

// UnassignReviewer revokes an assignment while the review is still pending.
func (s *WorkflowService) UnassignReviewer(caller Caller, roundID, reviewerID int) error {
	if err := requireCap(caller, CapAssignReviewers); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		located, err := s.rounds.getRoundTx(tx, roundID)
		if err != nil {
			return err
		}
		var submission models.Submission
		if err := lockSubmissionTx(tx, located.SubmissionID, &submission); err != nil {
			return err
		}

		if err := s.assignments.unassignTx(tx, roundID, reviewerID); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "unassign_reviewer", &submission, map[string]interface{}{
			"round_id":    roundID,
			"reviewer_id": reviewerID,
		}, "Reviewer unassigned")
	})
}

// PublishSubmission is the terminal transition, triggered by the external
// publication step once a submission is accepted.
func (s *WorkflowService) PublishSubmission(caller Caller, submissionID int) (*models.Submission, error) {
	if err := requireCap(caller, CapPublish); err != nil {
		return nil, err
	}

	var submission models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}
		if submission.Status != models.SubmissionAccepted {
			return Errf(KindInvalidState,
				"submission %d is %s, only accepted submissions can be published",
				submissionID, submission.Status)
		}
		if err := s.setStatusTx(tx, caller, &submission, models.SubmissionPublished, nil, nil); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "publish", &submission, nil, "Submission published")
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// OverrideStatus is the sanctioned editorial bypass of status derivation; it
// requires a reason and leaves a full history and audit trail.
func (s *WorkflowService) OverrideStatus(caller Caller, submissionID int, status models.SubmissionStatus, reason string) (*models.Submission, error) {
	if err := requireCap(caller, CapOverrideStatus); err != nil {
		return nil, err
	}
	if !models.ValidSubmissionStatus(status) {
		return nil, Errf(KindInvalidState, "unknown submission status %q", status)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, Errf(KindInvalidState, "a status override requires a reason")
	}

	var submission models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockSubmissionTx(tx, submissionID, &submission); err != nil {
			return err
		}
		if err := s.setStatusTx(tx, caller, &submission, status, &reason, nil); err != nil {
			return err
		}
		return s.auditTx(tx, caller, "override_status", &submission, map[string]interface{}{
			"status": status,
			"reason": reason,
		}, "Submission status overridden by admin")
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// recomputeStatusTx derives the submission status from round/review state:
// an open round means under review; otherwise the latest completed round's
// completed recommendations decide, with reject dominating revisions
// dominating accept. With no evidence the status is left unchanged, and a
// published submission is never recomputed.
func (s *WorkflowService) recomputeStatusTx(tx *gorm.DB, caller Caller, submission *models.Submission) error {
	if submission.Status == models.SubmissionPublished {
		return nil
	}

	openCount, err := s.rounds.openRoundCountTx(tx, submission.SubmissionID)
	if err != nil {
		return err
	}

	target := submission.Status
	if openCount > 0 {
		target = models.SubmissionUnderReview
	} else {
		latest, err := s.rounds.latestCompletedRoundTx(tx, submission.SubmissionID)
		if err != nil {
			return err
		}
		if latest == nil {
			return nil
		}
		recs, err := s.reviews.completedRecommendationsTx(tx, latest.RoundID)
		if err != nil {
			return err
		}
		derived, ok := models.DeriveDecision(recs)
		if !ok {
			return nil
		}
		target = derived
	}

	if target == submission.Status {
		return nil
	}
	return s.setStatusTx(tx, caller, submission, target, nil, nil)
}

// setStatusTx updates the submission status and appends the history row in
// the same transaction.
func (s *WorkflowService) setStatusTx(tx *gorm.DB, caller Caller, submission *models.Submission, next models.SubmissionStatus, reason, notes *string) error {
	if submission.Status == next {
		return nil
	}
	now := time.Now()
	err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": now,
		}).Error
	if err != nil {
		return err
	}

	old := submission.Status
	if err := recordStatusChangeTx(tx, submission.SubmissionID, &old, next, caller.UserID, reason, notes); err != nil {
		return err
	}

	submission.Status = next
	submission.UpdatedAt = &now
	return nil
}

// notifyTx writes an in-app notification row inside the transaction.
func (s *WorkflowService) notifyTx(tx *gorm.DB, userID int, title, message, notifType string, submissionID int) error {
	related := uint(submissionID)
	notification := models.Notification{
		UserID:              uint(userID),
		Title:               title,
		Message:             message,
		Type:                notifType,
		RelatedSubmissionID: &related,
		CreateAt:            time.Now(),
	}
	return tx.Create(&notification).Error
}

// auditTx records the operation against the submission aggregate.
func (s *WorkflowService) auditTx(tx *gorm.DB, caller Caller, action string, submission *models.Submission, values map[string]interface{}, description string) error {
	entityID := submission.SubmissionID
	audit := models.AuditLog{
		UserID:     caller.UserID,
		Action:     action,
		EntityType: "submission",
		EntityID:   &entityID,
		IPAddress:  caller.IPAddress,
		CreatedAt:  time.Now(),
	}
	if submission.SubmissionNumber != "" {
		number := submission.SubmissionNumber
		audit.EntityNumber = &number
	}
	if description != "" {
		audit.Description = &description
	}
	if values != nil {
		serialized, _ := json.Marshal(values)
		payload := string(serialized)
		audit.NewValues = &payload
	}
	if strings.TrimSpace(caller.UserAgent) != "" {
		ua := caller.UserAgent
		audit.UserAgent = &ua
	}
	return tx.Create(&audit).Error
}

// emailUser sends a best-effort notification email after commit. Failures are
// logged, never propagated to the request.
func (s *WorkflowService) emailUser(userID int, subject, message string) {
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		log.Printf("notification email skipped, user %d not found: %v", userID, err)
		return
	}
	if !utils.ValidateEmail(user.Email) {
		log.Printf("notification email skipped, user %d has an invalid address", userID)
		return
	}
	html := buildNotificationEmail(subject, user.FullName(), message)
	if err := config.SendMail([]string{user.Email}, subject, html); err != nil {
		log.Printf("notification email send failed (subject=%q to=%s): %v", subject, user.Email, err)
	}
}

func buildNotificationEmail(subject, name, message string) string {
	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}
