package controllers

import (
	"net/http"
	"strings"
	"time"

	"journal-review-api/models"
	"journal-review-api/services"
	"journal-review-api/utils"

	"github.com/gin-gonic/gin"
)

type submitReviewReq struct {
	Recommendation       string `json:"recommendation" binding:"required"`
	Comments             string `json:"comments"`
	ConfidentialComments string `json:"confidential_comments"`
}

// SubmitReview records the calling reviewer's recommendation for a round.
func SubmitReview(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req submitReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	recommendation := models.Recommendation(strings.ToLower(strings.TrimSpace(req.Recommendation)))
	if !models.ValidRecommendation(recommendation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recommendation"})
		return
	}

	review, err := workflowSvc().SubmitReview(caller, roundID, services.SubmitReviewInput{
		Recommendation:       recommendation,
		Comments:             utils.SanitizeInput(req.Comments),
		ConfidentialComments: utils.SanitizeInput(req.ConfidentialComments),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review submitted",
		"review":  review,
	})
}

// DeclineReview marks the calling reviewer's pending review as declined.
func DeclineReview(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	review, err := workflowSvc().DeclineReview(caller, roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review declined",
		"review":  review,
	})
}

// ListReviews returns the reviews of a round, redacted for the caller's
// role: non-admins never see confidential comments, authors never see
// reviewer identities.
func ListReviews(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	round, err := workflowSvc().Rounds().GetRound(roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	// Round visibility follows submission visibility.
	if _, err := workflowSvc().Submissions().GetSubmission(caller, round.SubmissionID); err != nil {
		respondError(c, err)
		return
	}

	reviews, err := workflowSvc().Reviews().ListReviews(roundID, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetMyReviews returns the calling reviewer's own review rows across all
// rounds, pending work included.
func GetMyReviews(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	reviews, err := workflowSvc().Reviews().ListReviewsForReviewer(caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

type editReviewReq struct {
	Status               *string `json:"status"`
	Recommendation       *string `json:"recommendation"`
	Comments             *string `json:"comments"`
	ConfidentialComments *string `json:"confidential_comments"`
}

// EditReview is the admin correction path: any review field may be updated,
// even after the round closed.
func EditReview(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req editReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input := services.EditReviewInput{
		Comments:             req.Comments,
		ConfidentialComments: req.ConfidentialComments,
	}
	if req.Status != nil {
		status := models.ReviewStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !models.ValidReviewStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown review status"})
			return
		}
		input.Status = &status
	}
	if req.Recommendation != nil {
		recommendation := models.Recommendation(strings.ToLower(strings.TrimSpace(*req.Recommendation)))
		if !models.ValidRecommendation(recommendation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recommendation"})
			return
		}
		input.Recommendation = &recommendation
	}

	review, err := workflowSvc().EditReview(caller, reviewID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review updated",
		"review":  review,
	})
}

// SweepOverdueReviews lets an external scheduler (or an admin) trigger the
// overdue sweep on demand.
func SweepOverdueReviews(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	count, err := workflowSvc().SweepOverdue(caller, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"marked":  count,
	})
}
