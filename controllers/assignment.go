package controllers

import (
	"net/http"
	"time"

	"journal-review-api/utils"

	"github.com/gin-gonic/gin"
)

type assignReviewerReq struct {
	ReviewerID int        `json:"reviewer_id" binding:"required"`
	Comment    string     `json:"comment"`
	DueDate    *time.Time `json:"due_date"`
}

// AssignReviewer adds a reviewer to a round. The operation is idempotent:
// repeating it for the same pair returns the stored assignment with 200
// instead of 201.
func AssignReviewer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req assignReviewerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	assignment, created, err := workflowSvc().AssignReviewer(caller, roundID, req.ReviewerID,
		ptr(utils.SanitizeInput(req.Comment)), req.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	message := "Reviewer already assigned"
	if created {
		status = http.StatusCreated
		message = "Reviewer assigned"
	}
	c.JSON(status, gin.H{
		"success":    true,
		"message":    message,
		"assignment": assignment,
	})
}

// ListAssignments returns the reviewer pool of a round.
func ListAssignments(c *gin.Context) {
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	assignments, err := workflowSvc().Assignments().ListAssignments(roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// UnassignReviewer revokes an assignment while the review is still pending.
func UnassignReviewer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}
	reviewerID, ok := paramID(c, "reviewer_id")
	if !ok {
		return
	}

	if err := workflowSvc().UnassignReviewer(caller, roundID, reviewerID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
