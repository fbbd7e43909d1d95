package controllers

import (
	"net/http"
	"strings"

	"journal-review-api/models"
	"journal-review-api/utils"

	"github.com/gin-gonic/gin"
)

type roundNotesReq struct {
	Notes string `json:"notes"`
}

// StartReviewProcess opens round 1 on a submitted manuscript.
func StartReviewProcess(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req roundNotesReq
	_ = c.ShouldBindJSON(&req)

	round, err := workflowSvc().StartReviewProcess(caller, submissionID, ptr(utils.SanitizeInput(req.Notes)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Review process started",
		"round":   round,
	})
}

// AdvanceRound opens the next review round once the current one is closed.
func AdvanceRound(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req roundNotesReq
	_ = c.ShouldBindJSON(&req)

	round, err := workflowSvc().AdvanceRound(caller, submissionID, ptr(utils.SanitizeInput(req.Notes)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New review round opened",
		"round":   round,
	})
}

// PublishSubmission performs the terminal accepted → published transition.
func PublishSubmission(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	submission, err := workflowSvc().PublishSubmission(caller, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission published",
		"submission": submission,
	})
}

type overrideStatusReq struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// OverrideSubmissionStatus is the sanctioned editorial bypass of the derived
// status.
func OverrideSubmissionStatus(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req overrideStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	status := models.SubmissionStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !models.ValidSubmissionStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown submission status"})
		return
	}

	submission, err := workflowSvc().OverrideStatus(caller, submissionID, status, utils.SanitizeInput(req.Reason))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission status overridden",
		"submission": submission,
	})
}
