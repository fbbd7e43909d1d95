package controllers

import (
	"net/http"
	"strings"

	"journal-review-api/models"
	"journal-review-api/utils"

	"github.com/gin-gonic/gin"
)

type createRoundReq struct {
	SubmissionID int    `json:"submission_id" binding:"required"`
	RoundNumber  int    `json:"round_number" binding:"required"`
	Notes        string `json:"notes"`
}

// CreateRound opens a review round with an explicit round number.
func CreateRound(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req createRoundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	round, err := workflowSvc().CreateRound(caller, req.SubmissionID, req.RoundNumber, ptr(utils.SanitizeInput(req.Notes)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"round":   round,
	})
}

// GetRound returns one round with its assignments.
func GetRound(c *gin.Context) {
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	round, err := workflowSvc().Rounds().GetRound(roundID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"round":   round,
	})
}

// ListRounds returns all rounds of a submission, ordered by round number.
func ListRounds(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Visibility check rides on the submission lookup.
	if _, err := workflowSvc().Submissions().GetSubmission(caller, submissionID); err != nil {
		respondError(c, err)
		return
	}

	rounds, err := workflowSvc().Rounds().ListRounds(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  rounds,
		"total":   len(rounds),
	})
}

type updateRoundReq struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateRoundStatus completes or cancels a round. These are the only legal
// transitions; end_date is stamped by the service.
func UpdateRoundStatus(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	roundID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateRoundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	status := models.RoundStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !models.ValidRoundStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown round status"})
		return
	}

	round, err := workflowSvc().CloseRound(caller, roundID, status, ptr(utils.SanitizeInput(req.Notes)))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Round updated",
		"round":   round,
	})
}
