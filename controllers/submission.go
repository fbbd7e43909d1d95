package controllers

import (
	"net/http"
	"strconv"

	"journal-review-api/models"
	"journal-review-api/services"

	"github.com/gin-gonic/gin"
)

type createSubmissionReq struct {
	Title         string   `json:"title" binding:"required"`
	Abstract      string   `json:"abstract"`
	Keywords      []string `json:"keywords"`
	JournalName   string   `json:"journal_name" binding:"required"`
	IssueRef      string   `json:"issue_ref"`
	ManuscriptRef string   `json:"manuscript_ref"`
}

// CreateSubmission creates a draft manuscript entry for the calling author.
func CreateSubmission(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req createSubmissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := workflowSvc().Submissions().CreateSubmission(caller, services.CreateSubmissionInput{
		Title:         req.Title,
		Abstract:      req.Abstract,
		Keywords:      req.Keywords,
		JournalName:   req.JournalName,
		IssueRef:      ptr(req.IssueRef),
		ManuscriptRef: ptr(req.ManuscriptRef),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// SubmitSubmission moves the caller's draft into the submitted state.
func SubmitSubmission(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	submission, err := workflowSvc().Submissions().SubmitSubmission(caller, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission submitted for review",
		"submission": submission,
	})
}

// GetSubmissions lists the submissions visible to the caller. Admins may
// filter with ?status=.
func GetSubmissions(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	statusFilter := models.SubmissionStatus(c.Query("status"))
	submissions, err := workflowSvc().Submissions().ListSubmissions(caller, statusFilter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns one submission.
func GetSubmission(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	submission, err := workflowSvc().Submissions().GetSubmission(caller, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetSubmissionHistory returns the status change trail of a submission.
func GetSubmissionHistory(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	submissionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	history, err := workflowSvc().Submissions().ListStatusHistory(caller, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}
