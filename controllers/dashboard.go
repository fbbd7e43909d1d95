package controllers

import (
	"net/http"

	"journal-review-api/models"

	"github.com/gin-gonic/gin"
)

type statusCount struct {
	Status models.SubmissionStatus `json:"status"`
	Count  int64                   `json:"count"`
}

// GetDashboardStats returns the editorial overview: submission counts by
// status, open rounds, and outstanding review work.
func GetDashboardStats(c *gin.Context) {
	db := getDB()

	var byStatus []statusCount
	err := db.Model(&models.Submission{}).
		Select("status, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("status").
		Find(&byStatus).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submission stats"})
		return
	}

	var openRounds int64
	err = db.Model(&models.ReviewRound{}).
		Where("status = ?", models.RoundInProgress).
		Count(&openRounds).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch round stats"})
		return
	}

	var pendingReviews int64
	err = db.Model(&models.Review{}).
		Where("status = ?", models.ReviewPending).
		Count(&pendingReviews).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review stats"})
		return
	}

	var overdueReviews int64
	err = db.Model(&models.Review{}).
		Where("status = ?", models.ReviewOverdue).
		Count(&overdueReviews).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"submissions_by_status": byStatus,
		"open_rounds":           openRounds,
		"pending_reviews":       pendingReviews,
		"overdue_reviews":       overdueReviews,
	})
}
