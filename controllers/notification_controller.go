package controllers

import (
	"net/http"
	"time"

	"journal-review-api/models"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications, newest first.
// ?unread=1 restricts to unread ones.
func GetNotifications(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	query := getDB().Where("user_id = ?", caller.UserID)
	if c.Query("unread") == "1" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("create_at DESC").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetUnreadNotificationCount returns the caller's unread badge count.
func GetUnreadNotificationCount(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var count int64
	err := getDB().Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", caller.UserID, false).
		Count(&count).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
	})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	notificationID, ok := paramID(c, "id")
	if !ok {
		return
	}

	now := time.Now()
	result := getDB().Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, caller.UserID).
		Updates(map[string]interface{}{
			"is_read":   true,
			"update_at": now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks all the caller's notifications as read.
func MarkAllNotificationsRead(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	now := time.Now()
	result := getDB().Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", caller.UserID, false).
		Updates(map[string]interface{}{
			"is_read":   true,
			"update_at": now,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updated": result.RowsAffected,
	})
}
