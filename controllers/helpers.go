package controllers

import (
	"net/http"

	"journal-review-api/config"
	"journal-review-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB() *gorm.DB {
	return config.DB
}

func workflowSvc() *services.WorkflowService {
	return services.NewWorkflowService(getDB())
}

// currentCaller builds the identity assertion from the values the auth
// middleware stored in the gin context, plus the request metadata the audit
// trail wants.
func currentCaller(c *gin.Context) (services.Caller, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		return services.Caller{}, false
	}
	userID, ok := userIDValue.(int)
	if !ok {
		return services.Caller{}, false
	}

	roleIDValue, exists := c.Get("roleID")
	if !exists {
		return services.Caller{}, false
	}
	roleID, ok := roleIDValue.(int)
	if !ok {
		return services.Caller{}, false
	}

	return services.Caller{
		UserID:    userID,
		RoleID:    roleID,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}, true
}

// mustCaller aborts with 500 when the middleware did not run; routes are
// always registered behind AuthMiddleware so this is a wiring bug, not a
// client error.
func mustCaller(c *gin.Context) (services.Caller, bool) {
	caller, ok := currentCaller(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
	}
	return caller, ok
}

var kindStatus = map[services.ErrorKind]int{
	services.KindForbidden:              http.StatusForbidden,
	services.KindInvalidState:           http.StatusConflict,
	services.KindSequenceViolation:      http.StatusConflict,
	services.KindIllegalTransition:      http.StatusConflict,
	services.KindDuplicateReview:        http.StatusConflict,
	services.KindRoundClosed:            http.StatusConflict,
	services.KindReviewAlreadySubmitted: http.StatusConflict,
	services.KindNotFound:               http.StatusNotFound,
}

// respondError maps workflow error kinds to HTTP statuses; anything without a
// kind is an internal failure.
func respondError(c *gin.Context, err error) {
	if kind, ok := services.KindOf(err); ok {
		status, known := kindStatus[kind]
		if !known {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func ptr(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
