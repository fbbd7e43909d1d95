package routes

import (
	"journal-review-api/controllers"
	"journal-review-api/middleware"
	"journal-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Review API is running",
				})
			})
		}

		// Protected routes (require a verified identity token)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/history", controllers.GetSubmissionHistory)
				submissions.GET("/:id/rounds", controllers.ListRounds)

				// Authors create and submit their own manuscripts
				submissions.POST("", middleware.RequireRole(models.RoleAuthor), controllers.CreateSubmission)
				submissions.POST("/:id/submit", middleware.RequireRole(models.RoleAuthor), controllers.SubmitSubmission)

				// Editorial workflow operations are admin only
				submissions.POST("/:id/review-process", middleware.RequireRole(models.RoleAdmin), controllers.StartReviewProcess)
				submissions.POST("/:id/advance-round", middleware.RequireRole(models.RoleAdmin), controllers.AdvanceRound)
				submissions.POST("/:id/publish", middleware.RequireRole(models.RoleAdmin), controllers.PublishSubmission)
				submissions.POST("/:id/status-override", middleware.RequireRole(models.RoleAdmin), controllers.OverrideSubmissionStatus)
			}

			// Review rounds
			rounds := protected.Group("/rounds")
			{
				rounds.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateRound)
				rounds.GET("/:id", middleware.RequireRole(models.RoleAdmin), controllers.GetRound)
				rounds.PATCH("/:id", middleware.RequireRole(models.RoleAdmin), controllers.UpdateRoundStatus)

				// Reviewer pool
				rounds.POST("/:id/assignments", middleware.RequireRole(models.RoleAdmin), controllers.AssignReviewer)
				rounds.GET("/:id/assignments", middleware.RequireRole(models.RoleAdmin), controllers.ListAssignments)
				rounds.DELETE("/:id/assignments/:reviewer_id", middleware.RequireRole(models.RoleAdmin), controllers.UnassignReviewer)

				// Reviews; listing is open to every role, redaction happens
				// in the service layer
				rounds.POST("/:id/reviews", middleware.RequireRole(models.RoleReviewer), controllers.SubmitReview)
				rounds.POST("/:id/reviews/decline", middleware.RequireRole(models.RoleReviewer), controllers.DeclineReview)
				rounds.GET("/:id/reviews", controllers.ListReviews)
			}

			// Reviewer worklist and admin review corrections
			reviews := protected.Group("/reviews")
			{
				reviews.GET("/mine", middleware.RequireRole(models.RoleReviewer), controllers.GetMyReviews)
				reviews.PATCH("/:id", middleware.RequireRole(models.RoleAdmin), controllers.EditReview)
				reviews.POST("/sweep-overdue", middleware.RequireRole(models.RoleAdmin), controllers.SweepOverdueReviews)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadNotificationCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Dashboard
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/stats", middleware.RequireRole(models.RoleAdmin), controllers.GetDashboardStats)
			}
		}
	}
}
