package routes

import (
	"records-portal-api/controllers"
	"records-portal-api/middleware"
	"records-portal-api/models"
	"records-portal-api/monitor"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	monitor.RegisterHealthRoutes(router)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)
		}

		// Protected routes (require authentication; role re-read per request)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/profile", controllers.GetProfile)
			protected.GET("/stats", controllers.GetRMSStats)

			// Records management
			documents := protected.Group("/documents")
			{
				documents.GET("", controllers.ListRMSDocuments)
				documents.GET("/:id", controllers.GetRMSDocument)
				documents.GET("/:id/transitions", controllers.ListRMSTransitions)

				// Registration and metadata edits belong to records intake
				documents.POST("", middleware.RequireRole(models.RoleRecordsOfficer, models.RoleAdmin), controllers.CreateRMSDocument)
				documents.PATCH("/:id", middleware.RequireRole(models.RoleRecordsOfficer, models.RoleAdmin), controllers.PatchRMSDocument)

				// Per-edge role checks happen in the workflow engine
				documents.POST("/:id/forward", controllers.ForwardRMSDocument)
				documents.POST("/:id/send-to-records", middleware.RequireRole(models.RoleChiefOfficer), controllers.SendRMSDocumentToRecords)
				documents.POST("/:id/comments", controllers.AddRMSComment)
				documents.POST("/:id/dispatch", controllers.DispatchRMSDocument)
			}
		}
	}
}
