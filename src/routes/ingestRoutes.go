package routes

import (
	"github.com/BioMart/BioMart-Backend/src/controllers"
	"github.com/BioMart/BioMart-Backend/src/middleware"
	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupIngestRoutes(router *gin.Engine, ingest *services.IngestService, state *services.StateService, collector *services.CollectService) {
	controller := controllers.NewIngestController(ingest, state, collector)

	// Protected routes
	ingestGroup := router.Group("/ingest")
	ingestGroup.Use(middleware.AuthMiddleware())
	{
		ingestGroup.POST("/run", controller.RunIngest)
		ingestGroup.POST("/upload", controller.UploadLog)
		ingestGroup.GET("/files", controller.GetProcessedFiles)
	}

	collectGroup := router.Group("/collect")
	collectGroup.Use(middleware.AuthMiddleware())
	{
		collectGroup.POST("/run", controller.RunCollect)
	}
}
