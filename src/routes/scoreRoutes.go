package routes

import (
	"github.com/BioMart/BioMart-Backend/src/controllers"
	"github.com/BioMart/BioMart-Backend/src/middleware"
	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupScoreRoutes(router *gin.Engine, service *services.ScoreService) {
	controller := controllers.NewScoreController(service)

	// Protected routes
	scoreGroup := router.Group("/scores")
	scoreGroup.Use(middleware.AuthMiddleware())
	{
		scoreGroup.GET("", controller.GetScores)
		scoreGroup.GET("/:id", controller.GetScoreByID)
	}

	// Reporting
	reportGroup := router.Group("/reports")
	reportGroup.Use(middleware.AuthMiddleware())
	{
		reportGroup.GET("/summary", controller.GetScoreSummary)
		reportGroup.GET("/summary/export", controller.ExportScoreSummary)
	}
}
