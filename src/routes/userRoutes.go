package routes

import (
	"github.com/BioMart/BioMart-Backend/src/controllers"
	"github.com/BioMart/BioMart-Backend/src/middleware"
	"github.com/BioMart/BioMart-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(router *gin.Engine, service *services.UserService) {
	controller := controllers.NewUserController(service)

	// Public routes
	router.POST("/login", controller.AuthenticateUser)

	// Protected routes
	userGroup := router.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.POST("/register", controller.CreateUser)
	}
}
