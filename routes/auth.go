package routes

import (
	"neurovisa/controllers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers sign-up, login and the current-user endpoint
func SetupAuthRoutes(router *gin.RouterGroup, ac *controllers.AuthController, auth gin.HandlerFunc) {
	router.POST("/users", ac.Register)
	router.POST("/auth/login", ac.Login)
	router.POST("/auth/login/access-token", ac.Login)
	router.GET("/users/me", auth, ac.Me)
}
