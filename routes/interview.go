package routes

import (
	"neurovisa/controllers"

	"github.com/gin-gonic/gin"
)

func SetupInterviewRoutes(router *gin.RouterGroup, ic *controllers.InterviewController, auth gin.HandlerFunc) {
	interview := router.Group("/interview", auth)
	{
		interview.POST("/start", ic.Start)
		interview.GET("/my-sessions", ic.MySessions)
		interview.POST("/answer", ic.SubmitAnswer)
		interview.GET("/:id", ic.GetSession)
		interview.POST("/:id/complete", ic.Complete)
	}
}
