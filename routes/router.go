package routes

import (
	"net/http"

	"neurovisa/controllers"
	"neurovisa/internal/logger"
	"neurovisa/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	APIPrefix      string
	AllowOrigins   []string
	TrustedProxies []string
	Auth           *controllers.AuthController
	Interview      *controllers.InterviewController
}

// NewRouter builds the gin engine with middleware and every API route
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestID(), middlewares.AccessLog())

	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		logger.Log.WithError(err).Warn("Ignoring invalid trusted proxies")
	}

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to NeuroVisa API"})
	})

	api := router.Group(opts.APIPrefix)
	auth := middlewares.AuthMiddleware()
	SetupAuthRoutes(api, opts.Auth, auth)
	SetupInterviewRoutes(api, opts.Interview, auth)

	return router
}
