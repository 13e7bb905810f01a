package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vocab_quiz_backend/docs"
	"vocab_quiz_backend/pkg/monitoring"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	a.registerPublicRoutes(api, c)
	a.registerQuizRoutes(api, c)
	a.registerAdminRoutes(api, c)
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.GET("/page", c.content.Page)
	api.GET("/sets", c.content.Sets)
}

func (a *App) registerQuizRoutes(api *gin.RouterGroup, c *controllers) {
	quiz := api.Group("/quiz/:set")
	{
		quiz.GET("", c.quiz.Open)
		quiz.POST("/answer", c.quiz.Answer)
		quiz.POST("/next", c.quiz.Next)
		quiz.POST("/previous", c.quiz.Previous)
		quiz.POST("/jump", c.quiz.Jump)
		quiz.POST("/submit", c.quiz.Submit)
		quiz.POST("/reset", c.quiz.Reset)
		quiz.POST("/clear", c.quiz.Clear)
		quiz.GET("/results/history", c.quiz.History)
		quiz.GET("/live", c.quiz.Live)
	}
}

func (a *App) registerAdminRoutes(api *gin.RouterGroup, c *controllers) {
	admin := api.Group("/admin")
	{
		admin.POST("/reload", c.content.Reload)
	}
}
