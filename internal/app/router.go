package app

import (
	"lingua_backend/docs"
	"lingua_backend/internal/config"
	"lingua_backend/internal/middleware"
	"lingua_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerLessonRoutes(authGroup, c)
		a.registerProfileRoutes(authGroup, c)
	}
}

func (a *App) registerLessonRoutes(rg *gin.RouterGroup, c *controllers) {
	lessons := rg.Group("/lessons/:id")
	{
		lessons.POST("/start", c.lesson.StartLesson)
		lessons.GET("/exercises/:index", c.lesson.GetExercise)
		lessons.POST("/exercises/:index/submit", c.lesson.SubmitAnswer)
		lessons.GET("/exercises/:index/hint", c.lesson.GetHint)
		lessons.POST("/complete", c.lesson.CompleteLesson)
		lessons.GET("/review", c.lesson.ReviewLesson)
		lessons.GET("/hints", c.lesson.GetLessonHints)
	}

	rg.POST("/practice/conversation", c.chat.Converse)
}

func (a *App) registerProfileRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.profile.GetProfile)
	rg.PUT("/profile/language", c.profile.SetLanguage)
	rg.POST("/shop/purchase", c.profile.Purchase)

	// 任务/成就
	rg.GET("/quests", c.quest.GetQuests)
	rg.GET("/achievements", c.achievement.GetUserAchievements)
	rg.GET("/achievements/leaderboard", c.achievement.GetLeaderboard)
}
