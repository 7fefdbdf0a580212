package app

import (
	"quizcraft_backend/docs"
	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/middleware"
	"quizcraft_backend/internal/model"
	"quizcraft_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/profile", c.auth.UpdateProfile)

		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/quizzes", c.quiz.ListForStudent)

		// 答题会话
		student.POST("/quizzes/:quizId/attempts", c.attempt.Start)
		student.GET("/attempts/:id", c.attempt.Get)
		student.POST("/attempts/:id/answer", c.attempt.Answer)
		student.POST("/attempts/:id/navigate", c.attempt.Navigate)
		student.POST("/attempts/:id/submit", c.attempt.Submit)

		// 成绩
		student.GET("/results", c.result.ListMine)
		student.GET("/results/:id", c.result.GetMine)
		student.PUT("/results/:id/feedback", c.result.SetFeedback)

		student.GET("/leaderboard", c.analytics.OverallLeaderboard)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		// 题库
		teacher.POST("/questions", c.question.Create)
		teacher.GET("/questions", c.question.List)
		teacher.PUT("/questions/:id", c.question.Update)
		teacher.DELETE("/questions/:id", c.question.Delete)
		teacher.POST("/questions/import", c.question.Import)
		teacher.GET("/questions/import/template", c.question.Template)
		teacher.POST("/questions/images", c.question.UploadImage)

		// 试卷
		teacher.POST("/quizzes", c.quiz.Create)
		teacher.GET("/quizzes", c.quiz.ListMine)
		teacher.GET("/quizzes/:id", c.quiz.Get)
		teacher.PUT("/quizzes/:id", c.quiz.Update)
		teacher.DELETE("/quizzes/:id", c.quiz.Delete)

		// 成绩与统计
		teacher.GET("/quizzes/:id/results", c.result.ListByQuiz)
		teacher.PUT("/results/:id/remarks", c.result.SetRemarks)
		teacher.GET("/quizzes/:id/analytics", c.analytics.QuizAnalytics)
		teacher.GET("/quizzes/:id/leaderboard", c.analytics.QuizLeaderboard)
		teacher.GET("/leaderboard", c.analytics.OverallLeaderboard)
	}
}
