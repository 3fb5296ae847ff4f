package app

import (
	"interview_card_backend/internal/config"
	"interview_card_backend/internal/middleware"
	"interview_card_backend/internal/model"
	"interview_card_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/categories", c.question.ListCategories)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	rg.GET("/categories/:category/questions", c.question.StudentQuestions)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", c.session.StartSession)
		sessions.GET("", c.session.ListSessions)
		sessions.GET("/:id", c.session.GetSession)
		sessions.GET("/:id/question", c.session.CurrentQuestion)
		sessions.POST("/:id/answer", c.session.SubmitAnswer)
		sessions.GET("/:id/reveal", c.session.RevealAnswer)
		sessions.POST("/:id/mark", c.session.SelfMark)
		sessions.POST("/:id/finish", c.session.FinishSession)
	}

	rg.GET("/progress", c.progress.Overview)
	rg.GET("/progress/:category", c.progress.Category)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		banks := teacher.Group("/banks")
		{
			banks.POST("", c.question.CreateBank)
			banks.GET("", c.question.ListBanks)
			banks.GET("/:id", c.question.GetBank)
			banks.PUT("/:id/publish", c.question.PublishBank)
			banks.DELETE("/:id", c.question.DeleteBank)
			banks.POST("/import", c.question.ImportBank)
			banks.POST("/:id/export", c.question.ExportBank)
		}

		questions := teacher.Group("/questions")
		{
			questions.POST("", c.question.CreateQuestion)
			questions.PUT("/:id", c.question.UpdateQuestion)
			questions.DELETE("/:id", c.question.DeleteQuestion)
		}
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PUT("/users/:id/disabled", c.user.SetUserDisabled)
		admin.PUT("/users/:id/role", c.user.SetUserRole)
	}
}
