package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/studere/studere-api/api/swagger"
	"github.com/studere/studere-api/internal/handler"
	"github.com/studere/studere-api/internal/middleware"
	"github.com/studere/studere-api/internal/repository"
	"github.com/studere/studere-api/internal/service"
	"github.com/studere/studere-api/pkg/cache"
	"github.com/studere/studere-api/pkg/config"
	"github.com/studere/studere-api/pkg/database"
	"github.com/studere/studere-api/pkg/logger"
	corsmiddleware "github.com/studere/studere-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studere/studere-api/pkg/middleware/requestid"
)

// @title Studere API
// @version 1.0.0
// @description Study tracking backend: terms, courses, assignments, study plans and timed study sessions
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	termRepo := repository.NewTermRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	planRepo := repository.NewStudyPlanRepository(db)
	sessionRepo := repository.NewStudySessionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	ownershipRepo := repository.NewOwnershipRepository(db)

	ownershipSvc := service.NewOwnershipService(ownershipRepo, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	termSvc := service.NewTermService(termRepo, ownershipSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, ownershipSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, ownershipSvc, validate, logr)

	planSvc := service.NewStudyPlanService(planRepo, nil, ownershipSvc, validate, logr)
	if cfg.Planner.Enabled && cfg.Planner.APIKey != "" {
		generator, err := service.NewGeminiGenerator(context.Background(), cfg.Planner.APIKey, cfg.Planner.Model)
		if err != nil {
			logr.Sugar().Fatalw("failed to init plan generator", "error", err)
		}
		defer generator.Close()
		plannerSvc := service.NewPlannerService(generator, service.PlannerConfig{
			Model:          cfg.Planner.Model,
			PromptTemplate: cfg.Planner.PromptTemplate,
			RequestTimeout: cfg.Planner.RequestTimeout,
		}, logr)
		planSvc = service.NewStudyPlanService(planRepo, plannerSvc, ownershipSvc, validate, logr)
	}

	sessionSvc := service.NewStudySessionService(sessionRepo, planRepo, ownershipSvc, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, metricsSvc, service.DashboardConfig{
		CacheTTL: cfg.Dashboard.CacheTTL,
	}, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	termHandler := handler.NewTermHandler(termSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	planHandler := handler.NewStudyPlanHandler(planSvc)
	sessionHandler := handler.NewStudySessionHandler(sessionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.POST("/auth/change-password", authHandler.ChangePassword)
		protected.GET("/auth/me", authHandler.Me)

		terms := protected.Group("/terms")
		{
			terms.GET("", termHandler.List)
			terms.POST("", termHandler.Create)
			terms.GET("/:id", termHandler.Get)
			terms.PATCH("/:id", termHandler.Update)
			terms.DELETE("/:id", termHandler.Delete)
		}

		courses := protected.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.GET("/:id", courseHandler.Get)
			courses.PATCH("/:id", courseHandler.Update)
			courses.DELETE("/:id", courseHandler.Delete)
		}

		assignments := protected.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.List)
			assignments.POST("", assignmentHandler.Create)
			assignments.GET("/:id", assignmentHandler.Get)
			assignments.PATCH("/:id", assignmentHandler.Update)
			assignments.DELETE("/:id", assignmentHandler.Delete)
		}

		plans := protected.Group("/plans")
		{
			plans.GET("", planHandler.List)
			plans.POST("", planHandler.Create)
			plans.POST("/generate", planHandler.Generate)
			plans.GET("/:id", planHandler.Get)
			plans.PATCH("/:id", planHandler.Update)
			plans.DELETE("/:id", planHandler.Delete)
			plans.POST("/:id/topics", planHandler.AddTopic)
		}

		topics := protected.Group("/topics")
		{
			topics.PATCH("/:topicId", planHandler.UpdateTopic)
			topics.DELETE("/:topicId", planHandler.DeleteTopic)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("", sessionHandler.List)
			sessions.POST("", sessionHandler.Start)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.PATCH("/:id", sessionHandler.Update)
			sessions.DELETE("/:id", sessionHandler.Delete)
			sessions.POST("/:id/pause", sessionHandler.Pause)
			sessions.POST("/:id/unpause", sessionHandler.Unpause)
			sessions.POST("/:id/end", sessionHandler.End)
		}

		if cfg.Dashboard.Enabled {
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("", dashboardHandler.Overview)
				dashboard.GET("/export", dashboardHandler.Export)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
