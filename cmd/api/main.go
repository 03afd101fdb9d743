package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/havenpaws/shelter-api/api/swagger"
	"github.com/havenpaws/shelter-api/internal/handler"
	"github.com/havenpaws/shelter-api/internal/middleware"
	"github.com/havenpaws/shelter-api/internal/models"
	"github.com/havenpaws/shelter-api/internal/repository"
	"github.com/havenpaws/shelter-api/internal/service"
	"github.com/havenpaws/shelter-api/pkg/cache"
	"github.com/havenpaws/shelter-api/pkg/config"
	"github.com/havenpaws/shelter-api/pkg/database"
	"github.com/havenpaws/shelter-api/pkg/logger"
	corsmiddleware "github.com/havenpaws/shelter-api/pkg/middleware/cors"
	reqidmiddleware "github.com/havenpaws/shelter-api/pkg/middleware/requestid"
	"github.com/havenpaws/shelter-api/pkg/storage"
)

// @title HavenPaws Shelter API
// @version 1.0.0
// @description Role-gated shelter management: pets, adoptions, donations and medical records
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, cfg.Dashboard.CacheTTL, true)
		}
	}

	images, err := storage.NewImageStore(cfg.Uploads.StorageDir, cfg.Uploads.PublicPrefix, cfg.Uploads.MaxFileSizeBytes)
	if err != nil {
		logr.Sugar().Fatalw("failed to init image storage", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()

	petRepo := repository.NewPetRepository(db)
	adoptionRepo := repository.NewAdoptionRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	medicalRepo := repository.NewMedicalRecordRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	petSvc := service.NewPetService(petRepo, medicalRepo, images, validate, logr, cacheSvc)
	adoptionSvc := service.NewAdoptionService(adoptionRepo, petRepo, validate, logr, cacheSvc, metricsSvc)
	donationSvc := service.NewDonationService(donationRepo, validate, logr, cacheSvc, metricsSvc)
	medicalSvc := service.NewMedicalRecordService(medicalRepo, petRepo, donationRepo, validate, logr, cacheSvc)
	dashboardSvc := service.NewDashboardService(petRepo, adoptionRepo, donationRepo, medicalRepo, cacheSvc, metricsSvc, logr)
	reportSvc := service.NewReportService(petRepo, donationRepo, adoptionRepo, medicalRepo, logr)
	userSvc := service.NewUserService(userRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	petHandler := handler.NewPetHandler(petSvc)
	adoptionHandler := handler.NewAdoptionHandler(adoptionSvc)
	donationHandler := handler.NewDonationHandler(donationSvc)
	medicalHandler := handler.NewMedicalRecordHandler(medicalSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static(cfg.Uploads.PublicPrefix, images.Dir())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
			auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.GET("/dashboard", dashboardHandler.Get)

			pets := protected.Group("/pets")
			{
				pets.GET("", petHandler.List)
				pets.GET("/:id", petHandler.Get)
				pets.GET("/:id/medical-records", medicalHandler.ListByPet)
				pets.POST("", middleware.RequireRoles(models.RoleAdmin), petHandler.Create)
				pets.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), petHandler.Update)
				pets.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), petHandler.Delete)
			}

			adoptions := protected.Group("/adoptions")
			{
				adoptions.GET("", adoptionHandler.List)
				adoptions.GET("/:id", adoptionHandler.Get)
				adoptions.POST("", adoptionHandler.Create)
				adoptions.PUT("/:id", adoptionHandler.Update)
				adoptions.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), adoptionHandler.Delete)
			}

			donations := protected.Group("/donations")
			{
				donations.GET("", donationHandler.List)
				donations.GET("/:id", donationHandler.Get)
				donations.POST("", donationHandler.Create)
				donations.PUT("/:id", donationHandler.Update)
				donations.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), donationHandler.Delete)
			}

			records := protected.Group("/medical-records")
			{
				records.GET("", medicalHandler.List)
				records.GET("/:id", medicalHandler.Get)
				records.POST("", middleware.RequireRoles(models.RoleAdmin), medicalHandler.Create)
				records.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), medicalHandler.Update)
				records.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), medicalHandler.Delete)
			}

			users := protected.Group("/users")
			users.Use(middleware.RequireRoles(models.RoleAdmin))
			{
				users.GET("", userHandler.List)
				users.GET("/:id", userHandler.Get)
				users.GET("/:id/donations", donationHandler.ListByUser)
			}

			if cfg.Reports.Enabled {
				reports := protected.Group("/reports")
				reports.Use(middleware.RequireRoles(models.RoleAdmin))
				{
					reports.GET("/:entity", reportHandler.Generate)
				}
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
