package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/coursekit/lms-api/api/swagger"
	"github.com/coursekit/lms-api/internal/handler"
	"github.com/coursekit/lms-api/internal/middleware"
	"github.com/coursekit/lms-api/internal/models"
	"github.com/coursekit/lms-api/internal/repository"
	"github.com/coursekit/lms-api/internal/service"
	"github.com/coursekit/lms-api/pkg/cache"
	"github.com/coursekit/lms-api/pkg/config"
	"github.com/coursekit/lms-api/pkg/database"
	"github.com/coursekit/lms-api/pkg/logger"
	corsmiddleware "github.com/coursekit/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coursekit/lms-api/pkg/middleware/requestid"
)

// @title CourseKit LMS Core API
// @version 1.0.0
// @description Grading, progress tracking and certificate eligibility for the CourseKit platform
// @BasePath /api/v1
// @schemes http

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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.StructureTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.StructureTTL, logr, false)
	}

	validate := validator.New()

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	weightsRepo := repository.NewGradeWeightsRepository(db)
	progressRepo := repository.NewLessonProgressRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	defaultWeights := models.GradeWeights{
		AssignmentWeight: cfg.Grading.DefaultAssignmentWeight,
		ActivityWeight:   cfg.Grading.DefaultActivityWeight,
		ExamWeight:       cfg.Grading.DefaultExamWeight,
	}

	weightsSvc := service.NewGradeWeightsService(weightsRepo, courseRepo, defaultWeights, validate, logr)
	gradeSvc := service.NewGradeService(assignmentRepo, courseRepo, weightsSvc, logr)
	progressSvc := service.NewProgressService(courseRepo, enrollmentRepo, progressRepo, cacheSvc, validate, logr)
	gradebookSvc := service.NewGradebookService(courseRepo, enrollmentRepo, assignmentRepo, weightsSvc, logr)
	certificateSvc := service.NewCertificateService(certificateRepo, courseRepo, enrollmentRepo, assignmentRepo, progressRepo, gradeSvc, metricsSvc, logr)

	gradeHandler := handler.NewGradeHandler(gradeSvc)
	weightsHandler := handler.NewGradeWeightsHandler(weightsSvc)
	progressHandler := handler.NewProgressHandler(progressSvc)
	gradebookHandler := handler.NewGradebookHandler(gradebookSvc, cfg.Exports.Enabled)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
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
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
	api.Use(middleware.JWT(cfg.JWT.Secret))

	student := api.Group("")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/courses/:id/grades", gradeHandler.MyGrades)
		student.GET("/courses/:id/grades/categories", gradeHandler.MyCategoryGrades)
		student.GET("/courses/:id/grades/details", gradeHandler.MyGradebook)
		student.GET("/courses/:id/progress", progressHandler.CourseProgress)
		student.POST("/lessons/:id/complete", progressHandler.CompleteLesson)
		student.PATCH("/lessons/:id/progress", progressHandler.UpdateProgress)
	}

	instructor := api.Group("")
	instructor.Use(middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin))
	{
		instructor.GET("/courses/:id/grade-weights", weightsHandler.Get)
		instructor.PUT("/courses/:id/grade-weights", weightsHandler.Update)
		instructor.GET("/courses/:id/gradebook", gradebookHandler.Course)
		instructor.GET("/courses/:id/gradebook/export", gradebookHandler.Export)
		instructor.GET("/courses/:id/students/:studentId/grades", gradeHandler.StudentGrades)
		if cfg.Certificates.Enabled {
			instructor.GET("/courses/:id/students/:studentId/certificate/eligibility", certificateHandler.Eligibility)
			instructor.POST("/courses/:id/students/:studentId/certificate", certificateHandler.Issue)
			instructor.POST("/courses/:id/students/:studentId/certificate/revoke", certificateHandler.Revoke)
			instructor.GET("/courses/:id/certificates/eligible-students", certificateHandler.EligibleStudents)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
