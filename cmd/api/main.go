package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/academy-api/api/swagger"
	"github.com/campuskit/academy-api/internal/audit"
	"github.com/campuskit/academy-api/internal/handler"
	"github.com/campuskit/academy-api/internal/middleware"
	"github.com/campuskit/academy-api/internal/models"
	"github.com/campuskit/academy-api/internal/repository"
	"github.com/campuskit/academy-api/internal/service"
	"github.com/campuskit/academy-api/internal/tenant"
	"github.com/campuskit/academy-api/pkg/cache"
	"github.com/campuskit/academy-api/pkg/config"
	"github.com/campuskit/academy-api/pkg/database"
	"github.com/campuskit/academy-api/pkg/logger"
	corsmiddleware "github.com/campuskit/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/academy-api/pkg/middleware/requestid"
)

// @title Academy API
// @version 1.0.0
// @description Multi-tenant school administration API
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	companyRepo := repository.NewCompanyRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	bookRepo := repository.NewBookRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	metricsSvc := service.NewMetricsService()

	scopes := tenant.NewResolver(companyRepo, redisClient, cfg.Tenant.ScopeCacheTTL, logr)
	scopes.SetMetrics(metricsSvc)

	auditor := audit.NewRecorder(auditLogRepo, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	companySvc := service.NewCompanyService(companyRepo, scopes, auditor, validate, logr)
	siteSvc := service.NewSiteService(siteRepo, scopes, auditor, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, scopes, auditor, validate, logr)
	bookSvc := service.NewBookService(bookRepo, scopes, auditor, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, scopes, auditor, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, scopes, auditor, validate, logr)
	exportSvc := service.NewExportService(studentRepo, teacherRepo, scopes, logr, nil, nil)
	auditLogSvc := service.NewAuditLogService(auditLogRepo, scopes, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	companyHandler := handler.NewCompanyHandler(companySvc)
	siteHandler := handler.NewSiteHandler(siteSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	bookHandler := handler.NewBookHandler(bookSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	auditLogHandler := handler.NewAuditLogHandler(auditLogSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Principal(authSvc))

	api.POST("/auth/login", authHandler.Login)

	readers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleSiteAdmin)
	writers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	registerCRUD(api, "/companies", readers, writers, companyHandler.List, companyHandler.Get, companyHandler.Create, companyHandler.Update, companyHandler.Delete)
	registerCRUD(api, "/sites", readers, writers, siteHandler.List, siteHandler.Get, siteHandler.Create, siteHandler.Update, siteHandler.Delete)
	registerCRUD(api, "/grades", readers, writers, gradeHandler.List, gradeHandler.Get, gradeHandler.Create, gradeHandler.Update, gradeHandler.Delete)
	registerCRUD(api, "/books", readers, writers, bookHandler.List, bookHandler.Get, bookHandler.Create, bookHandler.Update, bookHandler.Delete)
	registerCRUD(api, "/teachers", readers, writers, teacherHandler.List, teacherHandler.Get, teacherHandler.Create, teacherHandler.Update, teacherHandler.Delete)
	registerCRUD(api, "/students", readers, writers, studentHandler.List, studentHandler.Get, studentHandler.Create, studentHandler.Update, studentHandler.Delete)

	api.GET("/audit-logs", writers, auditLogHandler.List)

	if cfg.Export.Enabled {
		api.GET("/exports/students", readers, exportHandler.Students)
		api.GET("/exports/teachers", readers, exportHandler.Teachers)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerCRUD(g *gin.RouterGroup, path string, readers, writers gin.HandlerFunc, list, get, create, update, del gin.HandlerFunc) {
	g.GET(path, readers, list)
	g.GET(path+"/:id", readers, get)
	g.POST(path, writers, create)
	g.PUT(path+"/:id", writers, update)
	g.DELETE(path+"/:id", writers, del)
}
