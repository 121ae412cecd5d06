package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	academyapp "github.com/academy/backend/internal/application/academy"
	attendanceapp "github.com/academy/backend/internal/application/attendance"
	billingapp "github.com/academy/backend/internal/application/billing"
	"github.com/academy/backend/internal/infrastructure/cache"
	"github.com/academy/backend/internal/infrastructure/config"
	"github.com/academy/backend/internal/infrastructure/logger"
	"github.com/academy/backend/internal/infrastructure/persistence"
	"github.com/academy/backend/internal/infrastructure/scheduler"
	"github.com/academy/backend/internal/interfaces/http/handler"
	"github.com/academy/backend/internal/interfaces/http/middleware"
	"github.com/academy/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Academy Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Month view cache: Redis when enabled, otherwise a no-op store
	// that always misses and lets reads rebuild from the database.
	var views cache.MonthViewStore
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisMonthViewStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.ViewTTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		views = store
		log.Info("Redis month view cache enabled", zap.Duration("ttl", cfg.Redis.ViewTTL))
	} else {
		views = cache.NewNoopMonthViewStore()
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	lectureRepo := persistence.NewGormLectureRepository(db.DB)
	instructorRepo := persistence.NewGormInstructorRepository(db.DB)
	rosterLedger := persistence.NewGormRosterLedger(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Initialize application services
	recalc := academyapp.NewFeeRecalculator(studentRepo, lectureRepo, rosterLedger)
	tenantService := academyapp.NewTenantService(tenantRepo)
	studentService := academyapp.NewStudentService(db, studentRepo, rosterLedger, attendanceRepo, paymentRepo, recalc)
	lectureService := academyapp.NewLectureService(db, lectureRepo, rosterLedger, attendanceRepo, recalc)
	instructorService := academyapp.NewInstructorService(db, instructorRepo, lectureRepo, rosterLedger)
	rosterService := academyapp.NewRosterService(db, studentRepo, lectureRepo, instructorRepo, rosterLedger, recalc)
	attendanceService := attendanceapp.NewService(db, attendanceRepo, studentRepo, lectureRepo, views, log)
	resetService := attendanceapp.NewResetService(db, attendanceRepo, views, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, studentRepo)

	// Daily attendance reset scheduler
	location, err := cfg.Scheduler.Location()
	if err != nil {
		log.Fatal("Invalid scheduler timezone", zap.Error(err))
	}
	resetScheduler := scheduler.NewAttendanceResetScheduler(scheduler.Config{
		Enabled:  cfg.Scheduler.Enabled,
		Hour:     cfg.Scheduler.Hour,
		Minute:   cfg.Scheduler.Minute,
		Location: location,
	}, resetService, log)
	if cfg.Scheduler.Enabled {
		if err := resetScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start attendance reset scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := resetScheduler.Stop(ctx); err != nil {
				log.Error("Error stopping attendance reset scheduler", zap.Error(err))
			}
		}()
		log.Info("Attendance reset scheduler started",
			zap.Int("hour", cfg.Scheduler.Hour),
			zap.Int("minute", cfg.Scheduler.Minute),
			zap.String("timezone", cfg.Scheduler.Timezone),
		)
	}

	// Initialize HTTP handlers
	tenantHandler := handler.NewTenantHandler(tenantService)
	studentHandler := handler.NewStudentHandler(studentService, rosterService)
	lectureHandler := handler.NewLectureHandler(lectureService, rosterService)
	instructorHandler := handler.NewInstructorHandler(instructorService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, resetScheduler)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Auth(cfg.JWT.Secret))

	// Academy domain (students, lectures, instructors)
	academyRoutes := router.NewDomainGroup("academy", "/academy")
	academyRoutes.POST("/students", studentHandler.Create)
	academyRoutes.GET("/students", studentHandler.List)
	academyRoutes.GET("/students/:id", studentHandler.Get)
	academyRoutes.PATCH("/students/:id", studentHandler.Update)
	academyRoutes.DELETE("/students/:id", studentHandler.Delete)
	academyRoutes.POST("/students/:id/deactivate", studentHandler.Deactivate)
	academyRoutes.POST("/students/:id/reactivate", studentHandler.Reactivate)
	academyRoutes.PUT("/students/:id/lectures", studentHandler.SetLectures)
	academyRoutes.GET("/students/:id/payments", paymentHandler.StudentLedger)

	academyRoutes.POST("/lectures", lectureHandler.Create)
	academyRoutes.GET("/lectures", lectureHandler.List)
	academyRoutes.GET("/lectures/:id", lectureHandler.Get)
	academyRoutes.PATCH("/lectures/:id", lectureHandler.Update)
	academyRoutes.DELETE("/lectures/:id", lectureHandler.Delete)
	academyRoutes.POST("/lectures/:id/deactivate", lectureHandler.Deactivate)
	academyRoutes.PUT("/lectures/:id/students", lectureHandler.SetRoster)
	academyRoutes.PUT("/lectures/:id/instructors", lectureHandler.SetInstructors)
	academyRoutes.POST("/lectures/:id/students/:studentId", lectureHandler.Enroll)
	academyRoutes.DELETE("/lectures/:id/students/:studentId", lectureHandler.Unenroll)

	academyRoutes.POST("/instructors", instructorHandler.Create)
	academyRoutes.GET("/instructors", instructorHandler.List)
	academyRoutes.GET("/instructors/:id", instructorHandler.Get)
	academyRoutes.PATCH("/instructors/:id", instructorHandler.Update)
	academyRoutes.POST("/instructors/:id/deactivate", instructorHandler.Deactivate)

	// Attendance domain
	attendanceRoutes := router.NewDomainGroup("attendance", "/attendance")
	attendanceRoutes.POST("", attendanceHandler.Record)
	attendanceRoutes.GET("", attendanceHandler.ListForDate)
	attendanceRoutes.GET("/students/:id", attendanceHandler.StudentHistory)
	attendanceRoutes.GET("/stats", attendanceHandler.Stats)
	attendanceRoutes.GET("/monthly", attendanceHandler.MonthlyView)

	// Billing domain
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/payments", paymentHandler.Record)

	// Tenant management (admin only)
	tenantRoutes := router.NewDomainGroup("tenants", "/tenants")
	tenantRoutes.Use(middleware.RequireRole("admin"))
	tenantRoutes.POST("", tenantHandler.Register)
	tenantRoutes.GET("", tenantHandler.List)
	tenantRoutes.GET("/:id", tenantHandler.Get)

	// Admin operations (manual reset trigger, scheduler status)
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.POST("/attendance/reset", attendanceHandler.TriggerReset)
	adminRoutes.GET("/attendance/reset", attendanceHandler.ResetStatus)

	r.Register(academyRoutes).
		Register(attendanceRoutes).
		Register(billingRoutes).
		Register(tenantRoutes).
		Register(adminRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// gormLogLevel maps the application log level onto GORM's logger
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Silent
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
