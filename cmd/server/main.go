package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dentanet/api/internal/config"
	"github.com/dentanet/api/internal/handler"
	"github.com/dentanet/api/internal/middleware"
	"github.com/dentanet/api/internal/model"
	"github.com/dentanet/api/internal/repository"
	"github.com/dentanet/api/internal/service"
	"github.com/dentanet/api/internal/ws"
	"github.com/dentanet/api/migrations"
	"github.com/dentanet/api/pkg/auth"
	"github.com/dentanet/api/pkg/mailer"
	"github.com/dentanet/api/pkg/notification"
	"github.com/dentanet/api/pkg/storage"
)

// @title           DentaNet LMS API
// @version         1.0
// @description     Learning management API for the Faculty of Dental Sciences: OTP-verified registration, lockout-guarded login, lab bookings, exam submissions and grading.

// @contact.name   API Support
// @contact.email  support@dentanet.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("🚀 Starting DentaNet API Server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("⚠️  Migration warning: %v", err)
		log.Println("📦 Falling back to GORM AutoMigrate...")
		if err := db.AutoMigrate(
			&model.User{},
			&model.Student{},
			&model.Lecturer{},
			&model.Admin{},
			&model.UserDevice{},
			&model.OTPCode{},
			&model.LabMachine{},
			&model.LabBooking{},
			&model.Exam{},
			&model.ExamSubmission{},
			&model.AIEvaluation{},
			&model.LecturerEvaluation{},
			&model.StudyMaterial{},
			&model.Notification{},
		); err != nil {
			log.Fatalf("❌ Failed to migrate database: %v", err)
		}
	}
	log.Println("✅ Database migrated successfully")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	log.Println("✅ Connected to Redis")

	// ==================== Email (SMTP / Mailpit) ====================
	mailClient := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	log.Printf("📧 SMTP configured: %s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	examRepo := repository.NewExamRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// MinIO Storage
	minioStorage, err := storage.NewMinIO(storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		log.Printf("⚠️  MinIO not available: %v (file upload disabled)", err)
	}
	// Services must see a nil interface, not a nil *MinIOStorage, so degraded
	// mode returns a storage-unavailable error instead of panicking.
	var store storage.Storage
	if minioStorage != nil {
		store = minioStorage
		log.Println("✅ Connected to MinIO")
	}

	// Firebase push (nil-safe when credentials are absent)
	pushService, _ := notification.NewPushService(cfg.Firebase.CredentialsFile, userRepo)

	// WebSocket hub with Redis Pub/Sub fan-out
	hub := ws.NewHub(rdb)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	// Hourly OTP housekeeping. The cutoff stays one rate window behind so
	// the issuance-count fallback keeps its evidence.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-hubCtx.Done():
				return
			case <-ticker.C:
				if err := otpRepo.CleanupExpired(time.Now().Add(-cfg.Security.OTPRateWindow)); err != nil {
					log.Printf("⚠️  OTP cleanup failed: %v", err)
				}
			}
		}
	}()

	// Services
	lockoutGuard := service.NewLockoutGuard(userRepo, cfg.Security)
	otpLimiter := service.NewRedisRateLimiter(rdb, cfg.Security.OTPRateWindow, cfg.Security.OTPRateLimit)
	otpManager := service.NewOTPManager(db, otpRepo, mailClient, otpLimiter, cfg.Security)
	authService := service.NewAuthService(userRepo, lockoutGuard, jwtManager, rdb)
	registrationService := service.NewRegistrationService(userRepo, otpManager)
	resetService := service.NewPasswordResetService(userRepo, otpManager)
	userService := service.NewUserService(userRepo)
	notificationService := service.NewNotificationService(notificationRepo, hub, pushService)
	bookingService := service.NewBookingService(bookingRepo, notificationService)
	submissionService := service.NewSubmissionService(examRepo, store)
	evaluationService := service.NewEvaluationService(evaluationRepo, examRepo, notificationService)
	materialService := service.NewMaterialService(materialRepo, store)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	resetHandler := handler.NewPasswordResetHandler(resetService)
	userHandler := handler.NewUserHandler(userService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService)
	materialHandler := handler.NewMaterialHandler(materialService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	wsHandler := handler.NewWSHandler(hub, jwtManager)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "dentanet-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	student := string(model.RoleStudent)
	lecturer := string(model.RoleLecturer)
	admin := string(model.RoleAdmin)

	api := router.Group("/api/v1")
	{
		// Public routes
		api.POST("/registration/send-otp", registrationHandler.SendOTP)
		api.POST("/registration/verify-and-register", registrationHandler.VerifyAndRegister)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/password-reset/request", resetHandler.Request)
		api.POST("/password-reset/verify-otp", resetHandler.VerifyOTP)
		api.POST("/password-reset/reset", resetHandler.Reset)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager, rdb))
		{
			// Session
			protected.GET("/auth/verify", authHandler.Verify)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/devices", authHandler.RegisterDevice)

			// Users
			protected.GET("/users", middleware.RequireRoles(admin), userHandler.List)
			protected.PUT("/users/me", userHandler.UpdateProfile)
			protected.GET("/users/:id", userHandler.Get)
			protected.DELETE("/users/:id", middleware.RequireRoles(admin), userHandler.Deactivate)

			// Lab bookings
			protected.GET("/bookings/machines", bookingHandler.ListMachines)
			protected.POST("/bookings", middleware.RequireRoles(student), bookingHandler.Create)
			protected.GET("/bookings", bookingHandler.List)
			protected.PUT("/bookings/:id/status", middleware.RequireRoles(lecturer, admin), bookingHandler.Decide)
			protected.DELETE("/bookings/:id", bookingHandler.Cancel)

			// Exams and submissions
			protected.POST("/exams", middleware.RequireRoles(lecturer, admin), submissionHandler.CreateExam)
			protected.GET("/exams", submissionHandler.ListExams)
			protected.POST("/exams/:id/submissions", middleware.RequireRoles(student), submissionHandler.Submit)
			protected.GET("/submissions", submissionHandler.ListSubmissions)
			protected.GET("/submissions/:id", submissionHandler.GetSubmission)
			protected.GET("/submissions/:id/evaluations", evaluationHandler.Detail)

			// Evaluations
			protected.POST("/evaluations/ai", middleware.RequireRoles(lecturer, admin), evaluationHandler.RecordAI)
			protected.POST("/evaluations/lecturer", middleware.RequireRoles(lecturer, admin), evaluationHandler.RecordLecturer)

			// Study materials
			protected.POST("/materials", middleware.RequireRoles(lecturer, admin), materialHandler.Upload)
			protected.GET("/materials", materialHandler.List)

			// Notifications
			protected.GET("/notifications", notificationHandler.List)
			protected.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications", middleware.RequireRoles(lecturer, admin), notificationHandler.Create)
		}
	}

	// WebSocket feed (auth via query parameter)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	log.Printf("🌐 DentaNet API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("📋 API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("🔌 Notification feed: ws://0.0.0.0:%s/ws?token=<jwt>", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	hubCancel()
	log.Println("✅ Server exited gracefully")
}
