package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"records-portal-api/config"
	"records-portal-api/controllers"
	"records-portal-api/middleware"
	"records-portal-api/models"
	"records-portal-api/routes"
	"records-portal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logger, logFile := config.InitLogging(cfg)
	defer logger.Sync()
	if logFile != nil {
		defer logFile.Close()
	}
	cfg.LogSummary(logger)

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			logger.Fatal("JWT_SECRET must be set in production")
		}
		logger.Warn("JWT_SECRET is empty; tokens are signed with an empty key")
	}

	if err := config.InitDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(config.DB); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	config.ConfigureMailer(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := services.NewAttachmentStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialise attachment storage", zap.Error(err))
	}
	notifier := services.NewHandlerNotifier(config.DB, nil)
	controllers.ConfigureAuth(cfg.TokenTTL)
	controllers.ConfigureRMS(services.NewRMSService(config.DB), store, notifier)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	requestMiddleware := middleware.NewRequestMiddleware(logger.With(zap.String("component", "http")))
	router := gin.New()
	router.Use(requestMiddleware.ProcessRequest())
	router.Use(requestMiddleware.RecoverPanic())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.MaxMultipartMemory = services.MaxAttachmentSize

	routes.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("gin_mode", cfg.GinMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	notifier.Wait()
	logger.Info("Server stopped")
}
