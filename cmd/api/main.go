package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"io.revoapps.revofit/internal/badge"
	"io.revoapps.revofit/internal/chat"
	"io.revoapps.revofit/internal/db"
	"io.revoapps.revofit/internal/feed"
	firebaseutil "io.revoapps.revofit/internal/firebase"
	"io.revoapps.revofit/internal/handlers"
	"io.revoapps.revofit/internal/middleware"
	"io.revoapps.revofit/internal/push"
	"io.revoapps.revofit/internal/scheduler"
	"io.revoapps.revofit/internal/store"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// Initialize Firebase
	firebaseApp, err := firebaseutil.InitFirebase()
	if err != nil {
		logger.Fatalf("Failed to initialize Firebase: %v", err)
	}

	firestoreClient, err := firebaseutil.GetFirestoreClient(firebaseApp)
	if err != nil {
		logger.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer firestoreClient.Close()

	// FCM is optional; Expo-token devices still get pushes without it
	fcmClient, err := firebaseutil.GetMessagingClient(firebaseApp)
	if err != nil {
		logger.Warnf("FCM unavailable: %v", err)
	}

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		logger.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		logger.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisClient.Close()

	// Push pipeline: token registry -> Expo/FCM senders -> fan-out service
	tokenRepo := push.NewPostgresTokenRepository(postgresDB)
	registry := push.NewRegistry(tokenRepo, redisClient, logger)
	expoClient := push.NewExpoClient(os.Getenv("EXPO_PUSH_URL"), logger)
	var fcmSender push.FCMSender
	if fcmClient != nil {
		fcmSender = push.NewFCMClient(fcmClient)
	}
	pushService := push.NewService(registry, expoClient, fcmSender, logger)

	// Notification store with the immediate-push side effect
	notificationStore := store.NewFirestoreStore(firestoreClient, pushService, logger)

	// Badge mirror and per-user feed sessions
	badgeSync := badge.NewSynchronizer(pushService, logger)
	feeds := feed.NewManager(notificationStore, badgeSync, redisClient, logger)
	defer feeds.CloseAll()

	// Reminder scheduling: cron for dailies, asynq for one-off reminders
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr(),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB(),
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	cronManager := cron.New(cron.WithLocation(time.UTC))
	reminderScheduler := scheduler.NewScheduler(cronManager, asynqClient, notificationStore, logger)
	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 5})
	go func() {
		if err := asynqServer.Run(scheduler.NewWorkerMux(notificationStore, logger)); err != nil {
			logger.Fatalf("Failed to start reminder worker: %v", err)
		}
	}()
	defer asynqServer.Shutdown()

	// Stream Chat is optional
	var chatService *chat.Service
	if key := os.Getenv("STREAM_API_KEY"); key != "" {
		chatService, err = chat.NewService(key, os.Getenv("STREAM_API_SECRET"))
		if err != nil {
			logger.Warnf("Stream Chat unavailable: %v", err)
		}
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Add CORS middleware for mobile app
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	notificationsHandler := handlers.NewNotificationsHandler(notificationStore, registry, feeds, reminderScheduler, logger)
	chatHandler := handlers.NewChatHandler(chatService, notificationStore, logger)

	// Define routes
	v1 := router.Group("/api/v1")
	{
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthMiddleware(firebaseApp, redisClient))
		{
			notifications.POST("/register-device", notificationsHandler.RegisterDevice)
			notifications.POST("/unregister-device", notificationsHandler.UnregisterDevice)
			notifications.POST("/create", notificationsHandler.CreateNotification)
			notifications.POST("/list", notificationsHandler.ListNotifications)
			notifications.POST("/mark-read", notificationsHandler.MarkRead)
			notifications.POST("/delete", notificationsHandler.DeleteNotification)
			notifications.POST("/clear-all", notificationsHandler.ClearNotifications)
			notifications.POST("/receipt", notificationsHandler.PushReceipt)
			notifications.GET("/feed", notificationsHandler.StreamFeed)
			notifications.GET("/unread-count", notificationsHandler.GetUnreadCount)
			notifications.POST("/schedule-daily-reminders", notificationsHandler.ScheduleDailyReminders)
			notifications.POST("/schedule-workout-reminder", notificationsHandler.ScheduleWorkoutReminder)
		}

		chatGroup := v1.Group("/chat")
		chatGroup.Use(middleware.AuthMiddleware(firebaseApp, redisClient))
		{
			chatGroup.POST("/get-chat-token", chatHandler.GetChatToken)
		}

		// Stream Chat authenticates webhooks with its own signature header
		v1.POST("/webhooks/stream-chat", chatHandler.HandleStreamChatWebhook)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port(),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s...", port())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give a 5 second timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "9091"
}

func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	p := os.Getenv("REDIS_PORT")
	if p == "" {
		p = "6379"
	}
	return fmt.Sprintf("%s:%s", host, p)
}

func redisDB() int {
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
