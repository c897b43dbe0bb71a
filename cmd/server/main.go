package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"brainexa/backend/internal/ai"
	"brainexa/backend/internal/api"
	"brainexa/backend/internal/models"
	"brainexa/backend/internal/service"
	"brainexa/backend/internal/store"
	"brainexa/backend/pkg/config"
	"brainexa/backend/pkg/jwt"
	"brainexa/backend/pkg/logger"
	"brainexa/backend/pkg/router"
)

func main() {
	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "env", cfg.Server.Env)

	// User accounts live in Postgres
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// Conversation history lives in MongoDB
	mongoDB, err := config.NewMongo(context.Background())
	if err != nil {
		log.LogError(err, "Failed to initialize mongo")
		os.Exit(1)
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	conversations := store.NewConversationStore(mongoDB)
	gateway := ai.NewGateway(ai.Credentials{
		NvidiaKey: cfg.NvidiaKey(),
		GroqKey:   cfg.Providers.GroqKey,
	}, log)

	userService := service.NewUserService(db, jwtService)
	chatService := service.NewChatService(conversations, gateway, log)
	adminService := service.NewAdminService(userService, conversations)

	authHandler := api.NewAuthHandler(userService, log)
	chatHandler := api.NewChatHandler(chatService, log)
	adminHandler := api.NewAdminHandler(adminService, log)

	r := router.New(cfg, log, jwtService)
	r.SetupRoutes(authHandler, chatHandler, adminHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
		os.Exit(1)
	}

	log.Info("Server exited")
}
