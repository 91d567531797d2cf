package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"liftcast/internal"
	"liftcast/internal/config"
	"liftcast/internal/container"
	"liftcast/ui"
)

//go:embed ui/templates/*.html ui/static/*
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(ctx, appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer appContainer.Close()

	// Build the table up front so a malformed log fails at startup,
	// not on the first request.
	if _, err := appContainer.Model.Model(ctx); err != nil {
		log.Fatalf("Failed to build typicality model: %v", err)
	}

	go appContainer.Model.Run(ctx, appConfig.Model.RefreshInterval)

	server, err := ui.NewServer(appContainer.Model, appContainer.API, embeddedFiles, logger)
	if err != nil {
		log.Fatalf("Failed to initialize UI server: %v", err)
	}

	httpServer := server.HTTPServer(":" + appConfig.Server.Port)
	go func() {
		logger.Info("listening on http://localhost:%s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
