package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habicapital/docs-service/internal/api"
	"github.com/habicapital/docs-service/internal/cache"
	"github.com/habicapital/docs-service/internal/config"
	"github.com/habicapital/docs-service/internal/database"
	"github.com/habicapital/docs-service/internal/drive"
	"github.com/habicapital/docs-service/internal/relay"
	"github.com/habicapital/docs-service/internal/services"
	"github.com/habicapital/docs-service/internal/sheets"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Docs Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Asegurar el esquema del espejo
	if err := db.EnsureSchema(); err != nil {
		logger.Fatalf("Error ensuring database schema: %v", err)
	}

	// Conectar a Redis (opcional, el caché funciona sin él)
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Elegir la implementación del lado Drive: API de Google si hay
	// credenciales, Apps Script heredado si no.
	scriptClient := drive.NewScriptClient(cfg.Drive.AppScriptURL, cfg.Drive.Timeout, logger)
	directory, err := buildDirectory(cfg, scriptClient, logger)
	if err != nil {
		logger.Fatalf("Error initializing Drive directory: %v", err)
	}

	// Inicializar servicios
	memCache := cache.New(cfg.Cache.TTL)
	relayClient := relay.NewClient(cfg.Relay.WebhookURL, cfg.Relay.Timeout, logger)

	queryService := services.NewQueryService(db, redis, memCache, cfg.Cache.TTL, logger)
	syncService := services.NewSyncService(db, directory, logger)
	uploadService := services.NewUploadService(directory, relayClient, scriptClient, syncService, queryService, cfg.Upload, logger)

	// Inicializar API
	apiHandler := api.NewAPI(queryService, syncService, uploadService, logger)

	// Configurar router
	router := setupRouter(apiHandler, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// buildDirectory arma la vista del lado Drive según las credenciales
// disponibles
func buildDirectory(cfg *config.Config, scriptClient *drive.ScriptClient, logger *logrus.Logger) (drive.Directory, error) {
	if !cfg.HasGoogleCredentials() {
		if cfg.Drive.AppScriptURL == "" {
			return nil, fmt.Errorf("neither Google credentials nor Apps Script URL configured")
		}
		logger.Info("Using legacy Apps Script as Drive backend")
		return scriptClient, nil
	}

	ctx := context.Background()
	provider, err := drive.NewGoogleDriveProvider(ctx, cfg.Drive.CredentialsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing Drive provider: %w", err)
	}
	registry, err := sheets.NewRegistry(ctx, cfg.Drive.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing Sheets registry: %w", err)
	}

	logger.Info("Using native Google Drive API as backend")
	return drive.NewService(provider, registry, cfg.Drive.RootFolderID, logger), nil
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "docs-service",
			"version":   "1.0.0",
		})
	})

	// API v1
	v1 := router.Group("/v1")
	{
		// Clientes
		v1.POST("/clients/search", apiHandler.SearchClient)
		v1.GET("/clients/dashboard", apiHandler.GetDashboard)
		v1.POST("/clients/auto-sync", apiHandler.AutoSyncClient)
		v1.POST("/clients/refresh", apiHandler.RefreshCache)

		// Sincronización
		v1.POST("/sync", apiHandler.Sync)
		v1.GET("/sync", apiHandler.GetSyncStatus)

		// Documentos y carpetas
		v1.POST("/documents/upload", apiHandler.UploadDocument)
		v1.POST("/folders", apiHandler.CreateFolder)
	}

	return router
}
