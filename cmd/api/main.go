package main

import (
	"fmt"
	"log"
	"os"

	"chargemodel/internal/api/handlers"
	"chargemodel/internal/api/middleware"
	"chargemodel/internal/config"
	"chargemodel/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := loadConfig()

	// Environment overrides for container deployments.
	if port := os.Getenv("API_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		cfg.Server.StaticDir = staticDir
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.Server.DBPath = dbPath
	}

	db, err := store.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	assumptions := cfg.Assumptions.ToModelAssumptions()
	irr := cfg.IRR.ToIRRParams()
	projects := store.NewProjectStore(db)
	documents := store.NewDocumentStore(db)

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	calculateHandler := handlers.NewCalculateHandler(assumptions, irr)
	projectsHandler := handlers.NewProjectsHandler(projects, assumptions, irr)
	documentsHandler := handlers.NewDocumentsHandler(projects, documents)
	sensitivityHandler := handlers.NewSensitivityHandler(assumptions, irr)
	assumptionsHandler := handlers.NewAssumptionsHandler(assumptions)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/calculate", calculateHandler.Calculate)

		api.POST("/projects", projectsHandler.Create)
		api.GET("/projects", projectsHandler.List)
		api.GET("/projects/:id", projectsHandler.Get)
		api.PUT("/projects/:id", projectsHandler.Update)
		api.DELETE("/projects/:id", projectsHandler.Delete)
		api.GET("/projects/:id/valuation", projectsHandler.Valuation)

		api.POST("/projects/:id/documents", documentsHandler.Upload)
		api.GET("/projects/:id/documents", documentsHandler.List)

		api.POST("/sensitivity", sensitivityHandler.Run)
		api.GET("/assumptions", assumptionsHandler.Get)
	}

	serveStatic(router, cfg.Server.StaticDir)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig() *config.Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("No config file at %s, using defaults", path)
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", path, err)
	}
	log.Printf("Loaded config from %s", path)
	return cfg
}

// serveStatic serves the dashboard SPA if a build is present.
func serveStatic(router *gin.Engine, staticDir string) {
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); err != nil {
		log.Printf("Static directory %s not found, skipping static file serving", staticDir)
		return
	}

	router.Static("/assets", staticDir+"/assets")
	router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")

	// Serve index.html for all non-API routes (SPA routing).
	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if len(path) >= 4 && path[:4] == "/api" {
			c.JSON(404, gin.H{"error": "Not found"})
		} else {
			c.File(staticDir + "/index.html")
		}
	})
	log.Printf("Serving static files from %s", staticDir)
}
