package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"sampletrack/internal/config"
	"sampletrack/internal/report"
	"sampletrack/internal/store"
)

// Server exposes run history and on-demand pipeline execution over HTTP.
type Server struct {
	router  *gin.Engine
	store   *store.Store
	service *report.Service
	cfg     *config.AppConfig
}

// NewServer builds the HTTP layer around an existing store and pipeline.
func NewServer(cfg *config.AppConfig, st *store.Store, svc *report.Service) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:  gin.Default(),
		store:   st,
		service: svc,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/status", s.GetStatus)
		api.POST("/runs", s.TriggerRun)
		api.GET("/runs", s.ListRuns)
		api.GET("/runs/:id", s.GetRun)
		api.GET("/runs/:id/warnings", s.ListWarnings)
		api.GET("/runs/:id/outputs", s.ListOutputs)
		api.GET("/runs/:id/outputs/download", s.DownloadOutput)
	}
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%d", s.cfg.Server.Port))
}

// Close releases the underlying store.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
