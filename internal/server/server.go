// Package server provides the HTTP server for gpuinfo.
// It exposes the GPU inventory and backend list as JSON over gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shepherd-project/gpuinfo/internal/config"
	"github.com/shepherd-project/gpuinfo/internal/gpu"
	"github.com/shepherd-project/gpuinfo/internal/logger"
	"github.com/shepherd-project/gpuinfo/internal/report"
	"github.com/shepherd-project/gpuinfo/internal/version"
)

// Detector is the part of *gpu.Detector the server needs.
type Detector interface {
	report.Source
	Backends() []string
	AvailableBackends() []string
}

// Server represents the HTTP server
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     config.ServerConfig
	detector   Detector
	backend    string

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewServer creates a new HTTP server. defaultBackend is used when a request
// does not name one.
func NewServer(cfg config.ServerConfig, detector Detector, defaultBackend string) *Server {
	if defaultBackend == "" {
		defaultBackend = gpu.BackendAuto
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config:   cfg,
		detector: detector,
		backend:  defaultBackend,
		engine:   gin.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures server middleware
func (s *Server) setupMiddleware() {
	s.engine.Use(
		gin.Recovery(),
		s.loggerMiddleware(),
	)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/info", s.handleServerInfo)
		api.GET("/backends", s.handleListBackends)
		api.GET("/gpus", s.handleListGPUs)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already started")
	}

	addr := s.config.Address()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
	}

	srv := s.httpServer
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		logger.Infof("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server error: %v", err)
		}
		logger.Infof("HTTP server stopped")
	}()

	return nil
}

// Shutdown stops the HTTP server gracefully, closing it outright if ctx
// expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return fmt.Errorf("server not started")
	}

	logger.Infof("Shutting down HTTP server...")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
		_ = srv.Close()
		return err
	}

	s.wg.Wait()
	return nil
}

// GetEngine returns the Gin engine (for testing)
func (s *Server) GetEngine() *gin.Engine {
	return s.engine
}

// loggerMiddleware logs requests
func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logFields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": latency.String(),
		}

		if query != "" {
			logFields["query"] = query
		}

		if status >= 500 {
			logger.WithFields(logFields).Errorf("request failed")
		} else if status >= 400 {
			logger.WithFields(logFields).Warnf("client error")
		} else {
			logger.WithFields(logFields).Debugf("request handled")
		}
	}
}

func (s *Server) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    version.Name,
		"version": version.GetVersionInfo(),
		"status":  "running",
		"backend": s.backend,
	})
}

func (s *Server) handleListBackends(c *gin.Context) {
	available := s.detector.AvailableBackends()
	if available == nil {
		available = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"backends":  s.detector.Backends(),
		"available": available,
	})
}

// handleListGPUs enumerates on every request; results are never cached.
func (s *Server) handleListGPUs(c *gin.Context) {
	backend := c.DefaultQuery("backend", s.backend)

	r, err := report.Collect(c.Request.Context(), s.detector, backend)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) writeError(c *gin.Context, err error) {
	var failed *gpu.OperationFailedError
	switch {
	case gpu.IsNotSupported(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":         err.Error(),
			"not_supported": true,
		})
	case errors.Is(err, gpu.ErrUnknownBackend):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    err.Error(),
			"backends": s.detector.Backends(),
		})
	case errors.As(err, &failed):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     err.Error(),
			"operation": failed.Op,
			"detail":    failed.Detail,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
	}
}
