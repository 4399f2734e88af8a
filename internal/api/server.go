// Package api exposes the admin HTTP surface of the configuration
// service: snapshot and validation endpoints, exchange mutation, remote
// save, and a WebSocket feed of configuration events.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adaptive-trading-framework/internal/events"
	"adaptive-trading-framework/internal/manager"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins string
	ProductionMode bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the admin HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	manager    *manager.Manager
	hub        *WSHub
	config     ServerConfig
	logger     zerolog.Logger
}

// NewServer creates the API server and wires the event bus into the
// WebSocket hub.
func NewServer(cfg ServerConfig, mgr *manager.Manager, bus *events.Bus, logger zerolog.Logger) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	router.Use(cors.New(corsConfig))

	hub := NewWSHub(logger)
	if bus != nil {
		bus.SubscribeAll(hub.BroadcastEvent)
	}

	s := &Server{
		router:  router,
		manager: mgr,
		hub:     hub,
		config:  cfg,
		logger:  logger.With().Str("component", "api").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)
	s.router.GET("/api/config", s.handleGetConfig)
	s.router.GET("/api/config/validate", s.handleValidate)
	s.router.GET("/api/config/exchanges", s.handleListExchanges)
	s.router.POST("/api/config/exchanges", s.handleAddExchange)
	s.router.POST("/api/config/save", s.handleSave)
	s.router.GET("/ws", s.handleWebSocket)
}

// requestIDMiddleware tags every request with a unique ID for log
// correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// Start runs the WebSocket hub and serves HTTP until Shutdown.
func (s *Server) Start() error {
	go s.hub.Run()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Admin API listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
