package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/reallocation"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
	"github.com/finshield/finshield-backend/internal/usecase/surplus"
)

// Server is the HTTP boundary. It owns no business rules: it parses,
// delegates to the usecase services and translates their results and errors
// into JSON.
type Server struct {
	balance      *balance.Service
	shield       *shield.Service
	reallocation *reallocation.Service
	surplus      *surplus.Service

	logger   *zap.Logger
	apiToken string
	engine   *gin.Engine
	srv      *http.Server
}

// Config holds the HTTP server settings.
type Config struct {
	Addr     string
	APIToken string
}

// NewServer wires the routes and middleware.
func NewServer(
	cfg Config,
	balanceService *balance.Service,
	shieldService *shield.Service,
	reallocationService *reallocation.Service,
	surplusService *surplus.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		balance:      balanceService,
		shield:       shieldService,
		reallocation: reallocationService,
		surplus:      surplusService,
		logger:       logger,
		apiToken:     cfg.APIToken,
		engine:       engine,
	}

	engine.Use(s.requestLogger())
	engine.Use(corsMiddleware())

	engine.GET("/health", s.handleHealth)

	api := engine.Group("/api", s.authMiddleware())
	{
		users := api.Group("/users/:userID")
		users.GET("/balance", s.handleGetBalance)
		users.GET("/shield", s.handleGetShield)
		users.GET("/shield/access/:feature", s.handleCheckFeatureAccess)
		users.POST("/contributions", s.handleContribute)
		users.POST("/reallocations/emergency", s.handleReallocateEmergency)
		users.POST("/reallocations/surplus", s.handleReallocateSurplus)
		users.POST("/emergency-funds", s.handleCreateEmergencyFund)
		users.GET("/emergency-funds/:fundID/deletable", s.handleDeletionCheck)
		users.GET("/surplus/recommendations", s.handleSurplusRecommendations)
	}

	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts serving and blocks until the listener fails or is shut down.
func (s *Server) Run() error {
	s.logger.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
