package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/bnema/orca/internal/adapters/fleetauth"
	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/domain"
	"github.com/bnema/orca/internal/logging"
	"github.com/bnema/orca/internal/ports"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 64 << 20

// Sessions is the session manager the API drives.
type Sessions interface {
	CreateSession(ctx context.Context) (domain.Session, error)
	ListSessions() []domain.Session
	Execute(ctx context.Context, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error)
	ExecuteLocal(ctx context.Context, id domain.SessionID, code string, timeout time.Duration) (domain.ExecutionResult, error)
	DeleteSession(ctx context.Context, id domain.SessionID) error
	Self() domain.MachineRecord
}

// Executor runs tenant code in an isolated host.
type Executor interface {
	Execute(ctx context.Context, tenant domain.TenantID, code string, timeout time.Duration) (domain.RichExecutionResult, error)
}

type Config struct {
	// Status, when set, backs GET /status.
	Status         func(ctx context.Context) application.Status
	CORSOrigins    []string
	Signer         *fleetauth.Signer
	MaxUploadBytes int64
	Logger         *zap.Logger
}

type Server struct {
	sessions Sessions
	executor Executor
	files    ports.WorkspaceStore
	status   func(ctx context.Context) application.Status
	signer   *fleetauth.Signer
	maxBytes int64
	logger   *zap.Logger
}

// NewRouter mounts the public API. executor and files may be nil, in which
// case their routes are not served.
func NewRouter(cfg Config, sessions Sessions, executor Executor, files ports.WorkspaceStore) *gin.Engine {
	s := &Server{
		sessions: sessions,
		executor: executor,
		files:    files,
		status:   cfg.Status,
		signer:   cfg.Signer,
		maxBytes: cfg.MaxUploadBytes,
		logger:   logging.OrNop(cfg.Logger).Named("http"),
	}
	if s.maxBytes <= 0 {
		s.maxBytes = defaultMaxUploadBytes
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}
	router.Use(requestLogger(s.logger))

	router.GET("/health", s.health)
	if s.status != nil {
		router.GET("/status", s.machineStatus)
	}

	sessionRoutes := router.Group("/sessions")
	{
		sessionRoutes.POST("", s.createSession)
		sessionRoutes.GET("", s.listSessions)
		sessionRoutes.POST("/execute", s.executeSession)
		sessionRoutes.DELETE("/:id", s.deleteSession)
	}

	if executor != nil {
		router.POST("/execute", s.executeTenant)
	}

	if files != nil {
		fileRoutes := router.Group("/files")
		{
			fileRoutes.POST("/:tenant", s.uploadFiles)
			fileRoutes.GET("/:tenant", s.listFiles)
			fileRoutes.DELETE("/:tenant/:name", s.deleteFile)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if origin := c.GetHeader(fleetauth.HeaderForwarded); origin != "" {
			fields = append(fields, zap.String("forwarded_from", origin))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Debug("request", fields...)
	}
}

func (s *Server) health(c *gin.Context) {
	self := s.sessions.Self()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"machine_id": self.MachineID,
		"sessions":   len(s.sessions.ListSessions()),
	})
}
