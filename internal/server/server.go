package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dk400/dk400/internal/catalog"
	"github.com/dk400/dk400/internal/config"
	"github.com/dk400/dk400/internal/engine"
	"github.com/dk400/dk400/internal/history"
	"github.com/dk400/dk400/internal/jobs"
	"github.com/dk400/dk400/internal/logging"
	"github.com/dk400/dk400/internal/middleware"
	"github.com/dk400/dk400/internal/monitoring"
	"github.com/dk400/dk400/internal/screen"
	"github.com/dk400/dk400/internal/screens"
	"github.com/dk400/dk400/internal/session"
	"github.com/dk400/dk400/internal/users"
	"github.com/dk400/dk400/internal/ws"
)

// Server wires the terminal engine, its collaborators and the HTTP
// surface together.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	router   *gin.Engine
	engine   *engine.Engine
	sessions *session.Registry
	broker   *jobs.Broker
	history  *history.Log
	httpSrv  *http.Server
}

// New assembles a server from configuration. metrics may be nil to run
// without instrumentation (tests do this; the Prometheus registry is
// process-global).
func New(cfg *config.Config, log *logging.Logger, metrics *monitoring.Metrics) (*Server, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	hist := history.New(cfg.History.Capacity)
	hist.Record("INFO", "QSYS", "System started")

	broker := jobs.New(jobs.Config{
		RunnerURL:     cfg.Broker.RunnerURL,
		RunnerTimeout: cfg.Broker.RunnerTimeout,
		ExecutionTime: cfg.Broker.ExecutionTime,
	}, hist, log)

	manager := users.NewManager(log)
	sessions := session.NewRegistry()

	reg := screen.NewRegistry()
	if err := screens.Register(reg, cat, screens.Deps{
		Users:    manager,
		Broker:   broker,
		History:  hist,
		Sessions: sessions,
		Metrics:  metrics,
		Log:      log,
	}); err != nil {
		// A screen id collision is a build defect, not a runtime condition.
		return nil, fmt.Errorf("register screens: %w", err)
	}
	log.Info("screens registered", zap.Int("count", reg.Count()), zap.String("system", cat.SystemName))

	eng := engine.New(reg, sessions, screens.Entry, hist, metrics, log)
	wsHandler := ws.NewHandler(eng, metrics, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	s := &Server{
		cfg:      cfg,
		log:      log.Named("server"),
		router:   router,
		engine:   eng,
		sessions: sessions,
		broker:   broker,
		history:  hist,
	}

	router.GET("/", s.root(cat.SystemName))
	router.GET("/health", s.health)
	router.GET("/sessions", s.listSessions)
	router.GET("/jobs", s.listJobs)
	router.GET("/ws", wsHandler.HandleConnection)

	return s, nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until the context is canceled, then drains connections
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down", zap.Duration("timeout", s.cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) root(system string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "dk400",
			"system":  system,
			"status":  "running",
		})
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": s.sessions.Count(),
		"history":  s.history.Len(),
	})
}

// listSessions reports the active interactive jobs, WRKACTJOB style but
// for operators with curl instead of a terminal.
func (s *Server) listSessions(c *gin.Context) {
	type row struct {
		Job        string    `json:"job"`
		User       string    `json:"user"`
		Screen     string    `json:"screen"`
		SignedOnAt time.Time `json:"signedOnAt"`
		LastActive time.Time `json:"lastActive"`
	}

	snaps := s.sessions.Snapshots()
	rows := make([]row, 0, len(snaps))
	for _, snap := range snaps {
		rows = append(rows, row{
			Job:        snap.JobName,
			User:       snap.User,
			Screen:     snap.Screen,
			SignedOnAt: snap.SignedOnAt,
			LastActive: snap.LastActivity,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": rows, "count": len(rows)})
}

func (s *Server) listJobs(c *gin.Context) {
	jobList, err := s.broker.Jobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobList, "count": len(jobList)})
}
