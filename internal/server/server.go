package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/atikulmunna/tally/internal/aggregator"
	"github.com/atikulmunna/tally/internal/hub"
	"github.com/atikulmunna/tally/internal/model"
	"github.com/gin-gonic/gin"
)

// Server holds the Gin engine and dependencies for the summary dashboard API.
type Server struct {
	engine     *gin.Engine
	hub        *hub.Hub
	aggregator *aggregator.Aggregator
	addr       string
	log        *slog.Logger
}

// New creates a web server exposing the latest Report and its stats.
func New(h *hub.Hub, agg *aggregator.Aggregator, addr string, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:     engine,
		hub:        h,
		aggregator: agg,
		addr:       addr,
		log:        logger,
	}

	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		snap := s.aggregator.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"uptime":         snap.Uptime,
			"scans":          snap.Scans,
			"files_analyzed": snap.FilesAnalyzed,
			"dropped":        s.hub.Dropped(),
		})
	})

	s.engine.GET("/api/summary", func(c *gin.Context) {
		report, ok := s.hub.Latest()
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no scan has completed yet"})
			return
		}
		if report.Results == nil {
			report.Results = []model.Summary{}
		}
		c.JSON(http.StatusOK, report)
	})

	s.engine.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.aggregator.Snapshot())
	})

	s.engine.GET("/ws", s.handleWebSocket)
}

// Start runs the server until ctx is cancelled, then shuts it down.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
