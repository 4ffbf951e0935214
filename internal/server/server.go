// Package server exposes the change report over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/parser"
	"github.com/morozRed/bit/internal/report"
	"github.com/morozRed/bit/internal/vcs"
)

const (
	shutdownTimeout = 5 * time.Second

	defaultHistory = 10
	maxHistory     = 100
)

// Repository is the git history the server exposes next to the report.
type Repository interface {
	Diff(ctx context.Context, ref, path string) (string, error)
	Log(ctx context.Context, n int) ([]vcs.Commit, error)
}

// Options configures a Server.
type Options struct {
	Analyzer   *report.Analyzer
	Git        Repository
	Registry   *parser.Registry
	Ignore     *ignore.Matcher
	Root       string
	DefaultRef string
	Version    string
	Logger     *slog.Logger
}

// Server serves the symbol report API.
type Server struct {
	opts     Options
	logger   *slog.Logger
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *metrics
}

// New builds the router. Each Server owns its own metrics registry.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		logger:   logger,
		engine:   gin.New(),
		registry: reg,
		metrics:  newMetrics(reg),
	}

	s.engine.Use(gin.Recovery(), requestID(), cors(), s.observe())
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	api.GET("/symbols", s.handleSymbols)
	api.GET("/status", s.handleStatus)
	if opts.Git != nil {
		api.GET("/diff", s.handleDiff)
		api.GET("/history", s.handleHistory)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type diffResponse struct {
	File string `json:"file"`
	Ref  string `json:"ref"`
	Diff string `json:"diff"`
}

type historyResponse struct {
	Commits []vcs.Commit `json:"commits"`
}

type statusResponse struct {
	Files    []vcs.StatusEntry `json:"files"`
	AllFiles []string          `json:"all_files"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.opts.Version})
}

// handleSymbols handles GET /api/symbols?ref=<ref>.
func (s *Server) handleSymbols(c *gin.Context) {
	ref := c.DefaultQuery("ref", s.opts.DefaultRef)
	r, err := s.opts.Analyzer.Analyze(c.Request.Context(), ref)
	if err != nil {
		s.metrics.analyses.WithLabelValues("error").Inc()
		c.JSON(analysisStatus(err), errorResponse{Error: err.Error()})
		return
	}
	s.metrics.observeReport(r)
	c.JSON(http.StatusOK, r)
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(c *gin.Context) {
	candidates, err := s.opts.Analyzer.Candidates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	files, err := fileutil.ScanFiles(s.opts.Root, s.opts.Registry, s.opts.Ignore)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, statusResponse{
		Files:    candidates,
		AllFiles: files,
	})
}

// handleDiff handles GET /api/diff?file=<path>&ref=<ref>.
func (s *Server) handleDiff(c *gin.Context) {
	file, ok := cleanRepoPath(c.Query("file"))
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "file must be a path inside the repository"})
		return
	}
	ref := c.DefaultQuery("ref", s.opts.DefaultRef)
	diff, err := s.opts.Git.Diff(c.Request.Context(), ref, file)
	if err != nil {
		c.JSON(analysisStatus(err), errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, diffResponse{File: file, Ref: ref, Diff: diff})
}

// handleHistory handles GET /api/history?n=<count>.
func (s *Server) handleHistory(c *gin.Context) {
	n := defaultHistory
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("n must be a positive integer, got %q", raw)})
			return
		}
		n = min(v, maxHistory)
	}
	commits, err := s.opts.Git.Log(c.Request.Context(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, historyResponse{Commits: commits})
}

// analysisStatus maps a git-backed failure to a response code.
func analysisStatus(err error) int {
	switch {
	case errors.Is(err, vcs.ErrUnknownRef):
		return http.StatusBadRequest
	case vcs.IsFatal(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func cleanRepoPath(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, "/") || filepath.IsAbs(raw) {
		return "", false
	}
	cleaned := path.Clean(filepath.ToSlash(raw))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
