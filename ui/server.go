// Package ui exposes the analysis engine over HTTP for the reporting layer.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sleeptrend/adapters/stats/correlation"
	"sleeptrend/adapters/stats/regression"
	"sleeptrend/domain/core"
	"sleeptrend/domain/health"
	"sleeptrend/internal"
	"sleeptrend/internal/config"
	"sleeptrend/ports"
)

// Server wires the analyzers and the optional archive behind a gin router.
type Server struct {
	router      *gin.Engine
	correlation *correlation.Analyzer
	trend       *regression.Analyzer
	repo        ports.AnalysisRepository // nil disables archiving
	logger      *internal.Logger
}

// NewServer builds the HTTP surface from the configured analysis policy.
// Pass a nil repository to run without the archive.
func NewServer(cfg *config.Config, repo ports.AnalysisRepository, logger *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router: gin.Default(),
		correlation: correlation.NewAnalyzer(correlation.Config{
			LagDays:               cfg.Analysis.LagDays,
			MinSampleSize:         cfg.Analysis.MinSampleSize,
			PThreshold:            cfg.Analysis.PThreshold,
			MinEffectThreshold:    cfg.Analysis.MinEffectThreshold,
			ConfidenceLevel:       cfg.Analysis.ConfidenceLevel,
			QualitySplitThreshold: cfg.Analysis.QualitySplit,
		}),
		trend: regression.NewAnalyzer(regression.Config{
			MinDataPoints:         cfg.Analysis.MinTrendPoints,
			RemoveOutliers:        cfg.Analysis.RemoveOutliers,
			LowerIsBetter:         cfg.Analysis.LowerIsBetter,
			SignificanceThreshold: cfg.Analysis.PThreshold,
			ConfidenceLevel:       cfg.Analysis.ConfidenceLevel,
		}),
		repo:   repo,
		logger: logger,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/analysis/correlation", s.handleCorrelation)
	api.POST("/analysis/trend", s.handleTrend)
	api.GET("/analysis", s.handleListRuns)
	api.GET("/analysis/:id", s.handleGetRun)
	api.GET("/analysis/:id/report", s.handleReport)
}

// Run starts the server on the given address
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Router exposes the underlying gin engine (used by tests)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type correlationRequest struct {
	Label       string                     `json:"label"`
	Sleep       []health.SleepSample       `json:"sleep" binding:"required"`
	Performance []health.PerformanceSample `json:"performance" binding:"required"`
}

func (s *Server) handleCorrelation(c *gin.Context) {
	var req correlationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.correlation.Analyze(req.Sleep, req.Performance)
	run := &health.AnalysisRun{
		ID:          core.NewAnalysisID(),
		Kind:        health.AnalysisCorrelation,
		Label:       req.Label,
		Correlation: &result,
		CreatedAt:   core.Now(),
	}
	s.archive(c, run)

	c.JSON(http.StatusOK, run)
}

type trendRequest struct {
	Label  string              `json:"label"`
	Points []health.TrendPoint `json:"points" binding:"required"`
}

func (s *Server) handleTrend(c *gin.Context) {
	var req trendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.trend.AnalyzeTrend(req.Points)
	run := &health.AnalysisRun{
		ID:        core.NewAnalysisID(),
		Kind:      health.AnalysisTrend,
		Label:     req.Label,
		Trend:     &result,
		CreatedAt: core.Now(),
	}
	s.archive(c, run)

	c.JSON(http.StatusOK, run)
}

// archive persists a run when storage is configured. An archive failure is
// logged but never fails the analysis response.
func (s *Server) archive(c *gin.Context, run *health.AnalysisRun) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveRun(c.Request.Context(), run); err != nil {
		s.logger.Warn("failed to archive analysis run %s: %v", run.ID, err)
	}
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis archive not configured"})
		return
	}

	runs, err := s.repo.ListRuns(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleReport(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}

	html := RenderHTML(BuildMarkdown(run))
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) lookupRun(c *gin.Context) (*health.AnalysisRun, bool) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis archive not configured"})
		return nil, false
	}

	run, err := s.repo.GetRun(c.Request.Context(), core.AnalysisID(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis run not found"})
		return nil, false
	}
	return run, true
}
