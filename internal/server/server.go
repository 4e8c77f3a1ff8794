// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the extraction pipeline over HTTP: POST /extract
// returns flattened records as JSON for on-screen display, POST /download
// streams them back as a timestamped CSV attachment.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmeta/internal/export"
	"github.com/pdiddy/pubmeta/internal/extract"
	"github.com/pdiddy/pubmeta/internal/fetch"
	"github.com/pdiddy/pubmeta/pkg/types"
)

const (
	defaultAddr         = ":5001"
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 5 * time.Minute
)

// Server wires the fetcher and extraction pipeline into a gin router.
// Each request runs its own extraction; results are request-scoped and
// need no cross-request locking.
type Server struct {
	cfg        types.ServerConfig
	extractCfg types.ExtractConfig
	fetcher    *fetch.Fetcher
	log        *zap.Logger
}

// New builds a Server, applying defaults for unset config fields.
func New(cfg types.ServerConfig, fetchCfg types.FetchConfig, extractCfg types.ExtractConfig, log *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		cfg:        cfg,
		extractCfg: extractCfg,
		fetcher:    fetch.New(fetchCfg),
		log:        log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/extract", s.handleExtract)
	router.POST("/download", s.handleDownload)

	return router
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.log.Info("starting server", zap.String("addr", s.cfg.Addr))
	return srv.ListenAndServe()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// extractRequest accepts either a DOI list or a free-form text blob.
type extractRequest struct {
	DOIs []string `json:"dois"`
	Text string   `json:"text"`
}

// extractResponse is the JSON view of a BatchResult for the preview table.
type extractResponse struct {
	Success           bool                       `json:"success"`
	Results           []types.MetadataRecord     `json:"results"`
	Failures          map[string]extract.Failure `json:"failures,omitempty"`
	Duplicates        int                        `json:"duplicates"`
	TotalPublications int                        `json:"total_publications"`
	Message           string                     `json:"message"`
}

func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rawText := req.Text
	if len(req.DOIs) > 0 {
		rawText = strings.Join(req.DOIs, "\n")
	}
	if strings.TrimSpace(rawText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no DOIs provided"})
		return
	}

	result, err := extract.Extract(c.Request.Context(), s.fetcher, rawText, s.extractCfg, io.Discard)
	if err != nil {
		if errors.Is(err, extract.ErrNoValidDOIs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "no valid DOIs found",
				"failures": result.Failures,
			})
			return
		}
		s.log.Error("extraction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.log.Info("extraction completed",
		zap.Int("succeeded", result.Succeeded()),
		zap.Int("failed", result.Failed()),
		zap.Int("duplicates", result.Duplicates))

	c.JSON(http.StatusOK, extractResponse{
		Success:           true,
		Results:           result.Records,
		Failures:          result.Failures,
		Duplicates:        result.Duplicates,
		TotalPublications: result.Succeeded(),
		Message:           fmt.Sprintf("processed %d inputs", result.Total()),
	})
}

// downloadRequest carries previously extracted rows back for CSV export.
type downloadRequest struct {
	Results []types.MetadataRecord `json:"results"`
}

func (s *Server) handleDownload(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Results) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data to download"})
		return
	}

	filename, content, err := export.ToCSV(req.Results)
	if err != nil {
		s.log.Error("CSV export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", content)
}
