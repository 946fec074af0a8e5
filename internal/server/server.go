// Package server exposes the fill pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/autoform/internal/app"
	"github.com/hyperifyio/autoform/internal/document"
	"github.com/hyperifyio/autoform/internal/form"
)

// multipartOverhead is allowed on top of MaxUploadBytes for the other form
// fields and multipart framing.
const multipartOverhead = 1 << 20

// ErrUploadTooLarge is returned when the uploaded file exceeds the limit.
var ErrUploadTooLarge = errors.New("upload too large")

// Pipeline is the subset of *app.App the handlers need.
type Pipeline interface {
	ParseResume(ctx context.Context, filename string, content []byte) (app.ParseOutcome, error)
	AnalyzeForm(ctx context.Context, formURL string) (form.Schema, error)
	FillForm(ctx context.Context, formURL, filename string, content []byte, dryRun bool) (app.FillResult, error)
}

// Server serves the /api routes.
type Server struct {
	pipeline  Pipeline
	maxUpload int64
	engine    *gin.Engine
}

// New builds the router. cfg supplies CORS origins and the upload limit.
func New(p Pipeline, cfg app.Config) *Server {
	app.ApplyDefaults(&cfg)
	s := &Server{pipeline: p, maxUpload: cfg.MaxUploadBytes}

	r := gin.New()
	r.Use(requestID(), requestLogger(), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/parse-resume", s.parseResume)
		api.POST("/analyze-form", s.analyzeForm)
		api.POST("/fill-form", s.fillForm)
	}
	s.engine = r
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	c.ExposeHeaders = []string{RequestIDHeader}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) parseResume(c *gin.Context) {
	filename, content, err := s.upload(c)
	if err != nil {
		uploadError(c, err)
		return
	}
	out, err := s.pipeline.ParseResume(c.Request.Context(), filename, content)
	if errors.Is(err, document.ErrUnrecognizedFormat) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unsupported file format"})
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("stage", "parse").Msg("parse-resume failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if out.NotATSFriendly != nil {
		c.JSON(http.StatusOK, notATSFriendly(*out.NotATSFriendly))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ats_friendly": true, "data": out.Resume})
}

type analyzeRequest struct {
	FormURL string `json:"form_url" binding:"required"`
}

func (s *Server) analyzeForm(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON format: " + err.Error()})
		return
	}
	schema, err := s.pipeline.AnalyzeForm(c.Request.Context(), strings.TrimSpace(req.FormURL))
	if err != nil {
		log.Warn().Err(err).Str("stage", "analyze").Msg("analyze-form failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"form_id": schema.FormID,
		"title":   schema.Title,
		"fields":  schema.Entries,
	})
}

func (s *Server) fillForm(c *gin.Context) {
	filename, content, err := s.upload(c)
	if err != nil {
		uploadError(c, err)
		return
	}
	formURL := strings.TrimSpace(c.PostForm("form_url"))
	if formURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "form_url is required"})
		return
	}
	dryRun := false
	if v := strings.TrimSpace(c.PostForm("dry_run")); v != "" {
		if dryRun, err = strconv.ParseBool(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "dry_run must be a boolean"})
			return
		}
	}

	res, err := s.pipeline.FillForm(c.Request.Context(), formURL, filename, content, dryRun)
	if errors.Is(err, document.ErrUnrecognizedFormat) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unsupported file format"})
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("stage", "fill").Msg("fill-form failed")
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if res.NotATSFriendly != nil {
		body := notATSFriendly(*res.NotATSFriendly)
		body["message"] = "Cannot fill form with non-ATS-friendly PDF"
		c.JSON(http.StatusOK, body)
		return
	}
	c.JSON(http.StatusOK, fillBody(res))
}

func fillBody(res app.FillResult) gin.H {
	body := gin.H{
		"success":     res.DryRun || res.Submitted(),
		"dry_run":     res.DryRun,
		"form_id":     res.FormID,
		"title":       res.Title,
		"filled_data": res.Filled,
	}
	if res.Submission != nil {
		body["filled_fields"] = res.Submission.FilledFields
		if res.Submission.StatusCode != nil {
			body["status_code"] = *res.Submission.StatusCode
		}
		if !res.Submission.Success {
			body["error"] = res.Message()
			if res.Submission.Diagnostic != "" {
				body["diagnostic"] = res.Submission.Diagnostic
			}
			return body
		}
	}
	body["message"] = res.Message()
	return body
}

func notATSFriendly(n app.NotATSFriendly) gin.H {
	return gin.H{
		"success":      false,
		"ats_friendly": false,
		"error":        n.Error,
		"message":      n.Message,
		"suggestions":  n.Suggestions,
	}
}

// upload reads the multipart "file" field, bounded by maxUpload.
func (s *Server) upload(c *gin.Context) (string, []byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", nil, ErrUploadTooLarge
		}
		return "", nil, fmt.Errorf("file is required: %w", err)
	}
	if fh.Size > s.maxUpload {
		return "", nil, ErrUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > s.maxUpload {
		return "", nil, ErrUploadTooLarge
	}
	return fh.Filename, b, nil
}

func uploadError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, ErrUploadTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
