package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dialect-translator/internal/config"
	"dialect-translator/internal/models"
	"dialect-translator/internal/service"
	"dialect-translator/internal/session"
	"dialect-translator/internal/storage"
	"dialect-translator/internal/translator"
)

// Version is set at build time with -ldflags "-X dialect-translator/internal/server.Version=..."
var Version = "dev"

const sessionCookie = "session_id"

// Server is the HTTP front-end: an HTML translator page and a JSON API over
// the same per-browser session controllers.
type Server struct {
	cfg      *config.Config
	svc      *service.Service
	sessions *session.Registry
	log      *slog.Logger
	router   *gin.Engine
}

func New(cfg *config.Config, svc *service.Service, log *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		sessions: session.NewRegistry(svc.TranslatorFor(models.OriginUI)),
		log:      log,
	}

	if gin.Mode() != gin.TestMode {
		gin.SetMode(modeFor(cfg.Log.Level))
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.SetHTMLTemplate(pageTemplate)
	s.setupRoutes(r)
	s.router = r

	return s
}

// modeFor keeps gin's route dump and debug warnings for debug logging only
func modeFor(logLevel string) string {
	if strings.EqualFold(strings.TrimSpace(logLevel), "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.GET("/", s.handleIndex)
	r.POST("/", s.handleForm)

	r.GET("/version", s.handleVersion)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/translate", s.handleTranslate)
		api.GET("/history", s.handleHistory)
		api.GET("/history/:id", s.handleHistoryEntry)

		sess := api.Group("/session")
		sess.GET("", s.handleSession)
		sess.PUT("/input", s.handleEdit)
		sess.POST("/translate", s.handleSessionTranslate)
		sess.POST("/swap", s.handleSwap)
		sess.POST("/clear", s.handleClear)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, sweeping idle sessions in the background.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr, "provider", s.svc.ProviderName())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) sweepSessions(ctx context.Context) {
	idle := s.cfg.Server.SessionIdleTimeout
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(idle); n > 0 {
				s.log.Debug("idle sessions removed", "count", n, "remaining", s.sessions.Len())
			}
		}
	}
}

// controller returns the caller's session controller, issuing a cookie for new sessions
func (s *Server) controller(c *gin.Context) *session.Controller {
	id, _ := c.Cookie(sessionCookie)
	newID, ctrl := s.sessions.Get(id)
	if newID != id {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, newID, 0, "/", "", false, true)
	}
	return ctrl
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	ctrl := s.controller(c)
	c.HTML(http.StatusOK, "index", newPageData(ctrl.Snapshot()))
}

// handleForm applies the submitted text and the chosen action, then redirects back to the page
func (s *Server) handleForm(c *gin.Context) {
	ctrl := s.controller(c)

	if input, ok := c.GetPostForm("input"); ok {
		ctrl.Edit(input)
	}

	switch c.PostForm("action") {
	case "translate":
		ctrl.Translate(c.Request.Context())
	case "swap":
		ctrl.Swap()
	case "clear":
		ctrl.Clear()
	}

	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"provider": s.svc.ProviderName(),
		"sessions": s.sessions.Len(),
	}

	if c.Query("deep") != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		if err := s.svc.CheckProvider(ctx); err != nil {
			resp["status"] = "degraded"
			resp["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	source := models.Sorani
	if req.Source != "" {
		d, err := models.ParseDialect(req.Source)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		source = d
	}

	out, err := s.svc.Translate(c.Request.Context(), req.Text, source, models.OriginAPI)
	if err != nil {
		c.JSON(statusForError(err), gin.H{
			"error": err.Error(),
			"kind":  translator.KindOf(err).String(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"translation": out,
		"source":      source,
		"target":      source.Other(),
	})
}

func statusForError(err error) int {
	switch translator.KindOf(err) {
	case translator.KindConfiguration:
		return http.StatusServiceUnavailable
	case translator.KindAuth, translator.KindMalformedResponse, translator.KindRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	translations, err := s.svc.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if translations == nil {
		translations = []*models.Translation{}
	}

	c.JSON(http.StatusOK, gin.H{"translations": translations})
}

func (s *Server) handleHistoryEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	t, err := s.svc.Translation(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, t)
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller(c).Snapshot())
}

type editRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleEdit(c *gin.Context) {
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctrl := s.controller(c)
	if !ctrl.Edit(req.Input) {
		c.JSON(http.StatusConflict, ctrl.Snapshot())
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// handleSessionTranslate starts a translation and returns at once; the
// outcome is applied in the background and visible through GET /api/session.
func (s *Server) handleSessionTranslate(c *gin.Context) {
	ctrl := s.controller(c)

	call := ctrl.Begin(context.WithoutCancel(c.Request.Context()))
	if call == nil {
		snap := ctrl.Snapshot()
		if snap.Loading {
			c.JSON(http.StatusConflict, snap)
			return
		}
		c.JSON(http.StatusOK, snap)
		return
	}

	go ctrl.Resolve(call)

	c.JSON(http.StatusAccepted, ctrl.Snapshot())
}

func (s *Server) handleSwap(c *gin.Context) {
	ctrl := s.controller(c)
	if !ctrl.Swap() {
		c.JSON(http.StatusConflict, ctrl.Snapshot())
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (s *Server) handleClear(c *gin.Context) {
	ctrl := s.controller(c)
	if !ctrl.Clear() {
		c.JSON(http.StatusConflict, ctrl.Snapshot())
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}
