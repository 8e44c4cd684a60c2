// Copyright 2026 The NeuroTranslate Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api exposes the gateway's HTTP surface: translation runs, history,
// exports, the language table, synthesized audio and the chat assistant.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/chat"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/config"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/export"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/fault"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/history"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/hooks"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/lang"
	"github.com/chaimaalaazzaoui950-dot/mon-app-traduction/internal/pipeline"
)

// Server hosts the gateway API.
type Server struct {
	cfg       *config.Config
	engine    *gin.Engine
	srv       *http.Server
	pipeline  *pipeline.Pipeline
	store     history.Store
	exports   *export.Registry
	artifacts *export.ArtifactStore
	assistant chat.Assistant
	sessions  *sessionTable
	langs     *lang.Table
	bus       *hooks.EventBus
	audioDir  string
}

// Deps collects the server collaborators.
type Deps struct {
	Pipeline  *pipeline.Pipeline
	Store     history.Store
	Exports   *export.Registry
	Artifacts *export.ArtifactStore
	Assistant chat.Assistant
	Langs     *lang.Table
	Bus       *hooks.EventBus
	AudioDir  string
}

// NewServer builds the router and wires all routes.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		pipeline:  deps.Pipeline,
		store:     deps.Store,
		exports:   deps.Exports,
		artifacts: deps.Artifacts,
		assistant: deps.Assistant,
		sessions:  newSessionTable(cfg.Chat.MaxTurns),
		langs:     deps.Langs,
		bus:       deps.Bus,
		audioDir:  deps.AudioDir,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(requestLogMiddleware())

	engine.GET("/healthz", s.handleHealth)

	v1 := engine.Group("/v1")
	v1.GET("/languages", s.handleLanguages)
	v1.GET("/history", s.handleHistory)
	v1.GET("/audio/:name", s.handleAudio)

	protected := v1.Group("")
	protected.Use(managementKeyMiddleware(cfg))
	protected.POST("/pipeline", s.handlePipeline)
	protected.POST("/export", s.handleExport)
	protected.POST("/chat", s.handleChat)
	protected.GET("/chat/ws", s.handleChatWS)

	s.engine = engine
	return s
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Start runs the HTTP server until the context is cancelled, then drains
// in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("gateway listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// requestIDMiddleware assigns each request a short ID, honoring one supplied
// by the client, and reflects it in the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()[:8]
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithField("request_id", c.GetString("request_id"))
		entry.Infof("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// managementKeyMiddleware rejects requests that do not present the configured
// management key. An empty configured key disables the check.
func managementKeyMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader("X-Management-Key")
		if presented == "" {
			presented = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if !cfg.VerifyManagementKey(presented) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or missing management key",
			})
			return
		}
		c.Next()
	}
}

// respondError maps a classified failure onto an HTTP status and a stable
// error payload.
func respondError(c *gin.Context, err error) {
	kind := fault.KindOf(err)

	status := http.StatusBadGateway
	switch kind {
	case fault.KindEmptyInput, fault.KindUnsupportedFormat:
		status = http.StatusBadRequest
	case fault.KindUnsupportedLanguage, fault.KindUnsupportedExportFormat:
		status = http.StatusUnprocessableEntity
	case fault.KindMissingFontResource:
		status = http.StatusConflict
	case fault.KindTimeout:
		status = http.StatusGatewayTimeout
	case fault.KindStoreWrite:
		status = http.StatusInternalServerError
	}

	log.WithField("request_id", c.GetString("request_id")).
		Warnf("request failed (%s): %v", kind, err)
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
