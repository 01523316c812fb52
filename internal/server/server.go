package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/cfdi-processor/internal/cfdi"
	xmlreader "github.com/rezonia/cfdi-processor/internal/parser/xml"
	"github.com/rezonia/cfdi-processor/internal/sat"
)

// Config holds server configuration
type Config struct {
	Address      string
	SATBaseURL   string
	SATTimeout   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// VerifyDisabled runs the server without the SAT client; /verify returns 503
	VerifyDisabled bool
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	satClient *sat.Client
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	var satClient *sat.Client
	if !config.VerifyDisabled {
		var clientOpts []sat.ClientOption
		if config.SATBaseURL != "" {
			clientOpts = append(clientOpts, sat.WithBaseURL(config.SATBaseURL))
		}
		if config.SATTimeout > 0 {
			clientOpts = append(clientOpts, sat.WithTimeout(config.SATTimeout))
		}
		satClient = sat.NewClient(clientOpts...)
	}

	s := &Server{
		config:    config,
		router:    router,
		satClient: satClient,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/parse", s.handleParse)
		v1.POST("/verify", s.handleVerify)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleParse(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	doc, err := xmlreader.ReadInvoice(body)
	if err != nil {
		s.writeParseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseResponse{
		Version: doc.CFDIVersion(),
		Invoice: doc,
	})
}

func (s *Server) handleVerify(c *gin.Context) {
	if s.satClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SAT verification is disabled on this server"})
		return
	}

	body, ok := s.readBody(c)
	if !ok {
		return
	}

	doc, err := xmlreader.ReadInvoice(body)
	if err != nil {
		s.writeParseError(c, err)
		return
	}

	key, err := cfdi.KeyOf(doc)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	status, err := s.satClient.Verify(ctx, key)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "SAT verification failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		UUID:         key.UUID.String(),
		IssuerRFC:    string(key.IssuerRFC),
		RecipientRFC: string(key.RecipientRFC),
		Total:        key.Total.String(),
		Status:       status,
	})
}

// readBody reads the raw request body, writing a 400 response when it is
// missing or unreadable.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
		return nil, false
	}
	return body, true
}

// writeParseError maps reader failures onto HTTP status codes: schema and
// version failures are 422, everything earlier (unreadable XML) is 400.
func (s *Server) writeParseError(c *gin.Context, err error) {
	var invErr *cfdi.InvalidCFDIError
	var unsupported *cfdi.UnsupportedCFDIError

	switch {
	case errors.As(err, &unsupported):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     err.Error(),
			"version":   unsupported.Version,
			"supported": unsupported.Supported,
		})
	case errors.As(err, &invErr):
		resp := gin.H{"error": err.Error()}
		if invErr.Path != "" {
			resp["path"] = invErr.Path
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
