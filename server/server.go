// Package server exposes the HTTP surface: chat, upload, status
// polling, tenant reset, visualization, and a websocket chat channel.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/types"
	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/pkg/ingest"
)

// AgentRunner runs the query pipeline for one question.
type AgentRunner interface {
	Run(ctx context.Context, question, userID string) (models.AgentState, error)
}

// Ingestor accepts uploads and tenant resets.
type Ingestor interface {
	IngestFile(ctx context.Context, userID, filename string, r io.Reader) (*ingest.Task, error)
	Reset(ctx context.Context, userID string) error
}

// Visualizer renders a tenant's graph to a static file.
type Visualizer interface {
	Render(ctx context.Context, userID, mode string) (string, error)
}

type Config struct {
	Addr      string
	StaticDir string
}

type Server struct {
	config   Config
	agent    AgentRunner
	pipeline Ingestor
	status   types.StatusStore
	viz      Visualizer
	logger   *zap.Logger
}

func New(config Config, agent AgentRunner, pipeline Ingestor,
	statusStore types.StatusStore, visualizer Visualizer, logger *zap.Logger) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.StaticDir == "" {
		config.StaticDir = "static"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		config:   config,
		agent:    agent,
		pipeline: pipeline,
		status:   statusStore,
		viz:      visualizer,
		logger:   logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Post("/chat", s.handleChat)
	r.Post("/upload", s.handleUpload)
	r.Get("/status", s.handleStatus)
	r.Post("/reset", s.handleReset)
	r.Get("/visualize/{mode}", s.handleVisualize)
	r.Get("/ws", s.handleWebSocket)

	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(s.config.StaticDir)))
	r.Get("/static/*", fileServer.ServeHTTP)

	return r
}

func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting server", zap.String("addr", s.config.Addr))
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
