package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"loanrag/internal/domain"
	"loanrag/internal/loader"
	"loanrag/internal/service"
)

// DefaultMaxUploadBytes bounds the size of a dataset upload.
const DefaultMaxUploadBytes = 32 << 20

// Service is the subset of the loan service exposed over HTTP.
type Service interface {
	domain.LoanService
	LoadReader(r io.Reader, format string) (int, error)
}

// Config holds HTTP server configuration.
type Config struct {
	DefaultTopK    int
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server serves the JSON API.
type Server struct {
	router    *chi.Mux
	service   Service
	topK      int
	maxUpload int64
	logger    *slog.Logger
}

// NewServer creates a server with routes and middleware configured.
func NewServer(svc Service, cfg Config) *Server {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = service.DefaultTopK
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		router:    chi.NewRouter(),
		service:   svc,
		topK:      cfg.DefaultTopK,
		maxUpload: cfg.MaxUploadBytes,
		logger:    cfg.Logger.With("component", "api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/search", s.handleSearch)
	s.router.Get("/api/statistics", s.handleStatistics)
	s.router.Get("/api/insights", s.handleInsights)
	s.router.Post("/api/ask", s.handleAsk)
	s.router.Post("/api/dataset", s.handleDatasetUpload)
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
}

type statisticsResponse struct {
	domain.Statistics
	ApprovalRate float64 `json:"approvalRate"`
}

type askRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": s.service.Statistics().TotalRecords,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	topK := s.topK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid top_k %q", raw))
			return
		}
		topK = n
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: q, Results: s.service.Search(q, topK)})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st := s.service.Statistics()
	writeJSON(w, http.StatusOK, statisticsResponse{Statistics: st, ApprovalRate: st.ApprovalRate()})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	text, err := s.service.Insights(r.Context())
	if err != nil {
		s.logger.Error("insights failed", "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insights": text})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	ans, err := s.service.Ask(r.Context(), req.Query)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.Error("ask failed", "query", req.Query, "err", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = loader.FormatCSV
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty upload"))
		return
	}
	n, err := s.service.LoadReader(bytes.NewReader(body), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.logger.Info("dataset uploaded", "format", format, "records", n)
	writeJSON(w, http.StatusOK, map[string]int{"records": n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
