package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vidforge/internal/catalog"
	"vidforge/internal/config"
	"vidforge/internal/library"
	"vidforge/internal/logging"
	"vidforge/internal/pipeline"
	"vidforge/internal/probe"
	"vidforge/internal/transcode"
)

// multipartOverhead covers part headers and field boundaries beyond the
// video payload itself.
const multipartOverhead = 1 << 20

// Server exposes the ingest and catalog API over HTTP.
type Server struct {
	bind    string
	logger  *slog.Logger
	manager *library.Manager
	maxBody int64

	listener net.Listener
	server   *http.Server
}

// New builds an HTTP server bound to cfg.Paths.APIBind. It returns nil when
// no bind address is configured.
func New(cfg *config.Config, manager *library.Manager, logger *slog.Logger) *Server {
	if cfg == nil || manager == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &Server{
		bind:    bind,
		logger:  logger,
		manager: manager,
		maxBody: cfg.Upload.MaxBytes + multipartOverhead,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/videos", srv.handleVideos)
	mux.HandleFunc("/api/videos/", srv.handleVideo)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Handler
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, draining in-flight requests briefly.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr returns the bound listener address, or the configured bind string
// before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleUpload(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds the size limit")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	title := r.FormValue("title")
	file, header, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing video file field")
		return
	}
	defer file.Close()

	record, err := s.manager.Upload(r.Context(), title, header.Filename, file, header.Size)
	if err != nil {
		s.writeUploadError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, fromRecord(record))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, VideoListResponse{Videos: fromRecords(records)})
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		record, err := s.manager.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, "video not found")
				return
			}
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, fromRecord(record))
	case http.MethodDelete:
		if err := s.manager.Delete(r.Context(), id); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				s.writeError(w, http.StatusNotFound, "video not found")
				return
			}
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.manager.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

// writeUploadError maps ingest failures to status codes. Boundary rejections
// keep their own codes so callers can tell a bad request from a pipeline
// failure.
func (s *Server) writeUploadError(w http.ResponseWriter, err error) {
	var transcodeErr *transcode.Error
	switch {
	case errors.Is(err, library.ErrInvalidTitle):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, library.ErrTooLarge):
		s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, library.ErrUnsupportedFormat):
		s.writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, pipeline.ErrBusy):
		w.Header().Set("Retry-After", "5")
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, probe.ErrProbeFailed),
		errors.Is(err, transcode.ErrNoFrame),
		errors.As(err, &transcodeErr):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled):
		s.writeError(w, http.StatusServiceUnavailable, "upload interrupted")
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
