// Package server exposes the chat pipeline over HTTP.
//
// Endpoints:
//   - GET    /api/message?sessionId= - fetch session history
//   - POST   /api/message            - post a chat turn
//   - DELETE /api/message            - delete a session
//   - GET    /healthz                - health check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight-ai/finsight/internal/models"
	"github.com/finsight-ai/finsight/internal/pipeline"
	"github.com/finsight-ai/finsight/internal/session"
)

const (
	// DefaultPort is the default port for the HTTP server.
	DefaultPort = 8090

	// MaxRequestBodySize caps request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	shutdownTimeout = 5 * time.Second
)

// Server is the HTTP front of the turn pipeline. One keyed mutex serializes
// turns per session id; reads take no lock.
type Server struct {
	port   int
	router *http.ServeMux
	server *http.Server

	store session.Store
	pipe  *pipeline.Pipeline
	locks *session.KeyedMutex
	log   *zap.Logger
}

func NewServer(port int, store session.Store, pipe *pipeline.Pipeline, log *zap.Logger) *Server {
	if port == 0 {
		port = DefaultPort
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		port:   port,
		router: http.NewServeMux(),
		store:  store,
		pipe:   pipe,
		locks:  session.NewKeyedMutex(),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/message", s.withLogging(s.handleMessage))
	s.router.HandleFunc("/healthz", s.withLogging(s.handleHealth))
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.Int("port", s.port))
		errCh <- s.server.ListenAndServe()
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
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFetchSession(w, r)
	case http.MethodPost:
		s.handlePostTurn(w, r)
	case http.MethodDelete:
		s.handleDeleteSession(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type historyResponse struct {
	History              []models.Message             `json:"history"`
	VisualizationHistory []models.VisualizationRecord `json:"visualizationHistory"`
}

func (s *Server) handleFetchSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	sess, err := s.store.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		// Unknown id is not a fault: empty collections.
		writeJSON(w, http.StatusOK, historyResponse{
			History:              []models.Message{},
			VisualizationHistory: []models.VisualizationRecord{},
		})
		return
	}
	if err != nil {
		s.log.Error("fetch session failed", zap.String("session", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		History:              sess.History,
		VisualizationHistory: sess.VisualizationHistory,
	})
}

type postTurnRequest struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Selection string `json:"selection,omitempty"`
	DataQuery string `json:"dataQuery,omitempty"`
}

type turnResponse struct {
	SessionID            string                       `json:"sessionId"`
	Response             models.AgentResponse         `json:"response"`
	History              []models.Message             `json:"history"`
	VisualizationHistory []models.VisualizationRecord `json:"visualizationHistory"`
}

func (s *Server) handlePostTurn(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req postTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := pipeline.TurnInput{Utterance: req.Message, Subject: req.DataQuery}
	if req.Selection != "" {
		format, ok := models.ParseFormat(req.Selection)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", req.Selection))
			return
		}
		in.Format = format
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	sess, err := s.store.Get(r.Context(), sessionID)
	if errors.Is(err, session.ErrNotFound) {
		sess = models.NewSession(sessionID)
	} else if err != nil {
		s.log.Error("load session failed", zap.String("session", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Flush the raw input before the model calls run, so a crashed turn
	// still remembers what the user supplied.
	s.pipe.Absorb(sess, in)
	s.persist(r.Context(), sess)

	resp, err := s.pipe.RunTurn(r.Context(), sess, in)
	if err != nil {
		// The pipeline already appended a bot-visible error entry.
		s.persist(r.Context(), sess)
		s.log.Error("turn failed", zap.String("session", sessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.persist(r.Context(), sess)
	writeJSON(w, http.StatusOK, turnResponse{
		SessionID:            sessionID,
		Response:             resp,
		History:              sess.History,
		VisualizationHistory: sess.VisualizationHistory,
	})
}

type deleteSessionRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req deleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	s.locks.Lock(req.SessionID)
	defer s.locks.Unlock(req.SessionID)

	err := s.store.Delete(r.Context(), req.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Session not found.")
		return
	}
	if err != nil {
		s.log.Error("delete session failed", zap.String("session", req.SessionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session history cleared successfully."})
}

// persist is best effort: a failed write is logged and the turn continues
// on in-memory state.
func (s *Server) persist(ctx context.Context, sess *models.Session) {
	if err := s.store.Put(ctx, sess); err != nil {
		s.log.Error("persist session failed", zap.String("session", sess.ID), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
