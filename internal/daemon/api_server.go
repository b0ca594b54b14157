package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cuesync/internal/api"
	"cuesync/internal/commands"
	"cuesync/internal/config"
	"cuesync/internal/host"
	"cuesync/internal/logging"
	"cuesync/internal/services"
	"cuesync/internal/session"
)

const maxRequestBytes = 16 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	svc     *commands.Service
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.API.Bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
		svc:    d.svc,
	}

	mux := http.NewServeMux()
	srv.route(mux, http.MethodGet, "/api/status", srv.handleStatus)
	srv.route(mux, http.MethodPost, "/api/load", srv.handleLoad)
	srv.route(mux, http.MethodPost, "/api/extract", srv.handleExtract)
	srv.route(mux, http.MethodPost, "/api/translate", srv.handleTranslate)
	srv.route(mux, http.MethodPost, "/api/reconcile", srv.handleReconcile)
	srv.route(mux, http.MethodPost, "/api/prompt", srv.handlePrompt)
	srv.route(mux, http.MethodPost, "/api/navigate", srv.handleNavigate)
	srv.route(mux, http.MethodPost, "/api/tick", srv.handleTick)
	srv.route(mux, http.MethodPost, "/api/player", srv.handlePlayer)
	srv.route(mux, http.MethodPost, "/api/speech", srv.handleSpeech)
	srv.route(mux, http.MethodPost, "/api/settings", srv.handleSettings)

	srv.handler = srv.withRequestID(authMiddleware(cfg.API.Token, mux))
	return srv
}

func (s *apiServer) route(mux *http.ServeMux, method, path string, handler http.HandlerFunc) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", "")
			return
		}
		handler(w, r)
	})
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api listen: api.bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Translation responses can take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := services.WithRequestID(r.Context(), id)
		s.logger.DebugContext(ctx, "api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeStatus(w, r)
}

func (s *apiServer) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req api.LoadRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.svc.LoadText(r.Context(), req.Text); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeStatus(w, r)
}

func (s *apiServer) handleExtract(w http.ResponseWriter, r *http.Request) {
	text, err := s.svc.ExtractFromPlayer(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.TextResponse{Text: text})
}

func (s *apiServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req api.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.svc.Translate(r.Context(), req.Text)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.TextResponse{Text: text})
}

func (s *apiServer) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req api.ReconcileRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.TextResponse{Text: s.svc.Reconcile(r.Context(), req.Original, req.Translated)})
}

func (s *apiServer) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req api.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	prompt, err := s.svc.CopyPrompt(r.Context(), req.Text)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.PromptResponse{Prompt: prompt})
}

func (s *apiServer) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req api.NavigateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "navigate", "url required", nil))
		return
	}
	if err := s.daemon.Navigate(r.Context(), req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeStatus(w, r)
}

func (s *apiServer) handleTick(w http.ResponseWriter, r *http.Request) {
	var req api.TickRequest
	if !s.decode(w, r, &req) {
		return
	}
	player, ok := s.svc.Page().CurrentPlayer()
	if !ok {
		s.writeFailure(w, r, session.ErrNoPlayer)
		return
	}
	player.Advance(req.Time)
	s.writeStatus(w, r)
}

func (s *apiServer) handlePlayer(w http.ResponseWriter, r *http.Request) {
	var req api.PlayerRequest
	if !s.decode(w, r, &req) {
		return
	}
	page := s.svc.Page()
	switch req.Action {
	case api.PlayerAttach:
		id := req.ID
		if id == "" {
			id = uuid.NewString()
		}
		page.AttachPlayer(host.NewPlayer(id, req.Tracks, req.Elements))
	case api.PlayerDetach:
		page.DetachPlayer()
	default:
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "player",
			fmt.Sprintf("unknown action %q (want attach or detach)", req.Action), nil))
		return
	}
	s.writeStatus(w, r)
}

func (s *apiServer) handleSpeech(w http.ResponseWriter, r *http.Request) {
	var req api.SpeechRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.svc.SetSpeech(r.Context(), req.Enabled, req.Voice, req.Rate); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeStatus(w, r)
}

func (s *apiServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req api.SettingsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.svc.UpdateSettings(r.Context(), req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeStatus(w, r)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error(), "validation")
		return false
	}
	return true
}

func (s *apiServer) writeStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.daemon.Status(r.Context()))
}

// statusFor maps error markers to HTTP statuses.
func statusFor(err error) int {
	switch services.Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "validation", "configuration":
		return http.StatusBadRequest
	case "stale":
		return http.StatusConflict
	case "external":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	kind := services.Kind(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(r.Context(), s.logger, "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	} else {
		s.logger.InfoContext(r.Context(), "api request rejected",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.String("kind", kind),
			logging.Error(err),
		)
	}
	s.writeError(w, r, status, err.Error(), kind)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, status int, message, kind string) {
	s.writeJSON(w, r, status, api.ErrorResponse{Error: message, Kind: kind})
}
