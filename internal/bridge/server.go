package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sonaris/internal/commands"
)

const maxBodyBytes = 1 << 20

// Server exposes the command registry over HTTP so a web front-end can
// invoke commands by name.
type Server struct {
	registry *commands.Registry
	log      *zap.Logger
	mux      *http.ServeMux
}

func NewServer(registry *commands.Registry, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{registry: registry, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /invoke/{command}", s.handleInvoke)
	s.mux.HandleFunc("GET /commands", s.handleCommands)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready chan<- string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info("bridge listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		s.log.Info("bridge stopped")
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("command")
	if !s.registry.Has(name) {
		writeJSON(w, http.StatusNotFound, commands.Result{Error: "unknown command: " + name})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, commands.Result{Error: "read body: " + err.Error()})
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, commands.Result{Error: "body must be a JSON object"})
		return
	}

	start := time.Now()
	res := s.registry.Invoke(r.Context(), name, body)
	s.log.Debug("invoke",
		zap.String("command", name),
		zap.Bool("ok", res.OK),
		zap.Duration("took", time.Since(start)))
	if !res.OK {
		s.log.Warn("command failed", zap.String("command", name), zap.String("error", res.Error))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"commands": s.registry.Names()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
