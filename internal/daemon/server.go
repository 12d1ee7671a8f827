package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentcore/runtime/internal/corekit"
	"github.com/agentcore/runtime/internal/events"
	"github.com/agentcore/runtime/internal/skill"
)

// rpcTimeout bounds how long a single skill method call may run before the
// IPC surface gives up on it and returns HANDLER_TIMEOUT, independent of
// whether the skill's own handler respects context cancellation.
const rpcTimeout = 5 * time.Second

// RateLimiter is the extension point left for installing a token-bucket
// rate limiter at the IPC boundary without touching route handlers (spec
// §9 Open Question on rate limiting). Nil by default: no limiting.
type RateLimiter interface {
	Allow(bearerToken string) bool
}

// Server is the daemon's HTTP-over-localhost IPC surface (spec §4.10 IPC).
type Server struct {
	registry    *skill.Registry
	bus         *events.Bus
	bearerToken string
	startedAt   time.Time
	rateLimiter RateLimiter

	// onStop, if set, is invoked (in a goroutine) when POST /stop is received.
	onStop func()

	httpServer *http.Server
}

// NewServer builds a Server bound to host:port. bearerToken, if non-empty,
// is required via Authorization: Bearer <token> on every route except
// /health. bus is used only to serve /events (operator debugging, spec
// §C.2); the daemon's skill dispatch never goes through the Server.
func NewServer(registry *skill.Registry, bus *events.Bus, host string, port int, bearerToken string) *Server {
	s := &Server{registry: registry, bus: bus, bearerToken: bearerToken, startedAt: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/skills", s.handleSkills)
		r.Get("/events", s.handleEvents)
		r.Post("/rpc/{skill}/{method}", s.handleRPC)
		r.Post("/stop", s.handleStop)
	})

	s.httpServer = &http.Server{
		Addr:    addr(host, port),
		Handler: r,
	}
	return s
}

func addr(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}

// OnStop registers fn to be called when a client issues POST /stop.
func (s *Server) OnStop(fn func()) {
	s.onStop = fn
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.bearerToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.bearerToken {
			writeError(w, &corekit.Error{Kind: corekit.KindPermissionDenied, Message: "missing or invalid bearer token"}, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		Name        string   `json:"name"`
		Version     string   `json:"version"`
		Description string   `json:"description"`
		Requires    []string `json:"requires,omitempty"`
	}
	var out []summary
	for _, m := range s.registry.Manifests() {
		out = append(out, summary{Name: m.Name, Version: m.Version, Description: m.Description, Requires: m.Requires})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEvents serves the bus's in-memory event history for operator
// debugging (spec §C.2). ?limit=N caps the number of events returned,
// most recent last.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.bus.History(limit))
}

type rpcRequest struct {
	Args   []any          `json:"args,omitempty"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// rpcCallResult carries the outcome of a registry.Call run on its own
// goroutine so handleRPC can race it against the request's deadline.
type rpcCallResult struct {
	result any
	err    error
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	skillName := chi.URLParam(r, "skill")
	method := chi.URLParam(r, "method")

	var req rpcRequest
	if r.ContentLength != 0 {
		json.NewDecoder(r.Body).Decode(&req)
	}

	ctx, cancel := context.WithTimeout(r.Context(), rpcTimeout)
	defer cancel()

	done := make(chan rpcCallResult, 1)
	go func() {
		result, err := s.registry.Call(ctx, skillName, method, req.Args)
		done <- rpcCallResult{result, err}
	}()

	select {
	case <-ctx.Done():
		// The handler may still be running; it will find ctx already
		// cancelled whenever it next checks. We don't wait for it.
		timeoutErr := &corekit.Error{Kind: corekit.KindHandlerTimeout, Message: "handler did not complete in time", Skill: skillName}
		writeError(w, timeoutErr, timeoutErr.HTTPStatus())
	case res := <-done:
		if res.err != nil {
			var coreErr *corekit.Error
			if errors.As(res.err, &coreErr) {
				writeError(w, coreErr, coreErr.HTTPStatus())
				return
			}
			if errors.Is(res.err, context.DeadlineExceeded) {
				timeoutErr := &corekit.Error{Kind: corekit.KindHandlerTimeout, Message: "handler did not complete in time", Skill: skillName}
				writeError(w, timeoutErr, timeoutErr.HTTPStatus())
				return
			}
			writeError(w, &corekit.Error{Kind: corekit.KindInternal, Message: "internal error"}, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, res.result)
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
	go func() {
		if s.onStop != nil {
			s.onStop()
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *corekit.Error, status int) {
	writeJSON(w, status, map[string]any{
		"kind":    err.Kind,
		"message": err.Message,
		"skill":   err.Skill,
		"detail":  err.Detail,
	})
}

// Start begins serving HTTP requests, blocking until the server stops.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server within the given context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
