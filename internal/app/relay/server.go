package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"inspectd/internal/app/bridge"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/app/monitor"
	"inspectd/internal/app/worker"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

const (
	// HeaderAPIKey carries the shared relay key
	HeaderAPIKey = "X-Api-Key"
	// HeaderRequestID carries the id assigned to every request
	HeaderRequestID = "X-Request-Id"
)

type requestIDKey struct{}

// IngestResponse is returned by POST /logs
type IngestResponse struct {
	RequestID string   `json:"requestId"`
	Accepted  int      `json:"accepted"`
	Rejected  int      `json:"rejected"`
	Errors    []string `json:"errors,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status        string        `json:"status"`
	Uptime        string        `json:"uptime"`
	UptimeSeconds float64       `json:"uptimeSeconds"`
	Connected     bool          `json:"connected"`
	Process       monitor.Stats `json:"process"`
}

// StatusResponse is returned by GET /status
type StatusResponse struct {
	Status
	Target        string  `json:"target"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	RequestID string `json:"requestId"`
	Error     string `json:"error"`
}

// Server is the HTTP ingress of the relay. It accepts batches of JSON
// messages and hands them to the forwarder.
type Server struct {
	address   string
	target    string
	key       string
	started   time.Time
	forwarder Forwarder
	monitor   monitor.Monitor
	workers   worker.Pool
	metrics   metrics.Recorder
	listener  net.Listener
	server    *http.Server
	log       logger.Logger
}

// NewServer creates the relay HTTP server
func NewServer(cfg *config.Config, fwd Forwarder, mon monitor.Monitor, workers worker.Pool, rec metrics.Recorder, log logger.Logger) *Server {
	return &Server{
		address:   cfg.Relay.Address,
		target:    cfg.Relay.Target,
		key:       cfg.Relay.Key,
		started:   time.Now(),
		forwarder: fwd,
		monitor:   mon,
		workers:   workers,
		metrics:   rec,
		log:       log.WithComponent("RELAY"),
	}
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.authorize)

		r.Post("/logs", s.handleLogs)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Start listens on the configured address and serves in the background
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", errors.ErrFailedToListen, s.address, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.log.Info().Msgf("Relay listening on %s, forwarding to %s", ln.Addr(), s.target)

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("Relay server failed")
		}
	}()

	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.address
}

// Stop drains in-flight requests until ctx ends
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	return s.server.Shutdown(ctx)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())

	if err := s.workers.Acquire(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{RequestID: id, Error: errors.ErrServerBusy.Error()})
		return
	}
	defer s.workers.Release()

	messages, err := readMessages(http.MaxBytesReader(w, r.Body, config.MaxRequestBody))
	if err != nil {
		s.log.Debug().Err(err).Msgf("Rejected request %s", id)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{RequestID: id, Error: err.Error()})

		return
	}

	resp := IngestResponse{RequestID: id}
	invalid := 0

	for i, raw := range messages {
		text := string(raw)

		if _, err := bridge.Parse(text, ""); err != nil {
			invalid++
			resp.Rejected++
			resp.Errors = append(resp.Errors, fmt.Sprintf("message %d: %v", i, err))

			continue
		}

		// The forwarder counts what reaches it

		if s.forwarder.Forward(text) {
			resp.Accepted++
		} else {
			resp.Rejected++
			resp.Errors = append(resp.Errors, fmt.Sprintf("message %d: %v", i, errors.ErrForwarderStopped))
		}
	}

	if invalid > 0 {
		s.metrics.RelayRejected(invalid)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.started)

	stats, err := s.monitor.Self(r.Context())
	if err != nil {
		s.log.Debug().Err(err).Msg("Failed to sample process")
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Uptime:        uptime.Truncate(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Connected:     s.forwarder.Status().Connected,
		Process:       stats,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:        s.forwarder.Status(),
		Target:        s.target,
		UptimeSeconds: time.Since(s.started).Seconds(),
	})
}

// authorize checks the shared key when one is configured
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.key == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(HeaderAPIKey)
		if key == "" {
			key = r.URL.Query().Get("key")
		}

		if key != s.key {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{
				RequestID: RequestID(r.Context()),
				Error:     errors.ErrUnauthorized.Error(),
			})

			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestID tags every request with a fresh id
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()

		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestID returns the id of the request carried by ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// readMessages accepts a single message object, {"messages": [...]} or a
// bare array and returns each message as compact JSON
func readMessages(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidBody, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.ErrEmptyBatch
	}

	var messages []json.RawMessage

	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidBody, err)
		}
	case '{':
		var batch struct {
			Messages []json.RawMessage `json:"messages"`
		}

		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidBody, err)
		}

		if batch.Messages != nil {
			messages = batch.Messages
		} else {
			messages = []json.RawMessage{data}
		}
	default:
		return nil, errors.ErrInvalidBody
	}

	if len(messages) == 0 {
		return nil, errors.ErrEmptyBatch
	}

	for i, m := range messages {
		var buf bytes.Buffer
		if err := json.Compact(&buf, m); err == nil {
			messages[i] = buf.Bytes()
		}
	}

	return messages, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(v)
}
