// Package server exposes the engine's operational HTTP surface: health and
// readiness probes, Prometheus metrics, read-only period and settlement
// queries, and the operator's manual settle action. Wager intake and the
// agent directory live in other services; nothing here mutates them.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spinworks/draw10/internal/audit"
	"github.com/spinworks/draw10/internal/database"
	"github.com/spinworks/draw10/internal/domain"
	"github.com/spinworks/draw10/internal/logger"
	"github.com/spinworks/draw10/internal/metrics"
	"github.com/spinworks/draw10/internal/repository"
	"github.com/spinworks/draw10/internal/settle"
)

type Server struct {
	httpServer  *http.Server
	dbPool      database.Pool
	periods     repository.Period
	settlements repository.Settlement
	auditRepo   audit.Repository
	settler     settle.Service
}

// NewServer creates a new Server instance
func NewServer(
	port int,
	apiKey string,
	trustedProxies []string,
	dbPool database.Pool,
	periods repository.Period,
	settlements repository.Settlement,
	auditRepo audit.Repository,
	settler settle.Service,
) *Server {
	s := &Server{
		dbPool:      dbPool,
		periods:     periods,
		settlements: settlements,
		auditRepo:   auditRepo,
		settler:     settler,
	}

	r := chi.NewRouter()

	// Middleware stack executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/periods", func(r chi.Router) {
			r.Get("/latest", s.handleGetLatestPeriod)
			r.Get("/{periodID}", s.handleGetPeriod)
		})
		r.Get("/settlements/{periodID}", s.handleGetSettlementLog)
		r.Get("/audit", s.handleGetAuditEvents)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/settle/{periodID}", s.handleManualSettle)
		})
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.dbPool.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrMsgDatabaseUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGetLatestPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := s.periods.GetLatestPeriod(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}
	if period == nil {
		respondError(w, http.StatusNotFound, domain.ErrMsgPeriodNotFound)
		return
	}
	respondJSON(w, http.StatusOK, period)
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	id, ok := periodParam(w, r)
	if !ok {
		return
	}
	period, err := s.periods.GetPeriod(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, domain.ErrMsgPeriodNotFound)
		return
	}
	respondJSON(w, http.StatusOK, period)
}

func (s *Server) handleGetSettlementLog(w http.ResponseWriter, r *http.Request) {
	id, ok := periodParam(w, r)
	if !ok {
		return
	}
	log, err := s.settlements.GetSettlementLog(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}
	if log == nil {
		respondError(w, http.StatusNotFound, ErrMsgSettlementLogNotFound)
		return
	}
	respondJSON(w, http.StatusOK, log)
}

func (s *Server) handleGetAuditEvents(w http.ResponseWriter, r *http.Request) {
	filter := audit.Filter{Limit: DefaultAuditQueryLimit}

	if raw := r.URL.Query().Get("period"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidPeriodID)
			return
		}
		id := domain.PeriodID(v)
		filter.PeriodID = &id
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filter.EventType = &t
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxAuditQueryLimit {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		filter.Limit = v
	}

	entries, err := s.auditRepo.GetEvents(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// handleManualSettle is the operator intervention path: it clears any
// terminal failure record for the period and runs settlement once,
// synchronously. The action lands in the audit trail via the settlement
// lifecycle events it produces.
func (s *Server) handleManualSettle(w http.ResponseWriter, r *http.Request) {
	id, ok := periodParam(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)
	log.Info(LogMsgManualSettleRequested, "period", id)

	if err := s.settlements.ClearFailedSettlement(ctx, id); err != nil {
		respondError(w, http.StatusInternalServerError, ErrMsgInternal)
		return
	}

	summary, err := s.settler.Settle(ctx, id)
	if err != nil {
		log.Error(LogMsgManualSettleFailed, "period", id, "error", err)
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func periodParam(w http.ResponseWriter, r *http.Request) (domain.PeriodID, bool) {
	raw := chi.URLParam(r, "periodID")
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidPeriodID)
		return 0, false
	}
	return domain.PeriodID(v), true
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Health checks and metrics scrapes would drown the log
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
