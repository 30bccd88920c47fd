package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/elys-network/lockdrop/internal/contract"
	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/service"
	"github.com/elys-network/lockdrop/internal/state"
	"github.com/elys-network/lockdrop/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

const (
	senderHeader   = "X-Sender"
	maxRequestBody = 1 << 20
)

// Backend executes and answers contract messages.
type Backend interface {
	Execute(ctx context.Context, sender string, funds []sdk.Coin, raw []byte) (*service.Result, error)
	Query(ctx context.Context, raw []byte) (any, error)
	Status(ctx context.Context) service.Status
}

// Operations reads the operation log.
type Operations interface {
	RecentOperations(limit int) ([]state.OperationRecord, error)
	UnemittedOperations(limit int) ([]state.OperationRecord, error)
	OperationByID(id string) (*state.OperationRecord, error)
	OperationSummary() (*state.OperationSummary, error)
}

// Config holds the collaborators of a WebServer.
type Config struct {
	Port       string
	Backend    Backend
	Operations Operations
	Metrics    http.Handler

	// RateLimit is the sustained requests per second. Zero disables limiting.
	RateLimit float64
}

// WebServer exposes the lockdrop over HTTP.
//
// The server does not authenticate callers. The sender of an execute request
// is taken from the X-Sender header and its funds from the body as given, so
// the server must only be reachable through a gateway that verifies the
// caller's signature and the attached transfer before setting both.
type WebServer struct {
	router     *mux.Router
	port       string
	backend    Backend
	operations Operations
	metrics    http.Handler
	limiter    *rate.Limiter
	server     *http.Server
	startedAt  time.Time
}

type executeRequest struct {
	Msg   json.RawMessage `json:"msg"`
	Funds []sdk.Coin      `json:"funds,omitempty"`
}

type queryRequest struct {
	Msg json.RawMessage `json:"msg"`
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg Config) *WebServer {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	server := &WebServer{
		router:     mux.NewRouter(),
		port:       cfg.Port,
		backend:    cfg.Backend,
		operations: cfg.Operations,
		metrics:    cfg.Metrics,
		startedAt:  time.Now(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit * 2)
		if burst < 1 {
			burst = 1
		}
		server.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")
	if ws.metrics != nil {
		ws.router.Handle("/metrics", ws.metrics).Methods("GET")
	}

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/execute", ws.handleExecute).Methods("POST", "OPTIONS")
	api.HandleFunc("/query", ws.handleQuery).Methods("POST", "OPTIONS")
	if ws.operations != nil {
		api.HandleFunc("/operations", ws.handleGetOperations).Methods("GET")
		api.HandleFunc("/operations/summary", ws.handleGetOperationSummary).Methods("GET")
		api.HandleFunc("/operations/unemitted", ws.handleGetUnemittedOperations).Methods("GET")
		api.HandleFunc("/operations/{id}", ws.handleGetOperation).Methods("GET")
	}

	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
	if ws.limiter != nil {
		ws.router.Use(ws.rateLimitMiddleware)
	}
}

// Handler returns the routed handler, for embedding or tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// Start starts the web server and blocks until it stops.
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	ws.server = &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	if ws.server == nil {
		return nil
	}
	return ws.server.Shutdown(ctx)
}

// handleExecute trusts X-Sender and funds as set by the fronting gateway.
func (ws *WebServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	sender := r.Header.Get(senderHeader)
	if sender == "" {
		ws.writeErrorResponse(w, http.StatusBadRequest, "missing "+senderHeader+" header")
		return
	}

	var req executeRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}
	for _, c := range req.Funds {
		if err := c.Validate(); err != nil {
			ws.writeErrorResponse(w, http.StatusBadRequest, "invalid funds: "+err.Error())
			return
		}
	}

	result, err := ws.backend.Execute(r.Context(), sender, req.Funds, req.Msg)
	if err != nil {
		ws.writeBackendError(w, r, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, result)
}

func (ws *WebServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !ws.decodeBody(w, r, &req) {
		return
	}

	result, err := ws.backend.Query(r.Context(), req.Msg)
	if err != nil {
		ws.writeBackendError(w, r, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"data": result})
}

func (ws *WebServer) decodeBody(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, into); err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// handleHealth returns service health and runtime statistics
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	st := ws.backend.Status(r.Context())
	overallStatus := "OK"
	statusCode := http.StatusOK
	if !st.Healthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
			"uptime_seconds":   int64(time.Since(ws.startedAt).Seconds()),
		},
		"component": map[string]interface{}{
			"name":    contract.ContractName,
			"version": contract.ContractVersion,
		},
		"lockdrop_status": st,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetOperations returns the newest operations
func (ws *WebServer) handleGetOperations(w http.ResponseWriter, r *http.Request) {
	limit := operationLimit(r)
	ops, err := ws.operations.RecentOperations(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent operations")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations")
		return
	}

	response := map[string]interface{}{
		"operations": ops,
		"count":      len(ops),
		"limit":      limit,
	}
	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetUnemittedOperations lists committed operations whose event was lost.
func (ws *WebServer) handleGetUnemittedOperations(w http.ResponseWriter, r *http.Request) {
	limit := operationLimit(r)
	ops, err := ws.operations.UnemittedOperations(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get unemitted operations")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operations")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"operations": ops,
		"count":      len(ops),
		"limit":      limit,
	})
}

func operationLimit(r *http.Request) int {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}
	return limit
}

// handleGetOperation returns a specific operation by ID
func (ws *WebServer) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	op, err := ws.operations.OperationByID(id)
	if err != nil {
		webLogger.Error().Err(err).Str("operationId", id).Msg("Failed to get operation")
		ws.writeErrorResponse(w, http.StatusNotFound, "Operation not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, op)
}

func (ws *WebServer) handleGetOperationSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := ws.operations.OperationSummary()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get operation summary")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve operation summary")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, summary)
}

// statusFor maps a backend error to an HTTP status.
func statusFor(err error) int {
	switch {
	case types.IsUnauthorized(err):
		return http.StatusForbidden
	case types.IsRetryable(err):
		return http.StatusConflict
	case types.IsRegistered(err):
		return http.StatusBadRequest
	case errors.Is(err, contract.ErrNotInstantiated):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (ws *WebServer) writeBackendError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	response := map[string]interface{}{
		"error":     true,
		"message":   err.Error(),
		"timestamp": time.Now().UTC(),
	}
	if types.IsRegistered(err) {
		codespace, abciCode, _ := errorsmod.ABCIInfo(err, false)
		response["codespace"] = codespace
		response["code"] = abciCode
	}
	if code >= http.StatusInternalServerError {
		webLogger.Error().Err(err).Str("path", r.URL.Path).Msg("Backend failure")
		response["message"] = "internal error"
	}
	ws.writeJSONResponse(w, code, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+senderHeader)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects requests beyond the configured rate
func (ws *WebServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ws.limiter.Allow() {
			ws.writeErrorResponse(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Str("sender", r.Header.Get(senderHeader)).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
