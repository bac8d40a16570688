// Package http is the JSON boundary of the ledger: routing, payload
// validation and the mapping of errors onto status codes.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/middleware/ratelimit"
	"ledger/internal/middleware/security"
	"ledger/internal/middleware/trace"
)

// Ledger is what the boundary needs from the service layer.
type Ledger interface {
	List(ctx context.Context) ([]core.Transaction, error)
	Append(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	GlobalSummary(ctx context.Context) (core.Totals, error)
	CategorySummary(ctx context.Context) (core.CategorySummary, error)
	CategoryCatalog(ctx context.Context) (core.CategoryCatalog, error)
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	CORSAllowedOrigins []string
}

type Server struct {
	http.Server
	ledger   Ledger
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
}

// NewServer wires routes and middleware. Call Shutdown to release the rate limiter.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	detector := security.NewDetector()
	s := &Server{
		ledger:   ledger,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		detector: detector,
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	mux := http.NewServeMux()

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)
	transactions := methods{
		http.MethodGet:  http.HandlerFunc(s.handleListTransactions),
		http.MethodPost: limited(http.HandlerFunc(s.handleCreateTransaction)),
	}
	mux.Handle("/transactions/{$}", transactions)
	mux.Handle("/transactions", transactions)
	mux.Handle("/transactions/summary", methods{http.MethodGet: http.HandlerFunc(s.handleSummary)})
	mux.Handle("/transactions/summary_by_category", methods{http.MethodGet: http.HandlerFunc(s.handleSummaryByCategory)})
	mux.Handle("/transactions/categories", methods{http.MethodGet: http.HandlerFunc(s.handleCategories)})
	mux.Handle("/health", methods{http.MethodGet: http.HandlerFunc(handleHealth)})
	mux.Handle("/ready", methods{http.MethodGet: http.HandlerFunc(s.handleReady)})
	mux.HandleFunc("/", handleNotFound)

	cors := security.NewCORS(security.CORSConfig{AllowedOrigins: opts.CORSAllowedOrigins})
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	// Outermost first.
	return chain(mux,
		applog.Middleware(s.logger),
		applog.ComponentMiddleware(applog.ComponentHTTP),
		s.tracer.Middleware,
		recoverMiddleware,
		headers.Middleware,
		cors.Middleware,
		s.flagSuspicious,
	)
}

// Shutdown stops accepting requests, drains in-flight ones and stops the limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Metrics exposes request counters for logging on shutdown.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}

// methods dispatches on the request method and answers 405 otherwise.
// HEAD is served by the GET handler.
type methods map[string]http.Handler

func (m methods) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	if method == http.MethodHead {
		method = http.MethodGet
	}
	if h, ok := m[method]; ok {
		h.ServeHTTP(w, r)
		return
	}

	allowed := make([]string, 0, len(m))
	for _, name := range []string{http.MethodGet, http.MethodPost} {
		if _, ok := m[name]; ok {
			allowed = append(allowed, name)
		}
	}
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeHTTPError(w, r, http.StatusMethodNotAllowed)
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// recoverMiddleware turns a handler panic into the generic 500 body.
// A response that was already started is left as is; the panic is only logged.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Handler panicked",
				"panic", fmt.Sprint(rec),
				"response_started", tw.written,
				"stack", string(debug.Stack()))
			if !tw.written {
				writeInternalError(w, r, "recover", fmt.Errorf("%v", rec))
			}
		}()
		next.ServeHTTP(tw, r)
	})
}

// trackingWriter records whether a handler has started its response.
type trackingWriter struct {
	http.ResponseWriter
	written bool
}

func (tw *trackingWriter) WriteHeader(code int) {
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	tw.written = true
	return tw.ResponseWriter.Write(b)
}

func (tw *trackingWriter) Unwrap() http.ResponseWriter { return tw.ResponseWriter }

// flagSuspicious logs probing requests; they still get a normal answer.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WithComponent(applog.ComponentSecurity).WarnContext(r.Context(),
				"Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
		"Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeHTTPError(w, r, http.StatusTooManyRequests)
}
