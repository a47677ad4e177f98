package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/issue-tracker/internal/pkg/httputil"
	"github.com/ignite/issue-tracker/internal/pkg/logger"
	"github.com/ignite/issue-tracker/internal/service/issue"
)

const maxBodyBytes = 1 << 20

// SetupRoutes configures the issue API and health routes.
func SetupRoutes(h *Handlers, hc *HealthChecker, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	if allowsAnyOrigin(allowedOrigins) {
		r.Use(wildcardOrigin)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.Error(w, http.StatusNotFound, string(issue.CodeNotFound), "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httputil.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", req.Method+" is not allowed here")
	})

	if hc != nil {
		r.Get("/health", hc.HandleHealth)
		r.Get("/health/ready", hc.HandleReadiness)
	}

	r.Route("/issues", func(r chi.Router) {
		r.Post("/", serveHTTP(h.Create))
		r.Get("/", serveHTTP(h.List))
		r.Get("/{id}", serveHTTP(h.Get))
		r.Put("/{id}", serveHTTP(h.Update))
		r.Delete("/{id}", serveHTTP(h.Delete))
	})

	return r
}

// serveHTTP adapts an Operation to net/http.
func serveHTTP(op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, string(issue.CodeInvalidBody), "request body could not be read")
			return
		}

		req := Request{
			PathParams:  map[string]string{},
			QueryParams: map[string]string{},
			Body:        body,
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				req.PathParams[key] = rctx.URLParams.Values[i]
			}
		}
		for key, vals := range r.URL.Query() {
			if len(vals) > 0 {
				req.QueryParams[key] = vals[0]
			}
		}

		resp := op(r.Context(), req)
		httputil.JSON(w, resp.StatusCode, resp.Body)
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// wildcardOrigin sets the permissive origin header on every response, not
// only on requests that carry an Origin header.
func wildcardOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
