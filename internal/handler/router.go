package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	AllowedOrigins []string
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// UploadLimit wraps every route that accepts an upload.
	UploadLimit mux.MiddlewareFunc
	// Middleware runs on every matched route, in order.
	Middleware []mux.MiddlewareFunc
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(presenter *Presenter, statementHandler *StatementHandler, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(opts.Middleware...)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"statement-reader"}`))
	}).Methods(http.MethodGet)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	limit := opts.UploadLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	// Page
	router.HandleFunc("/", presenter.Index).Methods(http.MethodGet)
	router.Handle("/", limit(http.HandlerFunc(presenter.Upload))).Methods(http.MethodPost)

	// API. Registered on the root router so a wrong method answers 405.
	router.Handle("/api/v1/statements/extract", limit(http.HandlerFunc(statementHandler.Extract))).Methods(http.MethodPost)
	router.Handle("/api/v1/statements/inspect", limit(http.HandlerFunc(statementHandler.Inspect))).Methods(http.MethodPost)
	router.Handle("/api/v1/statements/export", limit(http.HandlerFunc(statementHandler.Export))).Methods(http.MethodPost)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			RequestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
