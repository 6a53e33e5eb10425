package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/forgo/jobs/api/docs"
	"github.com/forgo/jobs/api/internal/handler"
	"github.com/forgo/jobs/api/internal/middleware"
	"github.com/forgo/jobs/api/internal/model"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/swaggo/swag"
)

// APIPrefix is where every JSON route is mounted
const APIPrefix = "/api/v1"

// AuthService issues tokens for the auth routes and validates them for the
// job routes.
type AuthService interface {
	handler.AuthService
	middleware.AuthService
}

// Options carries everything the router dispatches to
type Options struct {
	Auth        AuthService
	Jobs        handler.JobService
	DB          handler.Pinger
	Limiter     middleware.Limiter
	Idempotency *middleware.IdempotencyStore

	AllowedOrigins []string
	TrustProxy     bool
	IsDevelopment  bool
}

// New builds the routes and wraps them in the global middleware chain
func New(opts Options) http.Handler {
	mux := http.NewServeMux()

	root := handler.NewRootHandler(opts.DB)
	authHandler := handler.NewAuthHandler(opts.Auth)
	jobHandler := handler.NewJobHandler(opts.Jobs)

	authMiddleware := middleware.Auth(opts.Auth)
	idempotency := middleware.Idempotency(opts.Idempotency)

	// Landing, health and docs
	mux.HandleFunc("GET /{$}", root.Landing)
	mux.HandleFunc("GET /health", root.Health)
	mux.HandleFunc("GET /api-docs/doc.json", swaggerDoc)
	mux.Handle("GET /api-docs", http.RedirectHandler("/api-docs/index.html", http.StatusMovedPermanently))
	mux.Handle("GET /api-docs/{$}", http.RedirectHandler("/api-docs/index.html", http.StatusMovedPermanently))
	mux.Handle("GET /api-docs/", httpSwagger.Handler(httpSwagger.URL("/api-docs/doc.json")))

	// Auth endpoints
	mux.HandleFunc("POST "+APIPrefix+"/auth/register", authHandler.Register)
	mux.HandleFunc("POST "+APIPrefix+"/auth/login", authHandler.Login)

	// Job endpoints, all authenticated
	mux.Handle("GET "+APIPrefix+"/jobs", authMiddleware(http.HandlerFunc(jobHandler.List)))
	mux.Handle("POST "+APIPrefix+"/jobs", authMiddleware(idempotency(http.HandlerFunc(jobHandler.Create))))
	mux.Handle("GET "+APIPrefix+"/jobs/{id}", authMiddleware(http.HandlerFunc(jobHandler.Get)))
	mux.Handle("PATCH "+APIPrefix+"/jobs/{id}", authMiddleware(http.HandlerFunc(jobHandler.Update)))
	mux.Handle("DELETE "+APIPrefix+"/jobs/{id}", authMiddleware(http.HandlerFunc(jobHandler.Delete)))

	// Known paths answer other methods with 405 instead of falling through to 404
	mux.Handle("/health", methodNotAllowed(http.MethodGet))
	mux.Handle(APIPrefix+"/auth/register", methodNotAllowed(http.MethodPost))
	mux.Handle(APIPrefix+"/auth/login", methodNotAllowed(http.MethodPost))
	mux.Handle(APIPrefix+"/jobs", methodNotAllowed(http.MethodGet, http.MethodPost))
	mux.Handle(APIPrefix+"/jobs/{id}", methodNotAllowed(http.MethodGet, http.MethodPatch, http.MethodDelete))

	mux.HandleFunc("/", root.NotFound)

	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.ClientIP(opts.TrustProxy),
		middleware.Logger,
		middleware.SecureHeaders(middleware.SecureHeadersConfig{IsDevelopment: opts.IsDevelopment}),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Compress,
		middleware.Recovery,
		middleware.RateLimit(opts.Limiter),
		middleware.Sanitize(),
	)
}

func methodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		model.NewMethodNotAllowedError(r.Method).WriteJSON(w)
	})
}

func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		slog.Error("failed to render api docs", slog.Any("error", err))
		model.NewInternalError().WriteJSON(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
