package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/config"
	"github.com/linkme-io/linkme-backend/database"
	"github.com/linkme-io/linkme-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// Deps are the optional collaborators of the HTTP layer. A nil Assets disables
// QR codes and uploads; a nil Geo leaves visitor locations empty.
type Deps struct {
	Config map[string]string
	Assets services.AssetStore
	Geo    services.GeoResolver
}

func NewServer(db database.Database, deps Deps) (Server, error) {
	c := deps.Config
	if c == nil {
		c = config.New()
	}
	if config.GetString(c, "JWT_SECRET", "") == "" {
		return Server{}, fmt.Errorf("JWT_SECRET must be set")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port)

	startupTime := time.Now()
	deps.Config = c
	handler := newRouter(db, deps, withStartupTime(startupTime))

	readTimeout := config.GetSeconds(c, "READ_TIMEOUT_SECONDS", 180*time.Second)
	writeTimeout := config.GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second)
	idleTimeout := config.GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second)

	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime time.Time
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(db database.Database, deps Deps, opts ...func(*router)) *chi.Mux {
	var rt router
	for _, opt := range opts {
		opt(&rt)
	}

	rc := responderConfig{
		exposeInternal: config.GetString(deps.Config, "APP_ENV", "production") == "development",
		webhookURL:     config.GetString(deps.Config, "ERROR_WEBHOOK_URL", ""),
	}

	origins := config.GetList(deps.Config, "ACCEPTED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers := initializeHandlers(db, deps, rc, rt.startupTime)
	auth := newAuthMiddleware(config.GetString(deps.Config, "JWT_SECRET", ""), db.UserRepo(), rc)

	chiRouter.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		setupPublicRoutes(r, handlers)
		setupAuthenticatedRoutes(r, handlers, auth)
		setupAdminRoutes(r, handlers, auth)
	})

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
