// Package http exposes the training service over REST and websockets.
// Handlers are methods on *Server grouped by resource, one file per group.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"incident-training-service/internal/app"
	"incident-training-service/internal/logger"
)

// Services bundles the use cases the HTTP layer depends on.
type Services struct {
	Scenarios *app.ScenarioService
	Directory *app.DirectoryService
	Incidents *app.IncidentService
	Reports   *app.ReportService
	Feeds     *app.FeedService
}

// Server holds the shared dependencies of every handler.
type Server struct {
	svc Services
	ws  *WSHandler
	log *logger.Logger
}

// NewServer wires the chi router. The returned handler is ready for http.Server.
func NewServer(svc Services, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		svc: svc,
		ws:  NewWSHandler(svc.Incidents, svc.Feeds, log),
		log: log,
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// Websocket connections are long-lived, so they stay outside the timeout group.
	r.Get("/ws", s.ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/scenarios", func(r chi.Router) {
			r.Post("/", s.handleCreateScenario)
			r.Get("/", s.handleListScenarios)
			r.Get("/{scenarioID}", s.handleGetScenario)
		})

		r.Post("/roles", s.handleCreateRole)
		r.Get("/roles", s.handleListRoles)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/", s.handleListUsers)
			r.Get("/{userID}/results", s.handleUserResults)
		})

		r.Route("/incidents", func(r chi.Router) {
			r.Post("/", s.handleStartIncident)
			r.Get("/", s.handleListIncidents)
			r.Route("/{incidentID}", func(r chi.Router) {
				r.Get("/", s.handleGetIncident)
				r.Post("/complete", s.handleCompleteIncident)
				r.Post("/responses", s.handleRecordResponse)
				r.Get("/results", s.handleIncidentResults)
			})
		})

		r.Get("/results", s.handleResults)
	})

	return r
}
