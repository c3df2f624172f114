package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"incident-pipeline/internal/handlers"
	"incident-pipeline/internal/service"
	"incident-pipeline/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	IncidentService service.IncidentService
	// Runs is optional; without it /runs is not served.
	Runs storage.RunStore
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(Recoverer)
	r.Use(CORS)

	routes := handlers.NewIncidentHandler(deps.IncidentService).Routes()
	routes = append(routes, handlers.NewHealthHandler(deps.IncidentService).Routes()...)
	if deps.Runs != nil {
		routes = append(routes, handlers.NewRunsHandler(deps.Runs).Routes()...)
	}
	for _, rt := range routes {
		r.Method(rt.Method, rt.Path, handlers.Serve(rt.Handle))
	}

	r.MethodNotAllowed(handlers.Serve(func(*http.Request) handlers.Result {
		return handlers.Fail(service.ErrMethodNotAllowed)
	}))
	r.NotFound(handlers.Serve(func(*http.Request) handlers.Result {
		return handlers.Fail(service.ErrNotFound)
	}))

	return r
}
