package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-booking-flow/internal/handler" // handlers implementing each page of the flow
)

// RegisterRoutes registers routes that need neither a session nor caching.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	// Load balancers and monitoring poll this endpoint.
	e.GET("/healthz", h.Health)
}

// RegisterPublic registers the movie listing.  The listing is the same for
// every caller, so it is the one route wrapped by the response cache.
func RegisterPublic(e *echo.Echo, m *handler.MovieHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/movies", m.ListMovies, cache)
	e.GET("/v1/movies/:id", m.GetMovie, cache)
}
