// Package handler exposes the HTTP handlers of the booking flow.  This file
// defines the public movie listing, the first page of the flow.

package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-flow/internal/model"
    "github.com/iliyamo/cinema-booking-flow/internal/repository"
)

// MovieHandler serves the catalog.  Its output does not depend on the
// session, so the route can sit behind the response cache.
type MovieHandler struct {
    Movies *repository.MovieRepo
}

// ListMovies handles GET /v1/movies?genre=&rating=.  An empty or "all"
// filter matches everything.  When nothing matches, "message" carries the
// no-results text and "movies" is an empty array.
func (h *MovieHandler) ListMovies(c echo.Context) error {
    f := repository.MovieFilter{Genre: c.QueryParam("genre"), Rating: c.QueryParam("rating")}
    movies := h.Movies.List(c.Request().Context(), f)
    if movies == nil {
        movies = []model.Movie{}
    }
    resp := echo.Map{
        "movies":  movies,
        "genres":  h.Movies.Genres(),
        "ratings": h.Movies.Ratings(),
    }
    if len(movies) == 0 {
        resp["message"] = repository.NoMoviesMessage
    }
    return c.JSON(http.StatusOK, resp)
}

// GetMovie handles GET /v1/movies/:id.
func (h *MovieHandler) GetMovie(c echo.Context) error {
    m, err := h.Movies.GetByID(c.Request().Context(), c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog error"})
    }
    return c.JSON(http.StatusOK, m)
}
