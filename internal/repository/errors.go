// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrMovieNotFound indicates that a booking step referenced a
// title the catalog does not offer, while ErrBackendUnavailable signals
// that the state backend cannot currently be written to.
package repository

import "errors"

// ErrMovieNotFound is returned when a title is not present in the catalog.
// Handlers should translate this into an HTTP 404 response.
var ErrMovieNotFound = errors.New("movie not found")

// ErrShowtimeNotFound is returned when a date/time pair is not offered
// for the selected movie. Handlers should translate this into an HTTP 422
// response.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrKeyNotFound is returned by state backends when a key is unset.
var ErrKeyNotFound = errors.New("state key not found")

// ErrBackendUnavailable is returned when no state backend is configured.
var ErrBackendUnavailable = errors.New("state backend unavailable")
