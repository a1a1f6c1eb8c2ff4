package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project

    "github.com/iliyamo/cinema-booking-flow/internal/repository"
)

// HealthHandler reports liveness and whether the booking-state backend
// accepts writes.  The service stays healthy when it does not; bookings
// then simply are not carried between steps.
type HealthHandler struct {
    Backend repository.StateBackend
}

// Health answers 200 with {"status":"ok","storage":bool}.
func (h *HealthHandler) Health(c echo.Context) error {
    storage := h.Backend != nil && h.Backend.Probe(c.Request().Context()) == nil
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "storage": storage})
}
