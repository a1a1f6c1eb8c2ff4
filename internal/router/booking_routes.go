package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-flow/internal/handler"
)

// RegisterBooking registers the booking flow under /v1/booking.  mws run
// before every handler and must include the session middleware, since each
// handler reads its state from the session's namespace.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1/booking", mws...)

	g.GET("", h.Summary)
	g.DELETE("", h.Abandon)

	g.POST("/movie", h.SelectMovie)

	g.GET("/time", h.GetShowtimes)
	g.POST("/time", h.SelectShowtime)

	g.GET("/tickets", h.GetTickets)
	g.POST("/tickets", h.SelectTickets)

	g.GET("/seats", h.GetSeats)
	g.POST("/seats", h.SelectSeats)
	g.PUT("/seats/inputs/:id", h.UpdateSeatInput)

	g.GET("/payment", h.GetPayment)
	g.POST("/payment/validate", h.ValidatePayment)
	g.POST("/confirm", h.Confirm)
}
