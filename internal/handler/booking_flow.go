package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/cinema-booking-flow/internal/booking"
    "github.com/iliyamo/cinema-booking-flow/internal/middleware"
    "github.com/iliyamo/cinema-booking-flow/internal/model"
    "github.com/iliyamo/cinema-booking-flow/internal/repository"
    "github.com/iliyamo/cinema-booking-flow/internal/service"
    "github.com/iliyamo/cinema-booking-flow/internal/validation"
)

// BookingHandler serves the steps of the booking flow.  Every request opens
// the caller's booking.Store; when the backend is unavailable the step
// guards are skipped and each step works from the request alone.
type BookingHandler struct {
    Movies    *repository.MovieRepo
    Backend   repository.StateBackend
    Layout    repository.SeatLayout
    Rules     validation.Rules
    Pricing   booking.Pricing
    Publisher service.BookingPublisher
}

// NewBookingHandler constructs a BookingHandler.  movies must be non-nil; a
// nil backend disables persistence and a nil publisher drops events.
func NewBookingHandler(movies *repository.MovieRepo, backend repository.StateBackend, layout repository.SeatLayout, rules validation.Rules, pricing booking.Pricing, pub service.BookingPublisher) *BookingHandler {
    if movies == nil {
        panic("nil movie repository passed to NewBookingHandler")
    }
    if pub == nil {
        pub = service.NopPublisher{}
    }
    return &BookingHandler{Movies: movies, Backend: backend, Layout: layout, Rules: rules, Pricing: pricing, Publisher: pub}
}

// countValue accepts a ticket quantity given either as a JSON number or a
// JSON string, keeping the raw text for validation.
type countValue string

func (v *countValue) UnmarshalJSON(b []byte) error {
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *v = countValue(s)
        return nil
    }
    if string(b) == "null" {
        *v = ""
        return nil
    }
    *v = countValue(b)
    return nil
}

type selectMovieRequest struct {
    Title string `json:"title" form:"movie-title"`
}

type showtimeRequest struct {
    Movie string `json:"movie" form:"movie-title"`
    Date  string `json:"date" form:"movieDate"`
    Time  string `json:"time" form:"movieTime"`
}

type ticketsRequest struct {
    Adult  countValue `json:"adult" form:"adultTickets"`
    Child  countValue `json:"child" form:"childTickets"`
    Senior countValue `json:"senior" form:"seniorTickets"`
}

type seatsRequest struct {
    Seats   []string `json:"seats" form:"seat"`
    Tickets int      `json:"tickets" form:"tickets"`
}

type seatInputRequest struct {
    Value string `json:"value" form:"value"`
}

// open binds the request to its session's store and loads the state.
func (h *BookingHandler) open(c echo.Context) (*booking.Store, booking.State) {
    ctx := c.Request().Context()
    s := booking.Open(ctx, h.Backend, middleware.SessionID(c), log.Logger)
    return s, s.LoadState(ctx)
}

// redirectFor returns the path of the step whose output is missing for
// step, or false when the step may render.
func redirectFor(step booking.Step, s *booking.Store, st booking.State) (string, bool) {
    if !s.IsAvailable() {
        return "", false
    }
    prev, missing := booking.Prerequisite(step, st)
    if !missing {
        return "", false
    }
    return booking.Paths[prev], true
}

// SelectMovie handles POST /v1/booking/movie.  Choosing a different movie
// discards every later step.
func (h *BookingHandler) SelectMovie(c echo.Context) error {
    var req selectMovieRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    title := strings.TrimSpace(req.Title)
    if title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }
    ctx := c.Request().Context()
    movie, err := h.Movies.GetByTitle(ctx, title)
    if err != nil {
        if errors.Is(err, repository.ErrMovieNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog error"})
    }
    s, _ := h.open(c)
    s.SaveMovie(ctx, movie.Title)
    return c.JSON(http.StatusOK, echo.Map{
        "movie":             movie,
        "storage_available": s.IsAvailable(),
        "next":              booking.Paths[booking.StepTime],
    })
}

// movieFor resolves the movie the step works on: the stored one, or the
// one named by the request when nothing is stored.
func (h *BookingHandler) movieFor(c echo.Context, st booking.State, fromRequest string) (model.Movie, error) {
    title := st.MovieTitle
    if title == "" {
        title = strings.TrimSpace(fromRequest)
    }
    return h.Movies.GetByTitle(c.Request().Context(), title)
}

// GetShowtimes handles GET /v1/booking/time and lists the showtimes of the
// selected movie along with any previously chosen one.
func (h *BookingHandler) GetShowtimes(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepTime, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    movie, err := h.movieFor(c, st, c.QueryParam("movie"))
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "movie":     movie.Title,
        "showtimes": movie.Showtimes,
        "selected":  model.Showtime{Date: st.ShowDate, Time: st.ShowTime},
    })
}

// SelectShowtime handles POST /v1/booking/time.
func (h *BookingHandler) SelectShowtime(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepTime, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    var req showtimeRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    movie, err := h.movieFor(c, st, req.Movie)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
    }
    ctx := c.Request().Context()
    show, err := h.Movies.FindShowtime(ctx, movie.Title, strings.TrimSpace(req.Date), strings.TrimSpace(req.Time))
    if err != nil {
        if errors.Is(err, repository.ErrShowtimeNotFound) {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "showtime not found", "submit_enabled": false})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog error"})
    }
    s.SaveShowtime(ctx, show.Date, show.Time)
    return c.JSON(http.StatusOK, echo.Map{
        "movie":    movie.Title,
        "showtime": show,
        "next":     booking.Paths[booking.StepTickets],
    })
}

// GetTickets handles GET /v1/booking/tickets.
func (h *BookingHandler) GetTickets(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepTickets, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "movie":       st.MovieTitle,
        "date":        st.ShowDate,
        "time":        st.ShowTime,
        "tickets":     st.Tickets,
        "max_tickets": h.Rules.MaxTickets,
        "prices": echo.Map{
            "adult_cents":  h.Pricing.AdultCents,
            "child_cents":  h.Pricing.ChildCents,
            "senior_cents": h.Pricing.SeniorCents,
        },
        "quote":          h.Pricing.Quote(st.Tickets),
        "submit_enabled": h.Rules.ValidTickets(validation.TicketInput{Counts: st.Tickets, Consistent: true}),
    })
}

// SelectTickets handles POST /v1/booking/tickets.  Invalid quantities answer
// 422 with the hint shown next to the inputs.  A selection smaller than the
// seats already chosen discards the seats.
func (h *BookingHandler) SelectTickets(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepTickets, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    var req ticketsRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    in := validation.ParseTicketCounts(string(req.Adult), string(req.Child), string(req.Senior))
    if !h.Rules.ValidTickets(in) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":          h.Rules.TicketHint(in),
            "tickets":        in.Counts,
            "submit_enabled": false,
        })
    }
    ctx := c.Request().Context()
    s.SaveTickets(ctx, in.Counts)
    if st.Seats.Len() > in.Counts.Total() {
        s.SaveSeats(ctx, nil)
        s.DestroyPrefixed(ctx, booking.SeatFormPrefix)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "tickets": in.Counts,
        "quote":   h.Pricing.Quote(in.Counts),
        "next":    booking.Paths[booking.StepSeats],
    })
}

// GetSeats handles GET /v1/booking/seats.  The seat map comes back with the
// in-progress checkbox state restored from the seat form snapshots.
func (h *BookingHandler) GetSeats(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepSeats, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    form := booking.NewSeatForm(h.Layout.Seats())
    s.RestoreInputs(c.Request().Context(), booking.SeatFormPrefix, form)
    selected := st.Seats
    if selected == nil {
        selected = booking.NewSeatSelection()
    }
    return c.JSON(http.StatusOK, echo.Map{
        "tickets":        st.Tickets.Total(),
        "rows":           h.Layout.Rows,
        "cols":           h.Layout.Cols,
        "seats":          form.Inputs,
        "selected":       selected,
        "submit_enabled": validation.IsSeatSelectionValid(selected.Len(), st.Tickets.Total()),
    })
}

// ticketLimit is the number of seats the session may select.  Without a
// store it falls back to what the request claims, capped by the rules.
func (h *BookingHandler) ticketLimit(s *booking.Store, st booking.State, claimed int) int {
    if s.IsAvailable() {
        return st.Tickets.Total()
    }
    if claimed > 0 && claimed <= h.Rules.MaxTickets {
        return claimed
    }
    return h.Rules.MaxTickets
}

// UpdateSeatInput handles PUT /v1/booking/seats/inputs/:id, the snapshot of
// one seat checkbox as the user toggles it.  The value is "on" or "".
// Checking a seat beyond the ticket count is refused with 422.
func (h *BookingHandler) UpdateSeatInput(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepSeats, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    seat, ok := h.Layout.Lookup(c.Param("id"))
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
    }
    var req seatInputRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Value != "" && req.Value != booking.Checked {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": `value must be "on" or empty`})
    }
    sel := st.Seats
    if sel == nil {
        sel = booking.NewSeatSelection()
    }
    limit := h.ticketLimit(s, st, 0)
    if req.Value == booking.Checked && !sel.Has(seat.ID) && sel.Len() >= limit {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":          "no more seats than tickets can be selected",
            "tickets":        limit,
            "selected":       sel,
            "submit_enabled": validation.IsSeatSelectionValid(sel.Len(), limit),
        })
    }
    ctx := c.Request().Context()
    s.SnapshotInput(ctx, booking.SeatFormPrefix, seat.ID, model.InputRecord{
        ID:    seat.ID,
        Name:  seat.Label,
        Type:  "checkbox",
        Value: req.Value,
    })
    if req.Value == booking.Checked {
        sel.Add(seat.ID, seat.Label)
    } else {
        sel.Remove(seat.ID)
    }
    s.SaveSeats(ctx, sel)
    return c.JSON(http.StatusOK, echo.Map{
        "seat":           seat,
        "selected":       sel,
        "submit_enabled": validation.IsSeatSelectionValid(sel.Len(), limit),
    })
}

// SelectSeats handles POST /v1/booking/seats with the full selection in
// display order.  It replaces both the stored selection and the seat form
// snapshots.
func (h *BookingHandler) SelectSeats(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepSeats, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    var req seatsRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    sel := booking.NewSeatSelection()
    for _, id := range req.Seats {
        seat, ok := h.Layout.Lookup(id)
        if !ok {
            return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown seat", "seat": id, "submit_enabled": false})
        }
        sel.Add(seat.ID, seat.Label)
    }
    limit := h.ticketLimit(s, st, req.Tickets)
    if !validation.IsSeatSelectionValid(sel.Len(), limit) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":          "select between 1 and the number of tickets",
            "tickets":        limit,
            "selected":       sel,
            "submit_enabled": false,
        })
    }
    ctx := c.Request().Context()
    s.SaveSeats(ctx, sel)
    s.DestroyPrefixed(ctx, booking.SeatFormPrefix)
    for _, seat := range sel.Seats() {
        s.SnapshotInput(ctx, booking.SeatFormPrefix, seat.ID, model.InputRecord{
            ID:    seat.ID,
            Name:  seat.Label,
            Type:  "checkbox",
            Value: booking.Checked,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{
        "selected": sel,
        "next":     booking.Paths[booking.StepPayment],
    })
}
