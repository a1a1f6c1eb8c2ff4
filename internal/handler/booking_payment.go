package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog/log"

    "github.com/iliyamo/cinema-booking-flow/internal/booking"
    "github.com/iliyamo/cinema-booking-flow/internal/middleware"
    "github.com/iliyamo/cinema-booking-flow/internal/queue"
    "github.com/iliyamo/cinema-booking-flow/internal/validation"
)

const publishTimeout = 5 * time.Second

// orderView is the booking as the payment and summary pages print it.
func (h *BookingHandler) orderView(st booking.State) echo.Map {
    return echo.Map{
        "movie":   st.MovieTitle,
        "date":    st.ShowDate,
        "time":    st.ShowTime,
        "tickets": st.Tickets,
        "seats":   st.Seats.Labels(),
        "quote":   h.Pricing.Quote(st.Tickets),
    }
}

// checkPayment validates p through echo's validator and returns the
// annotations to show along with whether submission is allowed.
func (h *BookingHandler) checkPayment(c echo.Context, p validation.PaymentFields) (map[validation.Field]bool, []validation.Annotation, bool) {
    invalid := validation.FieldErrors(c.Validate(&p))
    ann := validation.NewAnnotations(h.Rules)
    ok := ann.Update(p) && len(invalid) == 0
    visible := ann.Visible()
    if visible == nil {
        visible = []validation.Annotation{}
    }
    return invalid, visible, ok
}

// GetPayment handles GET /v1/booking/payment: the order summary and the
// payment form with every annotation hidden and submission disabled.
func (h *BookingHandler) GetPayment(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepPayment, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "order":          h.orderView(st),
        "fields":         validation.PaymentFieldOrder,
        "annotations":    validation.NewAnnotations(h.Rules).List(),
        "submit_enabled": false,
    })
}

// ValidatePayment handles POST /v1/booking/payment/validate, the live
// check run as the user types.  Invalid input answers 422 listing the
// invalid fields and their visible annotations.
func (h *BookingHandler) ValidatePayment(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepPayment, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    var p validation.PaymentFields
    if err := c.Bind(&p); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    invalid, visible, ok := h.checkPayment(c, p)
    status := http.StatusOK
    if !ok {
        status = http.StatusUnprocessableEntity
    }
    return c.JSON(status, echo.Map{
        "valid":          ok,
        "invalid":        invalid,
        "annotations":    visible,
        "submit_enabled": ok,
    })
}

// Confirm handles POST /v1/booking/confirm.  It re-validates the payment
// form, quotes the order, publishes booking.confirmed and clears the
// session.  A publish failure is logged and does not fail the booking.
func (h *BookingHandler) Confirm(c echo.Context) error {
    s, st := h.open(c)
    if to, ok := redirectFor(booking.StepConfirmation, s, st); ok {
        return c.Redirect(http.StatusSeeOther, to)
    }
    var p validation.PaymentFields
    if err := c.Bind(&p); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    invalid, visible, ok := h.checkPayment(c, p)
    if !ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":          "payment details are invalid",
            "invalid":        invalid,
            "annotations":    visible,
            "submit_enabled": false,
        })
    }
    if s.IsAvailable() && !validation.IsSeatSelectionValid(st.Seats.Len(), st.Tickets.Total()) {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":          "seat selection does not match the tickets",
            "submit_enabled": false,
        })
    }

    quote := h.Pricing.Quote(st.Tickets)
    ev := queue.BookingConfirmedEvent{
        ConfirmationCode: uuid.NewString(),
        SessionID:        middleware.SessionID(c),
        MovieTitle:       st.MovieTitle,
        ShowDate:         st.ShowDate,
        ShowTime:         st.ShowTime,
        AdultTickets:     st.Tickets.Adult,
        ChildTickets:     st.Tickets.Child,
        SeniorTickets:    st.Tickets.Senior,
        SeatLabels:       st.Seats.Labels(),
        SubtotalCents:    quote.SubtotalCents,
        TaxCents:         quote.TaxCents,
        TotalCents:       quote.TotalCents,
        Name:             validation.CollapseWhitespace(p.Name),
        Email:            validation.StripWhitespace(p.Email),
        ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
    defer cancel()
    if err := h.Publisher.PublishBookingConfirmed(ctx, ev); err != nil {
        log.Warn().Err(err).Str("code", ev.ConfirmationCode).Msg("publish booking.confirmed failed")
    }
    s.ClearAll(c.Request().Context())

    return c.JSON(http.StatusCreated, echo.Map{
        "confirmation_code": ev.ConfirmationCode,
        "order":             h.orderView(st),
        "confirmed_at":      ev.ConfirmedAt,
    })
}

// Summary handles GET /v1/booking: everything stored so far and the next
// step the session has to complete.
func (h *BookingHandler) Summary(c echo.Context) error {
    s, st := h.open(c)
    next := booking.StepPayment
    if prev, missing := booking.Prerequisite(booking.StepPayment, st); missing {
        next = prev
    }
    return c.JSON(http.StatusOK, echo.Map{
        "storage_available": s.IsAvailable(),
        "order":             h.orderView(st),
        "next":              booking.Paths[next],
    })
}

// Abandon handles DELETE /v1/booking and drops the whole booking.
func (h *BookingHandler) Abandon(c echo.Context) error {
    s, _ := h.open(c)
    s.Abandon(c.Request().Context())
    return c.NoContent(http.StatusNoContent)
}
