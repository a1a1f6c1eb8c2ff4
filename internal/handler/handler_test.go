package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sync"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-flow/internal/booking"
    "github.com/iliyamo/cinema-booking-flow/internal/middleware"
    "github.com/iliyamo/cinema-booking-flow/internal/queue"
    "github.com/iliyamo/cinema-booking-flow/internal/repository"
    "github.com/iliyamo/cinema-booking-flow/internal/validation"
)

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.BookingConfirmedEvent
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

func newServer(t *testing.T, backend repository.StateBackend) (*echo.Echo, *recordingPublisher) {
    t.Helper()
    movies, err := repository.LoadMovieRepo("")
    require.NoError(t, err)
    pub := &recordingPublisher{}
    h := NewBookingHandler(movies, backend, repository.DefaultSeatLayout, validation.DefaultRules, booking.DefaultPricing, pub)

    e := echo.New()
    e.Validator = NewRequestValidator(validation.DefaultRules)
    m := &MovieHandler{Movies: movies}
    e.GET("/v1/movies", m.ListMovies)
    e.GET("/v1/movies/:id", m.GetMovie)
    e.GET("/healthz", (&HealthHandler{Backend: backend}).Health)

    g := e.Group("/v1/booking", middleware.Session(middleware.SessionConfig{Secret: "test", TTLMin: 5}))
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
    return e, pub
}

// client replays the session cookie like a browser would.
type client struct {
    t      *testing.T
    e      *echo.Echo
    cookie *http.Cookie
}

func (cl *client) do(method, target string, body interface{}) *httptest.ResponseRecorder {
    cl.t.Helper()
    var buf bytes.Buffer
    if body != nil {
        require.NoError(cl.t, json.NewEncoder(&buf).Encode(body))
    }
    req := httptest.NewRequest(method, target, &buf)
    if body != nil {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if cl.cookie != nil {
        req.AddCookie(cl.cookie)
    }
    rec := httptest.NewRecorder()
    cl.e.ServeHTTP(rec, req)
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == middleware.SessionCookie {
            cl.cookie = ck
        }
    }
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
    t.Helper()
    var out map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return out
}

var validPayment = map[string]string{
    "name":      "Ada  Lovelace",
    "ccn":       "4111111111111111",
    "exp_month": "12",
    "exp_year":  "2030",
    "cvv":       "123",
    "zipcode":   "12345",
    "email":     "ada@example.com",
}

func TestListMovies(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}

    rec := cl.do(http.MethodGet, "/v1/movies?genre=horror&rating=all", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    movies := body["movies"].([]interface{})
    require.Len(t, movies, 1)
    assert.Equal(t, "Night Shift", movies[0].(map[string]interface{})["title"])
    assert.NotContains(t, body, "message")

    rec = cl.do(http.MethodGet, "/v1/movies?genre=musical", nil)
    body = decode(t, rec)
    assert.Empty(t, body["movies"])
    assert.Equal(t, repository.NoMoviesMessage, body["message"])

    rec = cl.do(http.MethodGet, "/v1/movies", nil)
    assert.Len(t, decode(t, rec)["movies"], 5)

    assert.Equal(t, http.StatusOK, cl.do(http.MethodGet, "/v1/movies/alpha", nil).Code)
    assert.Equal(t, http.StatusNotFound, cl.do(http.MethodGet, "/v1/movies/nope", nil).Code)
}

func TestHealth(t *testing.T) {
    e, _ := newServer(t, nil)
    rec := (&client{t: t, e: e}).do(http.MethodGet, "/healthz", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, false, decode(t, rec)["storage"])
}

func TestGuardsRedirectToProducingStep(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}

    rec := cl.do(http.MethodGet, "/v1/booking/tickets", nil)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/v1/movies", rec.Header().Get(echo.HeaderLocation))

    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/movie", map[string]string{"title": "Alpha"}).Code)
    rec = cl.do(http.MethodGet, "/v1/booking/seats", nil)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/v1/booking/time", rec.Header().Get(echo.HeaderLocation))

    rec = cl.do(http.MethodPost, "/v1/booking/confirm", validPayment)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/v1/booking/time", rec.Header().Get(echo.HeaderLocation))
}

func TestGuardsSkippedWithoutStorage(t *testing.T) {
    e, _ := newServer(t, nil)
    cl := &client{t: t, e: e}

    rec := cl.do(http.MethodGet, "/v1/booking/time?movie=Alpha", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Alpha", decode(t, rec)["movie"])

    rec = cl.do(http.MethodPost, "/v1/booking/tickets", map[string]interface{}{"adult": 2})
    require.Equal(t, http.StatusOK, rec.Code)

    rec = cl.do(http.MethodGet, "/v1/booking", nil)
    body := decode(t, rec)
    assert.Equal(t, false, body["storage_available"])
    assert.Equal(t, "/v1/movies", body["next"])
}

func TestSelectMovieUnknown(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    assert.Equal(t, http.StatusNotFound, cl.do(http.MethodPost, "/v1/booking/movie", map[string]string{"title": "Zeta"}).Code)
    assert.Equal(t, http.StatusBadRequest, cl.do(http.MethodPost, "/v1/booking/movie", map[string]string{"title": "  "}).Code)
}

// walk advances a fresh session to the seats step.
func walk(t *testing.T, cl *client, tickets map[string]interface{}) {
    t.Helper()
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/movie", map[string]string{"title": "Alpha"}).Code)
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/time", map[string]string{"date": "Fri, Oct 16", "time": "7:30 PM"}).Code)
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/tickets", tickets).Code)
}

func TestSelectShowtimeUnknown(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/movie", map[string]string{"title": "Alpha"}).Code)
    rec := cl.do(http.MethodPost, "/v1/booking/time", map[string]string{"date": "Fri, Oct 16", "time": "9:45 PM"})
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSelectTicketsInvalid(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": "1"})

    cases := map[string]struct {
        body map[string]interface{}
        hint string
    }{
        "none":     {map[string]interface{}{"adult": 0, "child": "", "senior": "0"}, "Select at least one ticket"},
        "negative": {map[string]interface{}{"adult": -1, "child": 2}, "Ticket quantities must be whole numbers of zero or more"},
        "letters":  {map[string]interface{}{"adult": "two"}, "Ticket quantities must be whole numbers of zero or more"},
        "too many": {map[string]interface{}{"adult": 15, "child": 6}, "No more than 20 tickets can be booked at once"},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            rec := cl.do(http.MethodPost, "/v1/booking/tickets", tc.body)
            require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
            body := decode(t, rec)
            assert.Equal(t, tc.hint, body["error"])
            assert.Equal(t, false, body["submit_enabled"])
        })
    }
}

func TestSeatInputSnapshotsRestore(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 2})

    rec := cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-c3", map[string]string{"value": booking.Checked})
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, true, decode(t, rec)["submit_enabled"])
    require.Equal(t, http.StatusOK, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a1", map[string]string{"value": booking.Checked}).Code)
    require.Equal(t, http.StatusOK, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a1", map[string]string{"value": ""}).Code)

    assert.Equal(t, http.StatusNotFound, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-z99", map[string]string{"value": "on"}).Code)
    assert.Equal(t, http.StatusUnprocessableEntity, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a2", map[string]string{"value": "yes"}).Code)

    rec = cl.do(http.MethodGet, "/v1/booking/seats", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    var checked []string
    for _, in := range body["seats"].([]interface{}) {
        m := in.(map[string]interface{})
        if m["value"] == booking.Checked {
            checked = append(checked, m["id"].(string))
        }
    }
    assert.Equal(t, []string{"seat-c3"}, checked)
    selected := body["selected"].([]interface{})
    require.Len(t, selected, 1)
    assert.Equal(t, "C3", selected[0].(map[string]interface{})["label"])
}

func TestSeatInputBeyondTickets(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 1})

    require.Equal(t, http.StatusOK, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a1", map[string]string{"value": booking.Checked}).Code)
    rec := cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a2", map[string]string{"value": booking.Checked})
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    assert.Len(t, decode(t, rec)["selected"], 1)

    // Re-checking an already selected seat is not a new seat.
    assert.Equal(t, http.StatusOK, cl.do(http.MethodPut, "/v1/booking/seats/inputs/seat-a1", map[string]string{"value": booking.Checked}).Code)

    rec = cl.do(http.MethodGet, "/v1/booking/payment", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    order := decode(t, rec)["order"].(map[string]interface{})
    assert.Equal(t, []interface{}{"A1"}, order["seats"])

    rec = cl.do(http.MethodGet, "/v1/booking/seats", nil)
    for _, in := range decode(t, rec)["seats"].([]interface{}) {
        m := in.(map[string]interface{})
        if m["id"] == "seat-a2" {
            assert.Empty(t, m["value"])
        }
    }
}

func TestSelectSeatsCount(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 1})

    rec := cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-a1", "seat-a2"}})
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    rec = cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{}})
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    rec = cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-q1"}})
    assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    rec = cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-a1"}})
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFewerTicketsDropSeats(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 2})
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-a1", "seat-a2"}}).Code)

    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/tickets", map[string]interface{}{"adult": 1}).Code)
    rec := cl.do(http.MethodGet, "/v1/booking/payment", nil)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
    assert.Equal(t, "/v1/booking/seats", rec.Header().Get(echo.HeaderLocation))
}

func TestValidatePayment(t *testing.T) {
    e, _ := newServer(t, repository.NewMemoryKV(0))
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 1})
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-a1"}}).Code)

    rec := cl.do(http.MethodGet, "/v1/booking/payment", nil)
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    assert.Equal(t, false, body["submit_enabled"])
    assert.Len(t, body["annotations"], 7)

    bad := map[string]string{}
    for k, v := range validPayment {
        bad[k] = v
    }
    bad["ccn"] = "4111"
    bad["exp_month"] = "13"
    rec = cl.do(http.MethodPost, "/v1/booking/payment/validate", bad)
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    body = decode(t, rec)
    assert.Equal(t, false, body["submit_enabled"])
    invalid := body["invalid"].(map[string]interface{})
    assert.Equal(t, true, invalid[string(validation.FieldCardNumber)])
    assert.Equal(t, true, invalid[string(validation.FieldExpMonth)])
    assert.Len(t, body["annotations"], 2)

    rec = cl.do(http.MethodPost, "/v1/booking/payment/validate", validPayment)
    require.Equal(t, http.StatusOK, rec.Code)
    body = decode(t, rec)
    assert.Equal(t, true, body["submit_enabled"])
    assert.Empty(t, body["annotations"])
}

func TestConfirmPublishesAndClears(t *testing.T) {
    kv := repository.NewMemoryKV(0)
    e, pub := newServer(t, kv)
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"adult": 2, "child": 1})
    require.Equal(t, http.StatusOK, cl.do(http.MethodPost, "/v1/booking/seats", map[string]interface{}{"seats": []string{"seat-c3", "seat-c4", "seat-c5"}}).Code)

    rec := cl.do(http.MethodPost, "/v1/booking/confirm", map[string]string{"name": "", "email": "nope"})
    require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
    assert.Empty(t, pub.events)

    rec = cl.do(http.MethodPost, "/v1/booking/confirm", validPayment)
    require.Equal(t, http.StatusCreated, rec.Code)
    body := decode(t, rec)
    assert.NotEmpty(t, body["confirmation_code"])

    require.Len(t, pub.events, 1)
    ev := pub.events[0]
    assert.Equal(t, "Alpha", ev.MovieTitle)
    assert.Equal(t, []string{"C3", "C4", "C5"}, ev.SeatLabels)
    assert.Equal(t, int64(3960), ev.TotalCents)
    assert.Equal(t, "Ada Lovelace", ev.Name)
    assert.Equal(t, ev.ConfirmationCode, body["confirmation_code"])

    assert.Equal(t, 0, kv.Len())
    rec = cl.do(http.MethodGet, "/v1/booking/tickets", nil)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestAbandon(t *testing.T) {
    kv := repository.NewMemoryKV(0)
    e, _ := newServer(t, kv)
    cl := &client{t: t, e: e}
    walk(t, cl, map[string]interface{}{"senior": 1})
    require.NotZero(t, kv.Len())

    assert.Equal(t, http.StatusNoContent, cl.do(http.MethodDelete, "/v1/booking", nil).Code)
    assert.Equal(t, 0, kv.Len())
}
