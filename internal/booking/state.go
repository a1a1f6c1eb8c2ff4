package booking

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/iliyamo/cinema-booking-flow/internal/model"
	"github.com/iliyamo/cinema-booking-flow/internal/validation"
)

// Persisted keys.  The names match the storage layout the booking pages
// have always used so an in-flight session survives a deploy.
const (
	KeyMovieTitle    = "movie-title"
	KeyMovieDate     = "time_movieDate"
	KeyMovieTime     = "time_movieTime"
	KeyAdultTickets  = "tickets_adultTickets"
	KeyChildTickets  = "tickets_childTickets"
	KeySeniorTickets = "tickets_seniorTickets"
	KeySeats         = "seats_selected"

	// SeatFormPrefix prefixes the per-input snapshots of the seat form.
	SeatFormPrefix = "seat_form"
)

var (
	timeStepKeys   = []string{KeyMovieDate, KeyMovieTime}
	ticketStepKeys = []string{KeyAdultTickets, KeyChildTickets, KeySeniorTickets}
)

// State is the typed view of everything the session has persisted.
type State struct {
	MovieTitle string                  `json:"movie_title,omitempty"`
	ShowDate   string                  `json:"show_date,omitempty"`
	ShowTime   string                  `json:"show_time,omitempty"`
	Tickets    validation.TicketCounts `json:"tickets"`
	Seats      *SeatSelection          `json:"seats"`
}

// HasMovie reports whether a movie has been chosen.
func (st State) HasMovie() bool { return st.MovieTitle != "" }

// HasShowtime reports whether both date and time have been chosen.
func (st State) HasShowtime() bool { return st.ShowDate != "" && st.ShowTime != "" }

// HasTickets reports whether at least one ticket is persisted.
func (st State) HasTickets() bool { return st.Tickets.Total() > 0 }

// HasSeats reports whether at least one seat is persisted.
func (st State) HasSeats() bool { return st.Seats.Len() > 0 }

// LoadState reads the typed state.  Absent, malformed or negative ticket
// counts read as zero.
func (s *Store) LoadState(ctx context.Context) State {
	var st State
	st.MovieTitle, _ = s.GetField(ctx, KeyMovieTitle)
	st.ShowDate, _ = s.GetField(ctx, KeyMovieDate)
	st.ShowTime, _ = s.GetField(ctx, KeyMovieTime)
	st.Tickets.Adult = s.count(ctx, KeyAdultTickets)
	st.Tickets.Child = s.count(ctx, KeyChildTickets)
	st.Tickets.Senior = s.count(ctx, KeySeniorTickets)
	st.Seats = NewSeatSelection()
	if raw, ok := s.GetField(ctx, KeySeats); ok {
		var seats []model.Seat
		if err := json.Unmarshal([]byte(raw), &seats); err == nil {
			for _, seat := range seats {
				st.Seats.Add(seat.ID, seat.Label)
			}
		}
	}
	return st
}

func (s *Store) count(ctx context.Context, key string) int {
	raw, ok := s.GetField(ctx, key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SaveMovie records the chosen movie.  Later steps survive only when the
// same movie is still stored; a different movie, or a title that already
// expired, drops them.
func (s *Store) SaveMovie(ctx context.Context, title string) {
	if prev, ok := s.GetField(ctx, KeyMovieTitle); !ok || prev != title {
		s.removeFields(ctx, append(append([]string{KeySeats}, timeStepKeys...), ticketStepKeys...)...)
		s.DestroyPrefixed(ctx, SeatFormPrefix)
	}
	s.SetField(ctx, KeyMovieTitle, title)
}

// SaveShowtime replaces the date/time step.
func (s *Store) SaveShowtime(ctx context.Context, date, clock string) {
	s.SetStep(ctx, timeStepKeys, map[string]string{
		KeyMovieDate: date,
		KeyMovieTime: clock,
	})
}

// SaveTickets replaces the ticket step.  Zero categories are omitted.
func (s *Store) SaveTickets(ctx context.Context, c validation.TicketCounts) {
	s.SetStep(ctx, ticketStepKeys, map[string]string{
		KeyAdultTickets:  strconv.Itoa(c.Adult),
		KeyChildTickets:  strconv.Itoa(c.Child),
		KeySeniorTickets: strconv.Itoa(c.Senior),
	})
}

// SaveSeats replaces the seat selection, preserving its order.
func (s *Store) SaveSeats(ctx context.Context, sel *SeatSelection) {
	s.RemoveField(ctx, KeySeats)
	if sel.Len() == 0 {
		return
	}
	b, err := json.Marshal(sel.Seats())
	if err != nil {
		s.log.Error().Err(err).Msg("encode seat selection")
		return
	}
	s.SetField(ctx, KeySeats, string(b))
}

// Abandon drops the whole booking, as when the user starts over.
func (s *Store) Abandon(ctx context.Context) {
	s.ClearAll(ctx)
}
