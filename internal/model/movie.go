package model

// Movie is a catalog entry that can be booked.  Genres are stored in lower
// case; Rating is the MPAA-style label shown on the listing (G, PG, PG-13, R).
//
// Fields:
//  ID         – stable slug used in URLs and form values.
//  Title      – display title, also the value persisted as movie-title.
//  Rating     – content rating label.
//  Genres     – lower-case genre names.
//  RuntimeMin – runtime in minutes.
//  Showtimes  – screenings offered for this movie.
type Movie struct {
    ID         string     `json:"id" toml:"id"`
    Title      string     `json:"title" toml:"title"`
    Rating     string     `json:"rating" toml:"rating"`
    Genres     []string   `json:"genres" toml:"genres"`
    RuntimeMin int        `json:"runtime_min" toml:"runtime_min"`
    Showtimes  []Showtime `json:"showtimes" toml:"showtimes"`
}

// Showtime is one screening slot of a movie.  Date and Time keep the
// display strings the date/time picker offers (e.g. "Fri, Oct 16" and
// "7:30 PM") because those strings are what the booking store persists.
type Showtime struct {
    Date string `json:"date" toml:"date"`
    Time string `json:"time" toml:"time"`
}
