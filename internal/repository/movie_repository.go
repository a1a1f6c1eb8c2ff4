package repository

import (
    "context"
    "embed"
    "fmt"
    "os"
    "strings"

    "github.com/BurntSushi/toml"

    "github.com/iliyamo/cinema-booking-flow/internal/model"
    "github.com/iliyamo/cinema-booking-flow/internal/validation"
)

//go:embed catalog/movies.toml
var catalogFS embed.FS

// NoMoviesMessage is shown when a filter combination matches nothing.
const NoMoviesMessage = "Sorry, no movies were found with those filters."

type catalogFile struct {
    Movies []model.Movie `toml:"movies"`
}

// MovieFilter selects movies by genre and rating.  Empty values and the
// "all" sentinel match every movie.
type MovieFilter struct {
    Genre  string
    Rating string
}

// MovieRepo serves the read-only movie catalog.  Catalog order is the
// listing order.
type MovieRepo struct {
    movies  []model.Movie
    byTitle map[string]int
}

// NewMovieRepo builds a MovieRepo from already decoded movies.  Genres are
// lower-cased so filtering can compare case-insensitively.
func NewMovieRepo(movies []model.Movie) *MovieRepo {
    r := &MovieRepo{byTitle: make(map[string]int, len(movies))}
    for _, m := range movies {
        genres := make([]string, len(m.Genres))
        for i, g := range m.Genres {
            genres[i] = strings.ToLower(strings.TrimSpace(g))
        }
        m.Genres = genres
        r.byTitle[m.Title] = len(r.movies)
        r.movies = append(r.movies, m)
    }
    return r
}

// LoadMovieRepo decodes the TOML catalog at path.  An empty path loads the
// embedded default catalog.
func LoadMovieRepo(path string) (*MovieRepo, error) {
    var (
        data []byte
        err  error
    )
    if path == "" {
        data, err = catalogFS.ReadFile("catalog/movies.toml")
    } else {
        data, err = os.ReadFile(path)
    }
    if err != nil {
        return nil, fmt.Errorf("read catalog: %w", err)
    }
    var f catalogFile
    if err := toml.Unmarshal(data, &f); err != nil {
        return nil, fmt.Errorf("parse catalog: %w", err)
    }
    return NewMovieRepo(f.Movies), nil
}

// List returns the movies that pass f, in catalog order.
func (r *MovieRepo) List(_ context.Context, f MovieFilter) []model.Movie {
    out := make([]model.Movie, 0, len(r.movies))
    for _, m := range r.movies {
        if validation.MatchesFilters(m, f.Genre, f.Rating) {
            out = append(out, m)
        }
    }
    return out
}

// Genres returns every genre in the catalog, in first-seen order.
func (r *MovieRepo) Genres() []string {
    seen := map[string]bool{}
    var out []string
    for _, m := range r.movies {
        for _, g := range m.Genres {
            if !seen[g] {
                seen[g] = true
                out = append(out, g)
            }
        }
    }
    return out
}

// Ratings returns every rating in the catalog, in first-seen order.
func (r *MovieRepo) Ratings() []string {
    seen := map[string]bool{}
    var out []string
    for _, m := range r.movies {
        if !seen[m.Rating] {
            seen[m.Rating] = true
            out = append(out, m.Rating)
        }
    }
    return out
}

// GetByTitle returns the movie with the exact title.
func (r *MovieRepo) GetByTitle(_ context.Context, title string) (model.Movie, error) {
    i, ok := r.byTitle[title]
    if !ok {
        return model.Movie{}, ErrMovieNotFound
    }
    return r.movies[i], nil
}

// GetByID returns the movie with the given slug.
func (r *MovieRepo) GetByID(_ context.Context, id string) (model.Movie, error) {
    for _, m := range r.movies {
        if m.ID == id {
            return m, nil
        }
    }
    return model.Movie{}, ErrMovieNotFound
}

// FindShowtime checks that date and time are offered for title.
func (r *MovieRepo) FindShowtime(ctx context.Context, title, date, clock string) (model.Showtime, error) {
    m, err := r.GetByTitle(ctx, title)
    if err != nil {
        return model.Showtime{}, err
    }
    for _, st := range m.Showtimes {
        if st.Date == date && st.Time == clock {
            return st, nil
        }
    }
    return model.Showtime{}, ErrShowtimeNotFound
}
