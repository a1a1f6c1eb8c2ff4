package validation

import (
	"strings"

	"github.com/iliyamo/cinema-booking-flow/internal/model"
)

// AllFilter is the sentinel selection that matches every movie.  An empty
// selection is treated the same way.
const AllFilter = "all"

func isAll(sel string) bool {
	sel = strings.TrimSpace(sel)
	return sel == "" || strings.EqualFold(sel, AllFilter)
}

// MatchesFilters reports whether movie passes both the genre and the rating
// selection.  Genre membership ignores case; rating must match exactly.
func MatchesFilters(movie model.Movie, genre, rating string) bool {
	return matchesGenre(movie.Genres, genre) && matchesRating(movie.Rating, rating)
}

func matchesGenre(genres []string, sel string) bool {
	if isAll(sel) {
		return true
	}
	sel = strings.TrimSpace(sel)
	for _, g := range genres {
		if strings.EqualFold(strings.TrimSpace(g), sel) {
			return true
		}
	}
	return false
}

func matchesRating(rating, sel string) bool {
	if isAll(sel) {
		return true
	}
	return rating == sel
}
