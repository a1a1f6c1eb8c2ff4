package repository

import (
    "fmt"
    "strings"

    "github.com/iliyamo/cinema-booking-flow/internal/model"
)

// SeatLayout describes the seat grid of the screening hall.  Rows are
// labelled A, B, C... and seats are numbered from 1 within each row.
type SeatLayout struct {
    Rows int
    Cols int
}

// DefaultSeatLayout matches the seat map printed on the seat page.
var DefaultSeatLayout = SeatLayout{Rows: 8, Cols: 12}

// Seats lists every seat row by row.  Each seat id is "seat-" followed by
// its label in lower case, which is also the form field id.
func (l SeatLayout) Seats() []model.Seat {
    out := make([]model.Seat, 0, l.Rows*l.Cols)
    for r := 0; r < l.Rows; r++ {
        row := rowLabel(r)
        for c := 1; c <= l.Cols; c++ {
            label := fmt.Sprintf("%s%d", row, c)
            out = append(out, model.Seat{ID: "seat-" + strings.ToLower(label), Label: label})
        }
    }
    return out
}

// Lookup returns the seat with the given field id.
func (l SeatLayout) Lookup(id string) (model.Seat, bool) {
    for _, s := range l.Seats() {
        if s.ID == id {
            return s, true
        }
    }
    return model.Seat{}, false
}

// rowLabel maps 0 -> A, 25 -> Z, 26 -> AA.
func rowLabel(i int) string {
    label := ""
    for i >= 0 {
        label = string(rune('A'+i%26)) + label
        i = i/26 - 1
    }
    return label
}
