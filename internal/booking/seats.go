package booking

import (
	"encoding/json"

	"github.com/iliyamo/cinema-booking-flow/internal/model"
)

// SeatSelection maps seat ids to labels.  Insertion order is display order;
// a seat present in the selection is selected.
type SeatSelection struct {
	order  []string
	labels map[string]string
}

// NewSeatSelection returns an empty selection.
func NewSeatSelection() *SeatSelection {
	return &SeatSelection{labels: map[string]string{}}
}

// Add selects a seat.  Re-adding a selected seat keeps its position.
func (s *SeatSelection) Add(id, label string) {
	if _, ok := s.labels[id]; !ok {
		s.order = append(s.order, id)
	}
	s.labels[id] = label
}

// Remove deselects a seat.
func (s *SeatSelection) Remove(id string) {
	if _, ok := s.labels[id]; !ok {
		return
	}
	delete(s.labels, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Has reports whether id is selected.
func (s *SeatSelection) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.labels[id]
	return ok
}

// Len is the number of selected seats.  A nil selection is empty.
func (s *SeatSelection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Seats returns the selected seats in display order.
func (s *SeatSelection) Seats() []model.Seat {
	if s == nil {
		return nil
	}
	out := make([]model.Seat, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, model.Seat{ID: id, Label: s.labels[id]})
	}
	return out
}

// Labels returns the selected seat labels in display order.
func (s *SeatSelection) Labels() []string {
	seats := s.Seats()
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		out = append(out, seat.Label)
	}
	return out
}

func (s *SeatSelection) MarshalJSON() ([]byte, error) {
	seats := s.Seats()
	if seats == nil {
		seats = []model.Seat{}
	}
	return json.Marshal(seats)
}
