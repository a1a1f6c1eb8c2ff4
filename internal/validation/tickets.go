package validation

import (
	"fmt"
	"math"
	"strings"
)

// TicketCounts holds the number of tickets per category.
type TicketCounts struct {
	Adult  int `json:"adult"`
	Child  int `json:"child"`
	Senior int `json:"senior"`
}

// Total is the number of tickets across all categories.
func (t TicketCounts) Total() int { return t.Adult + t.Child + t.Senior }

// TicketInput is the raw ticket-step input together with the counts it
// coerces to.  Consistent is false when any category was negative or not a
// whole number; those categories count as zero.
type TicketInput struct {
	Counts     TicketCounts
	Consistent bool
}

// ParseTicketCounts coerces the three raw category inputs.  An empty input
// is a legitimate zero.
func ParseTicketCounts(adult, child, senior string) TicketInput {
	in := TicketInput{Consistent: true}
	in.Counts.Adult = in.coerce(adult)
	in.Counts.Child = in.coerce(child)
	in.Counts.Senior = in.coerce(senior)
	return in
}

func (in *TicketInput) coerce(raw string) int {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	f := Number(raw)
	if math.IsNaN(f) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		in.Consistent = false
		return 0
	}
	return int(f)
}

// IsTicketSelectionValid holds when at least one and at most max tickets
// are selected and no category is negative.
func IsTicketSelectionValid(counts TicketCounts, max int) bool {
	if counts.Adult < 0 || counts.Child < 0 || counts.Senior < 0 {
		return false
	}
	sum := counts.Total()
	return sum >= 1 && sum <= max
}

// ValidTickets combines the coercion outcome with the aggregate rule.
func (r Rules) ValidTickets(in TicketInput) bool {
	return in.Consistent && IsTicketSelectionValid(in.Counts, r.MaxTickets)
}

// TicketHint explains why the ticket step cannot be submitted yet.  It is
// empty when the selection is valid.
func (r Rules) TicketHint(in TicketInput) string {
	switch {
	case !in.Consistent:
		return "Ticket quantities must be whole numbers of zero or more"
	case in.Counts.Total() < 1:
		return "Select at least one ticket"
	case in.Counts.Total() > r.MaxTickets:
		return fmt.Sprintf("No more than %d tickets can be booked at once", r.MaxTickets)
	}
	return ""
}

// IsSeatSelectionValid holds when at least one seat is selected and no more
// seats than tickets.
func IsSeatSelectionValid(seats, tickets int) bool {
	return seats >= 1 && seats <= tickets
}
