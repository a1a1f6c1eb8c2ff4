package booking

// Step identifies a page of the booking flow.
type Step string

const (
	StepMovies       Step = "movies"
	StepTime         Step = "time"
	StepTickets      Step = "tickets"
	StepSeats        Step = "seats"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// Paths maps each step to the route that renders it.
var Paths = map[Step]string{
	StepMovies:       "/v1/movies",
	StepTime:         "/v1/booking/time",
	StepTickets:      "/v1/booking/tickets",
	StepSeats:        "/v1/booking/seats",
	StepPayment:      "/v1/booking/payment",
	StepConfirmation: "/v1/booking/confirm",
}

// Prerequisite returns the earliest step whose output st is missing for
// step to render, and false when nothing is missing.
func Prerequisite(step Step, st State) (Step, bool) {
	need := []struct {
		ok   bool
		step Step
	}{
		{st.HasMovie(), StepMovies},
		{st.HasShowtime(), StepTime},
		{st.HasTickets(), StepTickets},
		{st.HasSeats(), StepSeats},
	}
	var depth int
	switch step {
	case StepTime:
		depth = 1
	case StepTickets:
		depth = 2
	case StepSeats:
		depth = 3
	case StepPayment, StepConfirmation:
		depth = 4
	}
	for i := 0; i < depth; i++ {
		if !need[i].ok {
			return need[i].step, true
		}
	}
	return "", false
}
