// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// BookingConfirmedQueue is the durable queue confirmed bookings are
// published to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a booking reaches the
// confirmation step.  It carries everything the session held, since the
// session namespace is wiped right after publishing.
type BookingConfirmedEvent struct {
    ConfirmationCode string   `json:"confirmation_code"`
    SessionID        string   `json:"session_id"`
    MovieTitle       string   `json:"movie_title"`
    ShowDate         string   `json:"show_date"`
    ShowTime         string   `json:"show_time"`
    AdultTickets     int      `json:"adult_tickets"`
    ChildTickets     int      `json:"child_tickets"`
    SeniorTickets    int      `json:"senior_tickets"`
    SeatLabels       []string `json:"seats"`
    SubtotalCents    int64    `json:"subtotal_cents"`
    TaxCents         int64    `json:"tax_cents"`
    TotalCents       int64    `json:"total_cents"`
    Name             string   `json:"name"`
    Email            string   `json:"email"`
    ConfirmedAt      string   `json:"confirmed_at"`
}
