package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type Booking struct {
	ID               int64         `json:"id"`
	BookingNumber    string        `json:"booking_number"`
	Status           BookingStatus `json:"status"`
	BookingDate      time.Time     `json:"booking_date"`
	CancellationDate *time.Time    `json:"cancellation_date,omitempty"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	Tickets          []Ticket      `json:"tickets,omitempty"`
}

// TotalOf sums ticket prices.
func TotalOf(tickets []Ticket) int64 {
	var total int64
	for _, t := range tickets {
		total += t.PriceCents
	}
	return total
}

// SeatsByFlight counts tickets per flight, used to reserve and release seats.
func SeatsByFlight(tickets []Ticket) map[int64]int {
	seats := make(map[int64]int)
	for _, t := range tickets {
		seats[t.FlightID]++
	}
	return seats
}

type Statistics struct {
	TotalFlights    int   `json:"total_flights"`
	TotalPassengers int   `json:"total_passengers"`
	TotalBookings   int   `json:"total_bookings"`
	RevenueCents    int64 `json:"revenue_cents"`
}
