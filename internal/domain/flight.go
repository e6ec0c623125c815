package domain

import (
	"strings"
	"time"
)

type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number" validate:"required,max=20"`
	DepartureCity  string    `json:"departure_city" validate:"required,max=100"`
	ArrivalCity    string    `json:"arrival_city" validate:"required,max=100"`
	DepartureTime  time.Time `json:"departure_time" validate:"required"`
	ArrivalTime    time.Time `json:"arrival_time" validate:"required,gtfield=DepartureTime"`
	TotalSeats     int       `json:"total_seats" validate:"gt=0"`
	AvailableSeats int       `json:"available_seats" validate:"gte=0,ltefield=TotalSeats"`
	BasePriceCents int64     `json:"base_price_cents" validate:"gte=0"`
	AirlineID      int64     `json:"airline_id" validate:"required"`
	Airline        *Airline  `json:"airline,omitempty"`
}

// FlightSearch selects flights whose cities contain the given substrings.
// A nil Date matches any departure day.
type FlightSearch struct {
	DepartureCity string
	ArrivalCity   string
	Date          *time.Time
}

// DayRange returns [startOfDay, startOfDay+1day) of Date in its own location.
func (s FlightSearch) DayRange() (time.Time, time.Time, bool) {
	if s.Date == nil {
		return time.Time{}, time.Time{}, false
	}
	d := *s.Date
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 0, 1), true
}

// Matches reports whether f satisfies the search, including the free seat requirement.
func (s FlightSearch) Matches(f Flight) bool {
	if f.AvailableSeats <= 0 {
		return false
	}
	if !strings.Contains(f.DepartureCity, s.DepartureCity) || !strings.Contains(f.ArrivalCity, s.ArrivalCity) {
		return false
	}
	if start, end, ok := s.DayRange(); ok {
		return !f.DepartureTime.Before(start) && f.DepartureTime.Before(end)
	}
	return true
}
