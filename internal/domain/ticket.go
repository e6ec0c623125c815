package domain

import (
	"fmt"
	"time"
)

type TicketClass string

const (
	TicketClassEconomy  TicketClass = "ECONOMY"
	TicketClassBusiness TicketClass = "BUSINESS"
	TicketClassFirst    TicketClass = "FIRST"
)

var TicketClasses = []TicketClass{TicketClassEconomy, TicketClassBusiness, TicketClassFirst}

// Multiplier is the factor applied to a flight's base price.
func (c TicketClass) Multiplier() int64 {
	switch c {
	case TicketClassBusiness:
		return 2
	case TicketClassFirst:
		return 3
	default:
		return 1
	}
}

func (c TicketClass) Price(baseCents int64) int64 {
	return baseCents * c.Multiplier()
}

func ParseTicketClass(s string) (TicketClass, error) {
	for _, c := range TicketClasses {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown ticket class %q", ErrValidation, s)
}

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusUsed      TicketStatus = "USED"
)

type Ticket struct {
	ID               int64        `json:"id"`
	TicketNumber     string       `json:"ticket_number"`
	PriceCents       int64        `json:"price_cents"`
	Class            TicketClass  `json:"class"`
	Status           TicketStatus `json:"status"`
	BookingDate      time.Time    `json:"booking_date"`
	CancellationDate *time.Time   `json:"cancellation_date,omitempty"`
	FlightID         int64        `json:"flight_id"`
	PassengerID      int64        `json:"passenger_id"`
	BookingID        *int64       `json:"booking_id,omitempty"`
	Flight           *Flight      `json:"flight,omitempty"`
	Passenger        *Passenger   `json:"passenger,omitempty"`
}
