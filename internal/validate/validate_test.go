package validate

import (
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(domain.Airline{Name: "S7 Airlines", Code: "S7"}))

	err := Struct(domain.Airline{Code: "TOO-LONG-CODE"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Name: failed required")
	assert.Contains(t, err.Error(), "Code: failed max")
}

func TestStruct_FlightSeats(t *testing.T) {
	dep := time.Now()
	f := domain.Flight{
		FlightNumber: "SU1", DepartureCity: "A", ArrivalCity: "B",
		DepartureTime: dep, ArrivalTime: dep.Add(time.Hour),
		TotalSeats: 10, AvailableSeats: 11, AirlineID: 1,
	}
	err := Struct(f)
	assert.ErrorContains(t, err, "AvailableSeats: failed ltefield")

	f.AvailableSeats = 10
	assert.NoError(t, Struct(f))

	f.ArrivalTime = dep.Add(-time.Hour)
	assert.ErrorContains(t, Struct(f), "ArrivalTime: failed gtfield")
}

func TestStruct_PassengerEmail(t *testing.T) {
	p := domain.Passenger{FirstName: "Иван", LastName: "Иванов", PassportNumber: "4510123456"}
	assert.NoError(t, Struct(p))

	p.Email = "not-an-email"
	assert.ErrorContains(t, Struct(p), "Email: failed email")
}
