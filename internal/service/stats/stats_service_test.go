package stats

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Get(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	service := NewStatsService(store.Flights(), store.Passengers(), store.Bookings())

	empty, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{}, *empty)

	airline := &domain.Airline{Name: "Победа", Code: "DP"}
	require.NoError(t, store.Airlines().Create(ctx, airline))
	dep := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	flight := &domain.Flight{
		FlightNumber: "DP100", DepartureCity: "Москва", ArrivalCity: "Сочи",
		DepartureTime: dep, ArrivalTime: dep.Add(3 * time.Hour),
		TotalSeats: 10, AvailableSeats: 10, BasePriceCents: 300000, AirlineID: airline.ID,
	}
	require.NoError(t, store.Flights().Create(ctx, flight))
	p := &domain.Passenger{FirstName: "Анна", LastName: "Петрова", PassportNumber: "P1"}
	require.NoError(t, store.Passengers().Create(ctx, p))

	book := func(number, ticket string, price int64) *domain.Booking {
		b := &domain.Booking{
			BookingNumber:    number,
			Status:           domain.BookingStatusConfirmed,
			BookingDate:      dep.Add(-48 * time.Hour),
			TotalAmountCents: price,
			Tickets: []domain.Ticket{{
				TicketNumber: ticket, PriceCents: price, Class: domain.TicketClassEconomy,
				Status: domain.TicketStatusActive, FlightID: flight.ID, PassengerID: p.ID,
			}},
		}
		require.NoError(t, store.Bookings().Create(ctx, b))
		return b
	}
	book("BK1", "TK1", 300000)
	cancelled := book("BK2", "TK2", 600000)
	_, err = store.Bookings().Cancel(ctx, cancelled.ID, dep.Add(-24*time.Hour))
	require.NoError(t, err)

	stats, err := service.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{
		TotalFlights:    1,
		TotalPassengers: 1,
		TotalBookings:   2,
		RevenueCents:    300000,
	}, *stats)
}
