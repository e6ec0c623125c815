package stats

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
)

type StatsUseCase interface {
	Get(ctx context.Context) (*domain.Statistics, error)
}

type StatsService struct {
	flights    repository.FlightRepository
	passengers repository.PassengerRepository
	bookings   repository.BookingRepository
}

func NewStatsService(
	flights repository.FlightRepository,
	passengers repository.PassengerRepository,
	bookings repository.BookingRepository,
) *StatsService {
	return &StatsService{flights: flights, passengers: passengers, bookings: bookings}
}

// Get counts every flight, passenger and booking. Revenue excludes cancelled bookings.
func (s *StatsService) Get(ctx context.Context) (*domain.Statistics, error) {
	var (
		stats domain.Statistics
		err   error
	)
	if stats.TotalFlights, err = s.flights.Count(ctx); err != nil {
		return nil, fmt.Errorf("count flights: %w", err)
	}
	if stats.TotalPassengers, err = s.passengers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count passengers: %w", err)
	}
	if stats.TotalBookings, err = s.bookings.Count(ctx); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.RevenueCents, err = s.bookings.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return &stats, nil
}

var _ StatsUseCase = (*StatsService)(nil)
