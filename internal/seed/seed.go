package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validate"
)

var airlines = []domain.Airline{
	{Name: "Аэрофлот", Code: "SU", Description: "Российская авиакомпания"},
	{Name: "S7 Airlines", Code: "S7", Description: "Сибирские авиалинии"},
	{Name: "Уральские авиалинии", Code: "U6", Description: "Уральские авиалинии"},
	{Name: "Победа", Code: "DP", Description: "Бюджетная авиакомпания"},
}

type flightPlan struct {
	airlineCode string
	number      string
	from, to    string
	days        int
	hour        time.Duration
	duration    time.Duration
	seats       int
	priceCents  int64
}

var flights = []flightPlan{
	{"SU", "SU123", "Москва", "Санкт-Петербург", 1, 10 * time.Hour, 2 * time.Hour, 150, 500000},
	{"S7", "S7456", "Москва", "Екатеринбург", 2, 14 * time.Hour, 4 * time.Hour, 120, 800000},
	{"U6", "U6789", "Санкт-Петербург", "Сочи", 3, 8 * time.Hour, 4 * time.Hour, 180, 1200000},
}

// Run fills an empty database with the demo airlines and flights. Departure
// times are relative to now. It does nothing when any airline already exists.
func Run(
	ctx context.Context,
	airlineRepo repository.AirlineRepository,
	flightRepo repository.FlightRepository,
	now time.Time,
	log *logger.Logger,
) (bool, error) {
	count, err := airlineRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count airlines: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	ids := make(map[string]int64, len(airlines))
	for _, a := range airlines {
		airline := a
		if err := airlineRepo.Create(ctx, &airline); err != nil {
			return false, fmt.Errorf("seed airline %s: %w", airline.Code, err)
		}
		ids[airline.Code] = airline.ID
	}

	for _, plan := range flights {
		departure := now.AddDate(0, 0, plan.days).Add(plan.hour)
		flight := &domain.Flight{
			FlightNumber:   plan.number,
			DepartureCity:  plan.from,
			ArrivalCity:    plan.to,
			DepartureTime:  departure,
			ArrivalTime:    departure.Add(plan.duration),
			TotalSeats:     plan.seats,
			AvailableSeats: plan.seats,
			BasePriceCents: plan.priceCents,
			AirlineID:      ids[plan.airlineCode],
		}
		if err := validate.Struct(flight); err != nil {
			return false, fmt.Errorf("seed flight %s: %w", plan.number, err)
		}
		if err := flightRepo.Create(ctx, flight); err != nil {
			return false, fmt.Errorf("seed flight %s: %w", plan.number, err)
		}
	}

	log.Info("demo data seeded", "airlines", len(airlines), "flights", len(flights))
	return true, nil
}
