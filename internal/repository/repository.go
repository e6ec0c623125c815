package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AirlineRepository interface {
	List(ctx context.Context) ([]domain.Airline, error)
	GetByID(ctx context.Context, id int64) (*domain.Airline, error)
	Create(ctx context.Context, airline *domain.Airline) error
	Count(ctx context.Context) (int, error)
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, query domain.FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	ReserveSeats(ctx context.Context, flightID int64, count int) error
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
	Count(ctx context.Context) (int, error)
}

type PassengerRepository interface {
	List(ctx context.Context) ([]domain.Passenger, error)
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	GetByPassport(ctx context.Context, passportNumber string) (*domain.Passenger, error)
	Create(ctx context.Context, passenger *domain.Passenger) error
	Update(ctx context.Context, passenger *domain.Passenger) error
	Count(ctx context.Context) (int, error)
}

// BookingRepository persists bookings together with their tickets. Create and
// Cancel adjust flight seat counters in the same transaction.
type BookingRepository interface {
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) error
	Cancel(ctx context.Context, id int64, at time.Time) (*domain.Booking, error)
	Count(ctx context.Context) (int, error)
	Revenue(ctx context.Context) (int64, error)
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}
