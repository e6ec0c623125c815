package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightSelect = `SELECT f.id, f.flight_number, f.departure_city, f.arrival_city, f.departure_time, f.arrival_time,
		f.total_seats, f.available_seats, f.base_price_cents, f.airline_id,
		a.id, a.name, a.code, a.description
	FROM flights f
	JOIN airlines a ON a.id = f.airline_id`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

// flightDest returns scan targets matching the column order of flightSelect.
func flightDest(f *domain.Flight) []any {
	f.Airline = &domain.Airline{}
	return []any{
		&f.ID, &f.FlightNumber, &f.DepartureCity, &f.ArrivalCity, &f.DepartureTime, &f.ArrivalTime,
		&f.TotalSeats, &f.AvailableSeats, &f.BasePriceCents, &f.AirlineID,
		&f.Airline.ID, &f.Airline.Name, &f.Airline.Code, &f.Airline.Description,
	}
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(flightDest(&f)...); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, flightSelect+` ORDER BY f.departure_time`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

// Search matches city substrings case-sensitively; strpos of an empty needle is 1,
// so an empty city matches everything.
func (r *PGFlightRepository) Search(ctx context.Context, query domain.FlightSearch) ([]domain.Flight, error) {
	var from, to any
	if start, end, ok := query.DayRange(); ok {
		from, to = start, end
	}
	rows, err := r.db.Query(ctx, flightSelect+`
		WHERE strpos(f.departure_city, $1) > 0
		  AND strpos(f.arrival_city, $2) > 0
		  AND f.available_seats > 0
		  AND ($3::timestamptz IS NULL OR (f.departure_time >= $3 AND f.departure_time < $4::timestamptz))
		ORDER BY f.departure_time`,
		query.DepartureCity, query.ArrivalCity, from, to)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var f domain.Flight
	if err := r.db.QueryRow(ctx, flightSelect+` WHERE f.id=$1`, id).Scan(flightDest(&f)...); err != nil {
		return nil, mapError(err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, departure_city, arrival_city, departure_time, arrival_time,
			total_seats, available_seats, base_price_cents, airline_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		f.FlightNumber, f.DepartureCity, f.ArrivalCity, f.DepartureTime, f.ArrivalTime,
		f.TotalSeats, f.AvailableSeats, f.BasePriceCents, f.AirlineID).Scan(&f.ID)
	return mapError(err)
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, count int) error {
	return reserveSeats(ctx, r.db, flightID, count)
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	return releaseSeats(ctx, r.db, flightID, count)
}

func (r *PGFlightRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM flights`).Scan(&n)
	return n, err
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// reserveSeats decrements in a single conditional update so that two concurrent
// bookings cannot both take the last seat.
func reserveSeats(ctx context.Context, db execer, flightID int64, count int) error {
	tag, err := db.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2
		WHERE id=$1 AND available_seats >= $2`, flightID, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("flight %d: %w", flightID, domain.ErrNoSeats)
	}
	return nil
}

func releaseSeats(ctx context.Context, db execer, flightID int64, count int) error {
	tag, err := db.Exec(ctx, `UPDATE flights SET available_seats = LEAST(total_seats, available_seats + $2)
		WHERE id=$1`, flightID, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
