package repository

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const passengerColumns = `id, first_name, last_name, passport_number, email, phone_number, date_of_birth`

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.PassportNumber, &p.Email, &p.PhoneNumber, &p.DateOfBirth); err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *PGPassengerRepository) List(ctx context.Context) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT `+passengerColumns+` FROM passengers ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, *p)
	}
	return passengers, rows.Err()
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	return scanPassenger(r.db.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE id=$1`, id))
}

func (r *PGPassengerRepository) GetByPassport(ctx context.Context, passportNumber string) (*domain.Passenger, error) {
	return scanPassenger(r.db.QueryRow(ctx, `SELECT `+passengerColumns+` FROM passengers WHERE passport_number=$1`, passportNumber))
}

func (r *PGPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	err := r.db.QueryRow(ctx, `INSERT INTO passengers (first_name, last_name, passport_number, email, phone_number, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.FirstName, p.LastName, p.PassportNumber, p.Email, p.PhoneNumber, p.DateOfBirth).Scan(&p.ID)
	return mapError(err)
}

// Update overwrites everything except the e-mail, which is fixed at creation.
func (r *PGPassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	tag, err := r.db.Exec(ctx, `UPDATE passengers
		SET first_name=$2, last_name=$3, passport_number=$4, phone_number=$5, date_of_birth=$6
		WHERE id=$1`,
		p.ID, p.FirstName, p.LastName, p.PassportNumber, p.PhoneNumber, p.DateOfBirth)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGPassengerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM passengers`).Scan(&n)
	return n, err
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
