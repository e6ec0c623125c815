package repository

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAirlineRepository struct {
	db *pgxpool.Pool
}

func NewAirlineRepository(db *pgxpool.Pool) AirlineRepository {
	return &PGAirlineRepository{db: db}
}

func (r *PGAirlineRepository) List(ctx context.Context) ([]domain.Airline, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, description FROM airlines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	airlines := make([]domain.Airline, 0)
	for rows.Next() {
		var a domain.Airline
		if err := rows.Scan(&a.ID, &a.Name, &a.Code, &a.Description); err != nil {
			return nil, err
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}

func (r *PGAirlineRepository) GetByID(ctx context.Context, id int64) (*domain.Airline, error) {
	var a domain.Airline
	err := r.db.QueryRow(ctx, `SELECT id, name, code, description FROM airlines WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.Code, &a.Description)
	if err != nil {
		return nil, mapError(err)
	}
	return &a, nil
}

func (r *PGAirlineRepository) Create(ctx context.Context, airline *domain.Airline) error {
	err := r.db.QueryRow(ctx, `INSERT INTO airlines (name, code, description) VALUES ($1, $2, $3) RETURNING id`,
		airline.Name, airline.Code, airline.Description).Scan(&airline.ID)
	return mapError(err)
}

func (r *PGAirlineRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM airlines`).Scan(&n)
	return n, err
}

var _ AirlineRepository = (*PGAirlineRepository)(nil)
