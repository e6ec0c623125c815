package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS airlines (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		code VARCHAR(10) NOT NULL DEFAULT '',
		description VARCHAR(200) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id BIGSERIAL PRIMARY KEY,
		flight_number VARCHAR(20) NOT NULL,
		departure_city VARCHAR(100) NOT NULL,
		arrival_city VARCHAR(100) NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time TIMESTAMPTZ NOT NULL,
		total_seats INT NOT NULL,
		available_seats INT NOT NULL,
		base_price_cents BIGINT NOT NULL,
		airline_id BIGINT NOT NULL REFERENCES airlines(id) ON DELETE CASCADE,
		CONSTRAINT flights_seats_range CHECK (available_seats >= 0 AND available_seats <= total_seats)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_flights_flight_number ON flights (flight_number)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id BIGSERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		passport_number VARCHAR(20) NOT NULL,
		email VARCHAR(200) NOT NULL DEFAULT '',
		phone_number VARCHAR(20) NOT NULL DEFAULT '',
		date_of_birth DATE NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_passengers_passport_number ON passengers (passport_number)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		booking_number VARCHAR(32) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'CONFIRMED',
		booking_date TIMESTAMPTZ NOT NULL,
		cancellation_date TIMESTAMPTZ,
		total_amount_cents BIGINT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_booking_number ON bookings (booking_number)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		ticket_number VARCHAR(32) NOT NULL,
		price_cents BIGINT NOT NULL,
		class VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
		booking_date TIMESTAMPTZ NOT NULL,
		cancellation_date TIMESTAMPTZ,
		flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		passenger_id BIGINT NOT NULL REFERENCES passengers(id) ON DELETE CASCADE,
		booking_id BIGINT REFERENCES bookings(id) ON DELETE SET NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_tickets_ticket_number ON tickets (ticket_number)`,
	`CREATE INDEX IF NOT EXISTS ix_tickets_booking_id ON tickets (booking_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
