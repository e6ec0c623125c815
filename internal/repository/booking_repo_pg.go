package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, booking_number, status, booking_date, cancellation_date, total_amount_cents`

const ticketSelect = `SELECT t.id, t.ticket_number, t.price_cents, t.class, t.status, t.booking_date, t.cancellation_date,
		t.flight_id, t.passenger_id, t.booking_id,
		f.id, f.flight_number, f.departure_city, f.arrival_city, f.departure_time, f.arrival_time,
		f.total_seats, f.available_seats, f.base_price_cents, f.airline_id,
		a.id, a.name, a.code, a.description,
		p.id, p.first_name, p.last_name, p.passport_number, p.email, p.phone_number, p.date_of_birth
	FROM tickets t
	JOIN flights f ON f.id = t.flight_id
	JOIN airlines a ON a.id = f.airline_id
	JOIN passengers p ON p.id = t.passenger_id`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.BookingNumber, &b.Status, &b.BookingDate, &b.CancellationDate, &b.TotalAmountCents); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := r.attachTickets(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_number=$1`, number)
}

func (r *PGBookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	bookings := []domain.Booking{*b}
	if err := r.attachTickets(ctx, bookings); err != nil {
		return nil, err
	}
	return &bookings[0], nil
}

func (r *PGBookingRepository) attachTickets(ctx context.Context, bookings []domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]int64, len(bookings))
	index := make(map[int64]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := r.db.Query(ctx, ticketSelect+` WHERE t.booking_id = ANY($1) ORDER BY t.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Ticket
		t.Flight = &domain.Flight{}
		t.Passenger = &domain.Passenger{}
		p := t.Passenger
		dest := []any{&t.ID, &t.TicketNumber, &t.PriceCents, &t.Class, &t.Status, &t.BookingDate, &t.CancellationDate,
			&t.FlightID, &t.PassengerID, &t.BookingID}
		dest = append(dest, flightDest(t.Flight)...)
		dest = append(dest, &p.ID, &p.FirstName, &p.LastName, &p.PassportNumber, &p.Email, &p.PhoneNumber, &p.DateOfBirth)
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		i := index[*t.BookingID]
		bookings[i].Tickets = append(bookings[i].Tickets, t)
	}
	return rows.Err()
}

// Create reserves seats, inserts the booking and every ticket in one transaction.
// Either all of them become visible or none does.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seats := domain.SeatsByFlight(booking.Tickets)
	// fixed order keeps concurrent multi-flight bookings from deadlocking
	for _, flightID := range slices.Sorted(maps.Keys(seats)) {
		if err := reserveSeats(ctx, tx, flightID, seats[flightID]); err != nil {
			return err
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (booking_number, status, booking_date, total_amount_cents)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		booking.BookingNumber, booking.Status, booking.BookingDate, booking.TotalAmountCents).Scan(&booking.ID); err != nil {
		return mapError(err)
	}

	bookingID := booking.ID
	for i := range booking.Tickets {
		t := &booking.Tickets[i]
		t.BookingID = &bookingID
		if err := tx.QueryRow(ctx, `INSERT INTO tickets (ticket_number, price_cents, class, status, booking_date, flight_id, passenger_id, booking_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			t.TicketNumber, t.PriceCents, t.Class, t.Status, t.BookingDate, t.FlightID, t.PassengerID, booking.ID).Scan(&t.ID); err != nil {
			return mapError(err)
		}
	}

	return tx.Commit(ctx)
}

// Cancel flips the booking and its tickets to cancelled and gives one seat back
// per cancelled ticket, never beyond the flight's total.
func (r *PGBookingRepository) Cancel(ctx context.Context, id int64, at time.Time) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, cancellation_date=$3 WHERE id=$1 AND status <> $2`,
		id, domain.BookingStatusCancelled, at)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var status domain.BookingStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&status); err != nil {
			return nil, mapError(err)
		}
		return nil, domain.ErrAlreadyCancelled
	}

	rows, err := tx.Query(ctx, `UPDATE tickets SET status=$2, cancellation_date=$3
		WHERE booking_id=$1 AND status <> $2 RETURNING flight_id`,
		id, domain.TicketStatusCancelled, at)
	if err != nil {
		return nil, err
	}
	released := make(map[int64]int)
	for rows.Next() {
		var flightID int64
		if err := rows.Scan(&flightID); err != nil {
			rows.Close()
			return nil, err
		}
		released[flightID]++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, flightID := range slices.Sorted(maps.Keys(released)) {
		if err := releaseSeats(ctx, tx, flightID, released[flightID]); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("release seats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGBookingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&n)
	return n, err
}

// Revenue sums the totals of bookings that were not cancelled.
func (r *PGBookingRepository) Revenue(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount_cents), 0)::bigint FROM bookings WHERE status <> $1`,
		domain.BookingStatusCancelled).Scan(&sum)
	return sum, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
