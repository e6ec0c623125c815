package repository

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
)

// MemoryStore keeps every entity in process memory. It enforces the same unique
// keys and seat bounds as the PostgreSQL schema and is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	seq        int64
	airlines   map[int64]domain.Airline
	flights    map[int64]domain.Flight
	passengers map[int64]domain.Passenger
	bookings   map[int64]domain.Booking
	tickets    map[int64]domain.Ticket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		airlines:   make(map[int64]domain.Airline),
		flights:    make(map[int64]domain.Flight),
		passengers: make(map[int64]domain.Passenger),
		bookings:   make(map[int64]domain.Booking),
		tickets:    make(map[int64]domain.Ticket),
	}
}

func (s *MemoryStore) Airlines() AirlineRepository     { return memAirlines{s} }
func (s *MemoryStore) Flights() FlightRepository       { return memFlights{s} }
func (s *MemoryStore) Passengers() PassengerRepository { return memPassengers{s} }
func (s *MemoryStore) Bookings() BookingRepository     { return memBookings{s} }

func (s *MemoryStore) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *MemoryStore) flightWithAirline(f domain.Flight) domain.Flight {
	if a, ok := s.airlines[f.AirlineID]; ok {
		f.Airline = &a
	}
	return f
}

func (s *MemoryStore) sortedFlights(keep func(domain.Flight) bool) []domain.Flight {
	flights := make([]domain.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		if keep(f) {
			flights = append(flights, s.flightWithAirline(f))
		}
	}
	slices.SortFunc(flights, func(a, b domain.Flight) int {
		if c := a.DepartureTime.Compare(b.DepartureTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return flights
}

func (s *MemoryStore) bookingWithTickets(b domain.Booking) domain.Booking {
	b.Tickets = nil
	for _, id := range slices.Sorted(maps.Keys(s.tickets)) {
		t := s.tickets[id]
		if t.BookingID == nil || *t.BookingID != b.ID {
			continue
		}
		f := s.flightWithAirline(s.flights[t.FlightID])
		p := s.passengers[t.PassengerID]
		t.Flight, t.Passenger = &f, &p
		b.Tickets = append(b.Tickets, t)
	}
	return b
}

type memAirlines struct{ s *MemoryStore }

func (r memAirlines) List(_ context.Context) ([]domain.Airline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	airlines := make([]domain.Airline, 0, len(r.s.airlines))
	for _, id := range slices.Sorted(maps.Keys(r.s.airlines)) {
		airlines = append(airlines, r.s.airlines[id])
	}
	return airlines, nil
}

func (r memAirlines) GetByID(_ context.Context, id int64) (*domain.Airline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.airlines[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r memAirlines) Create(_ context.Context, airline *domain.Airline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	airline.ID = r.s.nextID()
	r.s.airlines[airline.ID] = *airline
	return nil
}

func (r memAirlines) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.airlines), nil
}

type memFlights struct{ s *MemoryStore }

func (r memFlights) List(_ context.Context) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedFlights(func(domain.Flight) bool { return true }), nil
}

func (r memFlights) Search(_ context.Context, query domain.FlightSearch) ([]domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.sortedFlights(query.Matches), nil
}

func (r memFlights) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.flights[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f = r.s.flightWithAirline(f)
	return &f, nil
}

func (r memFlights) Create(_ context.Context, flight *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.airlines[flight.AirlineID]; !ok {
		return fmt.Errorf("airline %d: %w", flight.AirlineID, domain.ErrNotFound)
	}
	for _, f := range r.s.flights {
		if f.FlightNumber == flight.FlightNumber {
			return fmt.Errorf("%w: flight number %s", domain.ErrConflict, flight.FlightNumber)
		}
	}
	flight.ID = r.s.nextID()
	stored := *flight
	stored.Airline = nil
	r.s.flights[flight.ID] = stored
	return nil
}

func (r memFlights) ReserveSeats(_ context.Context, flightID int64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.reserve(flightID, count)
}

func (r memFlights) ReleaseSeats(_ context.Context, flightID int64, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.release(flightID, count)
}

func (r memFlights) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.flights), nil
}

func (s *MemoryStore) reserve(flightID int64, count int) error {
	f, ok := s.flights[flightID]
	if !ok || f.AvailableSeats < count {
		return fmt.Errorf("flight %d: %w", flightID, domain.ErrNoSeats)
	}
	f.AvailableSeats -= count
	s.flights[flightID] = f
	return nil
}

func (s *MemoryStore) release(flightID int64, count int) error {
	f, ok := s.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %d: %w", flightID, domain.ErrNotFound)
	}
	f.AvailableSeats = min(f.TotalSeats, f.AvailableSeats+count)
	s.flights[flightID] = f
	return nil
}

type memPassengers struct{ s *MemoryStore }

func (r memPassengers) List(_ context.Context) ([]domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	passengers := make([]domain.Passenger, 0, len(r.s.passengers))
	for _, p := range r.s.passengers {
		passengers = append(passengers, p)
	}
	slices.SortFunc(passengers, func(a, b domain.Passenger) int {
		return cmp.Or(cmp.Compare(a.LastName, b.LastName), cmp.Compare(a.FirstName, b.FirstName), cmp.Compare(a.ID, b.ID))
	})
	return passengers, nil
}

func (r memPassengers) GetByID(_ context.Context, id int64) (*domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.passengers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memPassengers) GetByPassport(_ context.Context, passportNumber string) (*domain.Passenger, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.passengers {
		if p.PassportNumber == passportNumber {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memPassengers) passportTaken(passportNumber string, exceptID int64) bool {
	for _, p := range r.s.passengers {
		if p.PassportNumber == passportNumber && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r memPassengers) Create(_ context.Context, passenger *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.passportTaken(passenger.PassportNumber, 0) {
		return fmt.Errorf("%w: passport %s", domain.ErrConflict, passenger.PassportNumber)
	}
	passenger.ID = r.s.nextID()
	r.s.passengers[passenger.ID] = *passenger
	return nil
}

func (r memPassengers) Update(_ context.Context, passenger *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.passengers[passenger.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.passportTaken(passenger.PassportNumber, passenger.ID) {
		return fmt.Errorf("%w: passport %s", domain.ErrConflict, passenger.PassportNumber)
	}
	existing.FirstName = passenger.FirstName
	existing.LastName = passenger.LastName
	existing.PassportNumber = passenger.PassportNumber
	existing.PhoneNumber = passenger.PhoneNumber
	existing.DateOfBirth = passenger.DateOfBirth
	r.s.passengers[passenger.ID] = existing
	return nil
}

func (r memPassengers) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.passengers), nil
}

type memBookings struct{ s *MemoryStore }

func (r memBookings) List(_ context.Context) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bookings := make([]domain.Booking, 0, len(r.s.bookings))
	for _, b := range r.s.bookings {
		bookings = append(bookings, r.s.bookingWithTickets(b))
	}
	slices.SortFunc(bookings, func(a, b domain.Booking) int {
		return cmp.Or(b.BookingDate.Compare(a.BookingDate), cmp.Compare(b.ID, a.ID))
	})
	return bookings, nil
}

func (r memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b = r.s.bookingWithTickets(b)
	return &b, nil
}

func (r memBookings) GetByNumber(_ context.Context, number string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, b := range r.s.bookings {
		if b.BookingNumber == number {
			b = r.s.bookingWithTickets(b)
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memBookings) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.bookings {
		if b.BookingNumber == booking.BookingNumber {
			return fmt.Errorf("%w: booking number %s", domain.ErrConflict, booking.BookingNumber)
		}
	}
	numbers := make(map[string]bool, len(booking.Tickets))
	for _, t := range r.s.tickets {
		numbers[t.TicketNumber] = true
	}
	for _, t := range booking.Tickets {
		if numbers[t.TicketNumber] {
			return fmt.Errorf("%w: ticket number %s", domain.ErrConflict, t.TicketNumber)
		}
		numbers[t.TicketNumber] = true
		if _, ok := r.s.passengers[t.PassengerID]; !ok {
			return fmt.Errorf("passenger %d: %w", t.PassengerID, domain.ErrNotFound)
		}
	}

	// check every flight before touching any, so a failure leaves nothing behind
	seats := domain.SeatsByFlight(booking.Tickets)
	for flightID, n := range seats {
		if f, ok := r.s.flights[flightID]; !ok || f.AvailableSeats < n {
			return fmt.Errorf("flight %d: %w", flightID, domain.ErrNoSeats)
		}
	}
	for flightID, n := range seats {
		_ = r.s.reserve(flightID, n)
	}

	booking.ID = r.s.nextID()
	bookingID := booking.ID
	stored := *booking
	stored.Tickets = nil
	r.s.bookings[booking.ID] = stored
	for i := range booking.Tickets {
		t := &booking.Tickets[i]
		t.ID = r.s.nextID()
		t.BookingID = &bookingID
		saved := *t
		saved.Flight, saved.Passenger = nil, nil
		r.s.tickets[t.ID] = saved
	}
	return nil
}

func (r memBookings) Cancel(_ context.Context, id int64, at time.Time) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	b.Status = domain.BookingStatusCancelled
	b.CancellationDate = &at
	r.s.bookings[id] = b

	for tid, t := range r.s.tickets {
		if t.BookingID == nil || *t.BookingID != id || t.Status == domain.TicketStatusCancelled {
			continue
		}
		t.Status = domain.TicketStatusCancelled
		t.CancellationDate = &at
		r.s.tickets[tid] = t
		_ = r.s.release(t.FlightID, 1)
	}

	b = r.s.bookingWithTickets(b)
	return &b, nil
}

func (r memBookings) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.bookings), nil
}

func (r memBookings) Revenue(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sum int64
	for _, b := range r.s.bookings {
		if b.Status != domain.BookingStatusCancelled {
			sum += b.TotalAmountCents
		}
	}
	return sum, nil
}

var (
	_ AirlineRepository   = memAirlines{}
	_ FlightRepository    = memFlights{}
	_ PassengerRepository = memPassengers{}
	_ BookingRepository   = memBookings{}
)
