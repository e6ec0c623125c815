package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/Domenick1991/airtickets/internal/service/passengers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type testEnv struct {
	store    *repository.MemoryStore
	flights  *flights.FlightService
	service  *BookingService
	su123    domain.Flight
	now      time.Time
	producer *MockProducer
}

func newEnv(t *testing.T, withProducer bool) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	airline := &domain.Airline{Name: "Аэрофлот", Code: "SU"}
	require.NoError(t, store.Airlines().Create(ctx, airline))
	su123 := &domain.Flight{
		FlightNumber:   "SU123",
		DepartureCity:  "Москва",
		ArrivalCity:    "Санкт-Петербург",
		DepartureTime:  now.Add(34 * time.Hour),
		ArrivalTime:    now.Add(36 * time.Hour),
		TotalSeats:     150,
		AvailableSeats: 150,
		BasePriceCents: 500000,
		AirlineID:      airline.ID,
	}
	require.NoError(t, store.Flights().Create(ctx, su123))

	env := &testEnv{store: store, su123: *su123, now: now}
	env.flights = flights.NewFlightService(store.Flights(), nil, logger.Discard())
	opts := []BookingServiceOption{WithClock(func() time.Time { return now })}
	if withProducer {
		env.producer = &MockProducer{}
		opts = append(opts, WithProducer(env.producer, "booking-events"), WithNotificationsTopic("notifications"))
	}
	env.service = NewBookingService(
		store.Bookings(),
		env.flights,
		passengers.NewPassengerService(store.Passengers()),
		logger.Discard(),
		opts...,
	)
	return env
}

func (e *testEnv) seats(t *testing.T) int {
	t.Helper()
	f, err := e.store.Flights().GetByID(context.Background(), e.su123.ID)
	require.NoError(t, err)
	return f.AvailableSeats
}

func passenger(passport string) domain.Passenger {
	return domain.Passenger{
		FirstName:      "Иван",
		LastName:       "Иванов",
		PassportNumber: passport,
		Email:          "ivan@example.com",
		DateOfBirth:    time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestNumbers(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 30, 5, 0, time.UTC)
	bk := NewBookingNumber(now)
	tk := NewTicketNumber(now)

	assert.Regexp(t, regexp.MustCompile(`^BK20250601093005[0-9A-F]{8}$`), bk)
	assert.Regexp(t, regexp.MustCompile(`^TK20250601093005[0-9A-F]{8}$`), tk)
	assert.NotEqual(t, bk, NewBookingNumber(now))
}

func TestBookingService_BookTicketBusiness(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	booking, err := env.service.BookTicket(ctx, BookTicketInput{
		FlightID:  env.su123.ID,
		Passenger: passenger("4510 000001"),
		Class:     domain.TicketClassBusiness,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, int64(1000000), booking.TotalAmountCents)
	assert.Equal(t, env.now, booking.BookingDate)
	require.Len(t, booking.Tickets, 1)
	ticket := booking.Tickets[0]
	assert.Equal(t, int64(1000000), ticket.PriceCents)
	assert.Equal(t, domain.TicketClassBusiness, ticket.Class)
	assert.Equal(t, domain.TicketStatusActive, ticket.Status)
	require.NotNil(t, ticket.Flight)
	assert.Equal(t, "SU123", ticket.Flight.FlightNumber)
	require.NotNil(t, ticket.Passenger)
	assert.Equal(t, "4510 000001", ticket.Passenger.PassportNumber)

	assert.Equal(t, 149, env.seats(t))

	found, err := env.service.GetByNumber(ctx, booking.BookingNumber)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
}

func TestBookingService_CancelRestoresSeats(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	booking, err := env.service.BookTicket(ctx, BookTicketInput{
		FlightID:  env.su123.ID,
		Passenger: passenger("4510 000001"),
		Class:     domain.TicketClassBusiness,
	})
	require.NoError(t, err)

	cancelled, err := env.service.CancelBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationDate)
	assert.Equal(t, env.now, *cancelled.CancellationDate)
	for _, ticket := range cancelled.Tickets {
		assert.Equal(t, domain.TicketStatusCancelled, ticket.Status)
		assert.NotNil(t, ticket.CancellationDate)
	}
	assert.Equal(t, 150, env.seats(t))

	_, err = env.service.CancelBooking(ctx, booking.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, 150, env.seats(t))

	_, err = env.service.CancelBooking(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_CreateBookingRules(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	_, err := env.service.CreateBooking(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBooking)

	_, err = env.service.CreateBooking(ctx, []domain.Ticket{{FlightID: env.su123.ID, PriceCents: 100}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p := passenger("4510 000002")
	require.NoError(t, env.store.Passengers().Create(ctx, &p))

	booking, err := env.service.CreateBooking(ctx, []domain.Ticket{
		{FlightID: env.su123.ID, PassengerID: p.ID, PriceCents: 500000},
		{FlightID: env.su123.ID, PassengerID: p.ID, PriceCents: 1500000, Class: domain.TicketClassFirst},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), booking.TotalAmountCents)
	assert.Equal(t, domain.TotalOf(booking.Tickets), booking.TotalAmountCents)
	require.Len(t, booking.Tickets, 2)
	assert.Equal(t, domain.TicketClassEconomy, booking.Tickets[0].Class)
	assert.NotEqual(t, booking.Tickets[0].TicketNumber, booking.Tickets[1].TicketNumber)
	assert.Equal(t, 148, env.seats(t))
}

func TestBookingService_BookTicketErrors(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	_, err := env.service.BookTicket(ctx, BookTicketInput{FlightID: 404, Passenger: passenger("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.service.BookTicket(ctx, BookTicketInput{FlightID: env.su123.ID, Passenger: passenger("1"), Class: "PREMIUM"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ok, err := env.flights.ReserveSeats(ctx, env.su123.ID, 150)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.service.BookTicket(ctx, BookTicketInput{FlightID: env.su123.ID, Passenger: passenger("1")})
	assert.ErrorIs(t, err, domain.ErrNoSeats)

	list, err := env.service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookingService_SeatsStayInRange(t *testing.T) {
	env := newEnv(t, false)
	ctx := context.Background()

	ok, err := env.flights.ReserveSeats(ctx, env.su123.ID, 148)
	require.NoError(t, err)
	require.True(t, ok)

	var booked []int64
	for i, passport := range []string{"A1", "A2", "A3"} {
		b, err := env.service.BookTicket(ctx, BookTicketInput{FlightID: env.su123.ID, Passenger: passenger(passport)})
		if i < 2 {
			require.NoError(t, err)
			booked = append(booked, b.ID)
		} else {
			assert.ErrorIs(t, err, domain.ErrNoSeats)
		}
		seats := env.seats(t)
		assert.GreaterOrEqual(t, seats, 0)
		assert.LessOrEqual(t, seats, 150)
	}

	require.NoError(t, env.flights.ReleaseSeats(ctx, env.su123.ID, 148))
	for _, id := range booked {
		_, err := env.service.CancelBooking(ctx, id)
		require.NoError(t, err)
		assert.LessOrEqual(t, env.seats(t), 150)
	}
	assert.Equal(t, 150, env.seats(t))
}

func TestBookingService_PublishesEvents(t *testing.T) {
	env := newEnv(t, true)
	ctx := context.Background()

	isCreated := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && len(e.Tickets) == 1 && e.Emails[0] == "ivan@example.com"
	})
	env.producer.On("Publish", ctx, "booking-events", mock.AnythingOfType("string"), isCreated).Return(nil).Once()
	env.producer.On("Publish", ctx, "notifications", mock.AnythingOfType("string"), isCreated).Return(nil).Once()

	booking, err := env.service.BookTicket(ctx, BookTicketInput{FlightID: env.su123.ID, Passenger: passenger("4510 000001")})
	require.NoError(t, err)

	isCancelled := mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled && e.Status == string(domain.BookingStatusCancelled)
	})
	env.producer.On("Publish", ctx, "booking-events", booking.BookingNumber, isCancelled).Return(errors.New("broker down")).Once()

	_, err = env.service.CancelBooking(ctx, booking.ID)
	require.NoError(t, err, "publish failures do not fail the cancellation")

	env.producer.AssertExpectations(t)
	env.producer.AssertNumberOfCalls(t, "Publish", 3)
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := passenger("X")
	booking := &domain.Booking{
		BookingNumber:    "BK1",
		Status:           domain.BookingStatusConfirmed,
		TotalAmountCents: 300,
		Tickets: []domain.Ticket{
			{TicketNumber: "TK1", PriceCents: 100, Class: domain.TicketClassEconomy, Passenger: &p, Flight: &domain.Flight{FlightNumber: "SU123"}},
			{TicketNumber: "TK2", PriceCents: 200, Class: domain.TicketClassBusiness, Passenger: &p},
		},
	}

	event := NewEvent(kafka.EventBookingCreated, booking, at)
	assert.Equal(t, "BK1", event.BookingNumber)
	assert.Equal(t, []string{"ivan@example.com"}, event.Emails)
	require.Len(t, event.Tickets, 2)
	assert.Equal(t, "SU123", event.Tickets[0].FlightNumber)
	assert.Equal(t, "Иван Иванов", event.Tickets[1].PassengerName)
	assert.Equal(t, at, event.OccurredAt)
}

// conflictingBookings fails the first conflicts Create calls with ErrConflict
// and remembers every booking number it was offered.
type conflictingBookings struct {
	repository.BookingRepository
	conflicts int
	numbers   []string
}

func (c *conflictingBookings) Create(ctx context.Context, booking *domain.Booking) error {
	c.numbers = append(c.numbers, booking.BookingNumber)
	if len(c.numbers) <= c.conflicts {
		return domain.ErrConflict
	}
	return c.BookingRepository.Create(ctx, booking)
}

func TestBookingService_RegeneratesNumbersOnConflict(t *testing.T) {
	tests := []struct {
		name      string
		conflicts int
		wantErr   error
		wantCalls int
		wantSeats int
	}{
		{name: "two collisions then success", conflicts: 2, wantCalls: 3, wantSeats: 149},
		{name: "gives up after three attempts", conflicts: 3, wantErr: domain.ErrConflict, wantCalls: 3, wantSeats: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, false)
			ctx := context.Background()
			repo := &conflictingBookings{BookingRepository: env.store.Bookings(), conflicts: tt.conflicts}
			service := NewBookingService(
				repo,
				env.flights,
				passengers.NewPassengerService(env.store.Passengers()),
				logger.Discard(),
				WithClock(func() time.Time { return env.now }),
			)

			booking, err := service.BookTicket(ctx, BookTicketInput{
				FlightID:  env.su123.ID,
				Passenger: passenger("4510 000042"),
				Class:     domain.TicketClassBusiness,
			})

			assert.Len(t, repo.numbers, tt.wantCalls)
			assert.Equal(t, tt.wantSeats, env.seats(t))
			seen := map[string]bool{}
			for _, n := range repo.numbers {
				assert.False(t, seen[n], "number %s reused", n)
				seen[n] = true
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, booking)
				list, listErr := env.store.Bookings().List(ctx)
				require.NoError(t, listErr)
				assert.Empty(t, list)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1000000), booking.TotalAmountCents)
			assert.Equal(t, repo.numbers[len(repo.numbers)-1], booking.BookingNumber)
		})
	}
}
