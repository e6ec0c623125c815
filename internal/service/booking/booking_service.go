package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
)

const maxNumberAttempts = 3

type BookingUseCase interface {
	CreateBooking(ctx context.Context, tickets []domain.Ticket) (*domain.Booking, error)
	BookTicket(ctx context.Context, input BookTicketInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Flights is the part of the flight service bookings depend on.
type Flights interface {
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Invalidate(ctx context.Context)
}

type Passengers interface {
	FindOrCreate(ctx context.Context, passenger domain.Passenger) (*domain.Passenger, bool, error)
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            Flights
	passengers         Passengers
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
	log                *logger.Logger
}

// BookTicketInput describes a single-passenger purchase on one flight.
type BookTicketInput struct {
	FlightID  int64              `json:"flight_id" binding:"required"`
	Passenger domain.Passenger   `json:"passenger"`
	Class     domain.TicketClass `json:"class"`
}

type BookingServiceOption func(*BookingService)

// WithProducer enables booking events on topic.
func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights Flights,
	passengers Passengers,
	log *logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:   bookings,
		flights:    flights,
		passengers: passengers,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking persists a confirmed booking for tickets whose flight, passenger,
// class and price are already set. The total is the sum of ticket prices. Seats
// are reserved in the same transaction as the inserts.
func (s *BookingService) CreateBooking(ctx context.Context, tickets []domain.Ticket) (*domain.Booking, error) {
	if len(tickets) == 0 {
		return nil, domain.ErrEmptyBooking
	}
	now := s.now()

	owned := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		if t.FlightID <= 0 || t.PassengerID <= 0 {
			return nil, fmt.Errorf("%w: ticket %d needs a flight and a passenger", domain.ErrValidation, i+1)
		}
		if t.PriceCents < 0 {
			return nil, fmt.Errorf("%w: ticket %d has a negative price", domain.ErrValidation, i+1)
		}
		if t.Class == "" {
			t.Class = domain.TicketClassEconomy
		}
		if t.Status == "" {
			t.Status = domain.TicketStatusActive
		}
		if t.BookingDate.IsZero() {
			t.BookingDate = now
		}
		t.ID, t.BookingID, t.CancellationDate = 0, nil, nil
		owned[i] = t
	}

	booking := &domain.Booking{
		Status:           domain.BookingStatusConfirmed,
		BookingDate:      now,
		TotalAmountCents: domain.TotalOf(owned),
		Tickets:          owned,
	}

	var err error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		booking.BookingNumber = NewBookingNumber(now)
		for i := range booking.Tickets {
			booking.Tickets[i].TicketNumber = NewTicketNumber(now)
		}
		if err = s.bookings.Create(ctx, booking); !errors.Is(err, domain.ErrConflict) {
			break
		}
		s.log.Warn("booking number collision, regenerating", "attempt", attempt+1)
	}
	if err != nil {
		return nil, err
	}
	s.flights.Invalidate(ctx)

	full, err := s.bookings.GetByID(ctx, booking.ID)
	if err != nil {
		s.log.Warn("reload created booking failed", "booking", booking.BookingNumber, "error", err)
		full = booking
	}

	s.log.Info("booking created", "booking", full.BookingNumber, "tickets", len(full.Tickets), "total_cents", full.TotalAmountCents)
	if err := s.publish(ctx, kafka.EventBookingCreated, full); err != nil {
		s.log.Warn("failed to publish booking event", "type", kafka.EventBookingCreated, "booking", full.BookingNumber, "error", err)
	}
	return full, nil
}

// BookTicket finds or registers the passenger, prices the ticket by class and
// creates a one-ticket booking.
func (s *BookingService) BookTicket(ctx context.Context, input BookTicketInput) (*domain.Booking, error) {
	class := input.Class
	if class == "" {
		class = domain.TicketClassEconomy
	}
	if _, err := domain.ParseTicketClass(string(class)); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if flight.AvailableSeats < 1 {
		return nil, fmt.Errorf("flight %s: %w", flight.FlightNumber, domain.ErrNoSeats)
	}

	passenger, _, err := s.passengers.FindOrCreate(ctx, input.Passenger)
	if err != nil {
		return nil, err
	}

	return s.CreateBooking(ctx, []domain.Ticket{{
		FlightID:    flight.ID,
		PassengerID: passenger.ID,
		PriceCents:  class.Price(flight.BasePriceCents),
		Class:       class,
		Status:      domain.TicketStatusActive,
	}})
}

// CancelBooking moves a booking and all its tickets to Cancelled and returns
// their seats to the flights. It fails with domain.ErrNotFound or
// domain.ErrAlreadyCancelled.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	cancelled, err := s.bookings.Cancel(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.flights.Invalidate(ctx)

	s.log.Info("booking cancelled", "booking", cancelled.BookingNumber)
	if err := s.publish(ctx, kafka.EventBookingCancelled, cancelled); err != nil {
		s.log.Warn("failed to publish booking event", "type", kafka.EventBookingCancelled, "booking", cancelled.BookingNumber, "error", err)
	}
	return cancelled, nil
}

func (s *BookingService) List(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.GetByNumber(ctx, number)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := NewEvent(eventType, booking, s.now())
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingNumber, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.BookingNumber, event)
	}
	return nil
}

// NewEvent flattens a booking into the message published to Kafka.
func NewEvent(eventType string, booking *domain.Booking, at time.Time) kafka.BookingEvent {
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingNumber: booking.BookingNumber,
		Status:        string(booking.Status),
		TotalCents:    booking.TotalAmountCents,
		Emails:        []string{},
		Tickets:       make([]kafka.TicketInfo, 0, len(booking.Tickets)),
		OccurredAt:    at,
	}
	seen := make(map[string]bool)
	for _, t := range booking.Tickets {
		info := kafka.TicketInfo{TicketNumber: t.TicketNumber, Class: string(t.Class), PriceCents: t.PriceCents}
		if t.Flight != nil {
			info.FlightNumber = t.Flight.FlightNumber
		}
		if t.Passenger != nil {
			info.PassengerName = t.Passenger.FullName()
			if email := t.Passenger.Email; email != "" && !seen[email] {
				seen[email] = true
				event.Emails = append(event.Emails, email)
			}
		}
		event.Tickets = append(event.Tickets, info)
	}
	return event
}

var _ BookingUseCase = (*BookingService)(nil)
