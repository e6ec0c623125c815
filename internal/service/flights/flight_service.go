package flights

import (
	"context"
	"errors"

	"github.com/Domenick1991/airtickets/internal/cache"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validate"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, query domain.FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	ReserveSeats(ctx context.Context, flightID int64, count int) (bool, error)
	ReleaseSeats(ctx context.Context, flightID int64, count int) error
}

// FlightCache stores listings under opaque keys. A nil slice from GetFlights
// means a miss.
type FlightCache interface {
	GetFlights(ctx context.Context, key string) ([]domain.Flight, error)
	SetFlights(ctx context.Context, key string, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *logger.Logger
}

// NewFlightService accepts a nil cache, in which case every read goes to the repository.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, log *logger.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.cached(ctx, cache.FlightsKey(), s.repo.List)
}

// Search returns flights with free seats whose cities contain the given
// substrings, ordered by departure time.
func (s *FlightService) Search(ctx context.Context, query domain.FlightSearch) ([]domain.Flight, error) {
	return s.cached(ctx, cache.SearchKey(query), func(ctx context.Context) ([]domain.Flight, error) {
		return s.repo.Search(ctx, query)
	})
}

func (s *FlightService) cached(ctx context.Context, key string, load func(context.Context) ([]domain.Flight, error)) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, key)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			s.log.Warn("flight cache read failed", "key", key, "error", err)
		}
	}

	flights, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, key, flights); err != nil {
			s.log.Warn("flight cache write failed", "key", key, "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Create fills AvailableSeats from TotalSeats when it is left at zero.
func (s *FlightService) Create(ctx context.Context, flight *domain.Flight) error {
	if flight.AvailableSeats == 0 {
		flight.AvailableSeats = flight.TotalSeats
	}
	if err := validate.Struct(flight); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// ReserveSeats reports false when the flight is missing or has fewer than count
// free seats.
func (s *FlightService) ReserveSeats(ctx context.Context, flightID int64, count int) (bool, error) {
	if count <= 0 {
		return false, nil
	}
	err := s.repo.ReserveSeats(ctx, flightID, count)
	if errors.Is(err, domain.ErrNoSeats) || errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.Invalidate(ctx)
	return true, nil
}

// ReleaseSeats gives seats back, never beyond the flight's total.
func (s *FlightService) ReleaseSeats(ctx context.Context, flightID int64, count int) error {
	if count <= 0 {
		return nil
	}
	if err := s.repo.ReleaseSeats(ctx, flightID, count); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate drops cached listings; failures are only logged since entries expire anyway.
func (s *FlightService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flight cache invalidation failed", "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
