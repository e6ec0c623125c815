package passengers

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validate"
)

type PassengerUseCase interface {
	List(ctx context.Context) ([]domain.Passenger, error)
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	GetByPassport(ctx context.Context, passportNumber string) (*domain.Passenger, error)
	Create(ctx context.Context, passenger *domain.Passenger) error
	FindOrCreate(ctx context.Context, passenger domain.Passenger) (*domain.Passenger, bool, error)
	Update(ctx context.Context, passenger *domain.Passenger) error
}

type PassengerService struct {
	repo repository.PassengerRepository
}

func NewPassengerService(repo repository.PassengerRepository) *PassengerService {
	return &PassengerService{repo: repo}
}

func (s *PassengerService) List(ctx context.Context) ([]domain.Passenger, error) {
	return s.repo.List(ctx)
}

func (s *PassengerService) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PassengerService) GetByPassport(ctx context.Context, passportNumber string) (*domain.Passenger, error) {
	return s.repo.GetByPassport(ctx, strings.TrimSpace(passportNumber))
}

func (s *PassengerService) Create(ctx context.Context, passenger *domain.Passenger) error {
	normalize(passenger)
	if err := validate.Struct(passenger); err != nil {
		return err
	}
	return s.repo.Create(ctx, passenger)
}

// FindOrCreate returns the passenger holding the passport number, creating it
// from p when none exists. The bool reports whether a record was created.
// Details of an existing passenger are left untouched.
func (s *PassengerService) FindOrCreate(ctx context.Context, p domain.Passenger) (*domain.Passenger, bool, error) {
	normalize(&p)
	existing, err := s.repo.GetByPassport(ctx, p.PassportNumber)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	p.ID = 0
	if err := s.Create(ctx, &p); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// created concurrently between lookup and insert
			existing, lookupErr := s.repo.GetByPassport(ctx, p.PassportNumber)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return &p, true, nil
}

// Update overwrites names, passport, phone and date of birth. The e-mail cannot
// be changed after creation.
func (s *PassengerService) Update(ctx context.Context, passenger *domain.Passenger) error {
	normalize(passenger)
	if err := validate.Struct(passenger); err != nil {
		return err
	}
	return s.repo.Update(ctx, passenger)
}

func normalize(p *domain.Passenger) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.PassportNumber = strings.TrimSpace(p.PassportNumber)
	p.Email = strings.TrimSpace(p.Email)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
}

var _ PassengerUseCase = (*PassengerService)(nil)
