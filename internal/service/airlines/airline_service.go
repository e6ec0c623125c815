package airlines

import (
	"context"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/validate"
)

type AirlineUseCase interface {
	List(ctx context.Context) ([]domain.Airline, error)
	GetByID(ctx context.Context, id int64) (*domain.Airline, error)
	Create(ctx context.Context, airline *domain.Airline) error
}

type AirlineService struct {
	repo repository.AirlineRepository
}

func NewAirlineService(repo repository.AirlineRepository) *AirlineService {
	return &AirlineService{repo: repo}
}

func (s *AirlineService) List(ctx context.Context) ([]domain.Airline, error) {
	return s.repo.List(ctx)
}

func (s *AirlineService) GetByID(ctx context.Context, id int64) (*domain.Airline, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AirlineService) Create(ctx context.Context, airline *domain.Airline) error {
	if err := validate.Struct(airline); err != nil {
		return err
	}
	return s.repo.Create(ctx, airline)
}

var _ AirlineUseCase = (*AirlineService)(nil)
