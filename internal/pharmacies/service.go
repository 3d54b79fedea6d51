package pharmacies

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes pharmacy reference data reads.
type Service interface {
	ListNetworks(ctx context.Context) ([]models.PharmacyNetwork, error)
	ListPharmacies(ctx context.Context, city string) ([]models.Pharmacy, error)
	GetPharmacy(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error)
	ListCities(ctx context.Context) ([]string, error)
}

type repository interface {
	ListNetworks(ctx context.Context) ([]models.PharmacyNetwork, error)
	ListPharmacies(ctx context.Context, city string) ([]models.Pharmacy, error)
	FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error)
	ListCities(ctx context.Context) ([]string, error)
}

type service struct {
	repo repository
}

// NewService constructs a pharmacy service instance.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pharmacy repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListNetworks(ctx context.Context) ([]models.PharmacyNetwork, error) {
	networks, err := s.repo.ListNetworks(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list networks")
	}
	return networks, nil
}

func (s *service) ListPharmacies(ctx context.Context, city string) ([]models.Pharmacy, error) {
	pharmacies, err := s.repo.ListPharmacies(ctx, city)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pharmacies")
	}
	return pharmacies, nil
}

func (s *service) GetPharmacy(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error) {
	pharmacy, err := s.repo.FindPharmacyByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pharmacy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pharmacy")
	}
	return pharmacy, nil
}

func (s *service) ListCities(ctx context.Context) ([]string, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cities")
	}
	return cities, nil
}
