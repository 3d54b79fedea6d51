package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes availability writes and reads.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.Availability, error)
	PriceHistory(ctx context.Context, availabilityID uuid.UUID, limit int) ([]models.PriceHistory, error)
}

// UpsertInput is one availability observation from the feed or an admin.
type UpsertInput struct {
	DrugID      uuid.UUID
	PharmacyID  uuid.UUID
	Price       decimal.Decimal
	Quantity    int
	IsAvailable bool
}

type drugChecker interface {
	FindDrugByID(ctx context.Context, id uuid.UUID) (*models.Drug, error)
}

type pharmacyChecker interface {
	FindPharmacyByID(ctx context.Context, id uuid.UUID) (*models.Pharmacy, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	drugs    drugChecker
	pharms   pharmacyChecker
	now      func() time.Time
}

// NewService constructs an availability service instance.
func NewService(repo *Repository, dbClient *db.Client, drugs drugChecker, pharms pharmacyChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if drugs == nil {
		return nil, fmt.Errorf("drug reader required")
	}
	if pharms == nil {
		return nil, fmt.Errorf("pharmacy reader required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		drugs:    drugs,
		pharms:   pharms,
		now:      time.Now,
	}, nil
}

// Upsert creates or refreshes the (drug, pharmacy) row, bumps last_updated,
// and appends a price history snapshot for the recorded price.
func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.Availability, error) {
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if _, err := s.drugs.FindDrugByID(ctx, input.DrugID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load drug")
	}
	if _, err := s.pharms.FindPharmacyByID(ctx, input.PharmacyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pharmacy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load pharmacy")
	}

	var result *models.Availability
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		existing, err := txRepo.FindByDrugAndPharmacy(ctx, input.DrugID, input.PharmacyID)
		switch {
		case err == nil:
			existing.Price = input.Price
			existing.Quantity = input.Quantity
			existing.IsAvailable = input.IsAvailable
			existing.LastUpdated = s.now()
			if result, err = txRepo.Update(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update availability")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := &models.Availability{
				ID:          uuid.New(),
				DrugID:      input.DrugID,
				PharmacyID:  input.PharmacyID,
				Price:       input.Price,
				Quantity:    input.Quantity,
				IsAvailable: input.IsAvailable,
				LastUpdated: s.now(),
			}
			if result, err = txRepo.Create(ctx, row); err != nil {
				if db.IsUniqueViolation(err, "idx_availability_drug_pharmacy") {
					// concurrent feed writers raced on the same pair
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "availability already recorded")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert availability")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load availability")
		}

		if err := txRepo.AppendPriceHistory(ctx, result.ID, input.Price); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append price history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PriceHistory returns price snapshots newest first.
func (s *service) PriceHistory(ctx context.Context, availabilityID uuid.UUID, limit int) ([]models.PriceHistory, error) {
	entries, err := s.repo.ListPriceHistory(ctx, availabilityID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list price history")
	}
	return entries, nil
}
