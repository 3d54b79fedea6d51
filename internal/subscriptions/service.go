package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes subscription lifecycle operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.UserSubscription, error)
	Update(ctx context.Context, userID, subID uuid.UUID, input UpdateInput) (*models.UserSubscription, error)
	Delete(ctx context.Context, userID, subID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error)
}

// CreateInput holds the validated payload to create a subscription.
type CreateInput struct {
	DrugID   uuid.UUID
	City     *string
	MaxPrice *decimal.Decimal
}

// UpdateInput holds optional mutation values. A present empty City clears
// the filter; ClearMaxPrice drops the price bound.
type UpdateInput struct {
	City          *string
	MaxPrice      *decimal.Decimal
	ClearMaxPrice bool
	IsActive      *bool
}

// Notifier runs the immediate match-and-dispatch check after a relevant
// subscription change. Failures are the pipeline's to log; they never roll
// back persistence.
type Notifier interface {
	NotifySubscription(ctx context.Context, sub models.UserSubscription) error
}

type repository interface {
	Create(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.UserSubscription, error)
	Exists(ctx context.Context, userID, drugID uuid.UUID, city *string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error)
	Update(ctx context.Context, sub *models.UserSubscription) (*models.UserSubscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type drugChecker interface {
	FindDrugByID(ctx context.Context, id uuid.UUID) (*models.Drug, error)
}

type service struct {
	repo     repository
	drugs    drugChecker
	notifier Notifier
	logg     *logger.Logger
}

// NewService constructs a subscription service instance.
func NewService(repo repository, drugs drugChecker, notifier Notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if drugs == nil {
		return nil, fmt.Errorf("drug reader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, drugs: drugs, notifier: notifier, logg: logg}, nil
}

// Create validates and persists the subscription, then fires the immediate
// match check. The check never affects the outcome of the create.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.UserSubscription, error) {
	city := normalizeCity(input.City)
	if err := validateMaxPrice(input.MaxPrice); err != nil {
		return nil, err
	}
	if _, err := s.drugs.FindDrugByID(ctx, input.DrugID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load drug")
	}

	taken, err := s.repo.Exists(ctx, userID, input.DrugID, city)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check subscription uniqueness")
	}
	if taken {
		return nil, duplicateSubscriptionError()
	}

	sub := &models.UserSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		DrugID:   input.DrugID,
		City:     city,
		MaxPrice: input.MaxPrice,
		IsActive: true,
	}
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		// two requests can race past the Exists check
		if db.IsUniqueViolation(err, "idx_subscription_user_drug_city") {
			return nil, duplicateSubscriptionError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert subscription")
	}

	s.fireNotify(ctx, *created)
	return created, nil
}

// Update applies the edit and re-runs the match check when the filters
// changed or the subscription was re-activated.
func (s *service) Update(ctx context.Context, userID, subID uuid.UUID, input UpdateInput) (*models.UserSubscription, error) {
	sub, err := s.findOwned(ctx, userID, subID)
	if err != nil {
		return nil, err
	}

	recheck := false

	if input.City != nil {
		city := normalizeCity(input.City)
		if !cityEqual(sub.City, city) {
			taken, err := s.repo.Exists(ctx, sub.UserID, sub.DrugID, city)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check subscription uniqueness")
			}
			if taken {
				return nil, duplicateSubscriptionError()
			}
			sub.City = city
			recheck = true
		}
	}

	switch {
	case input.ClearMaxPrice:
		if sub.MaxPrice != nil {
			sub.MaxPrice = nil
			recheck = true
		}
	case input.MaxPrice != nil:
		if err := validateMaxPrice(input.MaxPrice); err != nil {
			return nil, err
		}
		if sub.MaxPrice == nil || !sub.MaxPrice.Equal(*input.MaxPrice) {
			sub.MaxPrice = input.MaxPrice
			recheck = true
		}
	}

	if input.IsActive != nil && *input.IsActive != sub.IsActive {
		sub.IsActive = *input.IsActive
		if sub.IsActive {
			recheck = true
		}
	}

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_subscription_user_drug_city") {
			return nil, duplicateSubscriptionError()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update subscription")
	}

	if recheck && updated.IsActive {
		s.fireNotify(ctx, *updated)
	}
	return updated, nil
}

// Delete removes the subscription for good. No notification side effects.
func (s *service) Delete(ctx context.Context, userID, subID uuid.UUID) error {
	sub, err := s.findOwned(ctx, userID, subID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete subscription")
	}
	return nil
}

// ListForUser returns the user's subscriptions.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserSubscription, error) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list subscriptions")
	}
	return subs, nil
}

func (s *service) findOwned(ctx context.Context, userID, subID uuid.UUID) (*models.UserSubscription, error) {
	sub, err := s.repo.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load subscription")
	}
	if sub.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return sub, nil
}

func (s *service) fireNotify(ctx context.Context, sub models.UserSubscription) {
	if err := s.notifier.NotifySubscription(ctx, sub); err != nil {
		logCtx := s.logg.WithSubscriptionID(ctx, sub.ID.String())
		s.logg.Error(logCtx, "immediate notification check failed", err)
	}
}

func validateMaxPrice(maxPrice *decimal.Decimal) error {
	if maxPrice == nil {
		return nil
	}
	if !maxPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "max price must be positive").
			WithDetails(map[string]string{"field": "max_price"})
	}
	return nil
}

func normalizeCity(city *string) *string {
	if city == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*city)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cityEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func duplicateSubscriptionError() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "subscription already exists for this drug and city")
}
