package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/mailer"
	"github.com/avolkov/pharmtrack-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// matchCap bounds how many offers a single digest lists.
const matchCap = 10

// Service runs the subscription match-and-dispatch pipeline. It powers both
// the immediate check after a subscription change and the periodic batch run.
type Service interface {
	NotifySubscription(ctx context.Context, sub models.UserSubscription) error
	Run(ctx context.Context, drugID *uuid.UUID) (int, error)
}

type subscriptionSource interface {
	ListActive(ctx context.Context, drugID *uuid.UUID) ([]models.UserSubscription, error)
}

type matchFinder interface {
	FindMatches(ctx context.Context, q availability.MatchQuery) ([]models.Availability, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type drugReader interface {
	FindDrugByID(ctx context.Context, id uuid.UUID) (*models.Drug, error)
}

type service struct {
	subs    subscriptionSource
	offers  matchFinder
	users   userReader
	drugs   drugReader
	sender  mailer.Sender
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger
	cfg     config.NotifyConfig
}

// NewService constructs the notification pipeline.
func NewService(
	subs subscriptionSource,
	offers matchFinder,
	users userReader,
	drugs drugReader,
	sender mailer.Sender,
	dispatchMetrics *metrics.DispatchMetrics,
	logg *logger.Logger,
	cfg config.NotifyConfig,
) (Service, error) {
	if subs == nil {
		return nil, fmt.Errorf("subscription source required")
	}
	if offers == nil {
		return nil, fmt.Errorf("match finder required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if drugs == nil {
		return nil, fmt.Errorf("drug reader required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		subs:    subs,
		offers:  offers,
		users:   users,
		drugs:   drugs,
		sender:  sender,
		metrics: dispatchMetrics,
		logg:    logg,
		cfg:     cfg,
	}, nil
}

// NotifySubscription checks one subscription against current stock and mails
// the digest when matches exist. Inactive subscriptions and opted-out
// recipients are skipped without error.
func (s *service) NotifySubscription(ctx context.Context, sub models.UserSubscription) error {
	_, err := s.notifyOne(ctx, sub)
	return err
}

// Run checks every active subscription, optionally scoped to one drug, and
// returns how many digests went out. Failures on individual subscriptions
// are logged and folded; the rest of the run proceeds.
func (s *service) Run(ctx context.Context, drugID *uuid.UUID) (int, error) {
	logCtx := ctx
	if drugID != nil {
		logCtx = s.logg.WithDrugID(ctx, drugID.String())
	}

	subs, err := s.subs.ListActive(ctx, drugID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active subscriptions")
	}

	sent := 0
	var failures error
	for _, sub := range subs {
		dispatched, err := s.notifyOne(ctx, sub)
		if err != nil {
			subCtx := s.logg.WithSubscriptionID(logCtx, sub.ID.String())
			s.logg.Error(subCtx, "subscription notification failed", err)
			failures = multierr.Append(failures, err)
			continue
		}
		if dispatched {
			sent++
		}
	}

	if failures != nil {
		s.logg.Error(s.logg.WithField(logCtx, "sent", sent), "notification run finished with errors", failures)
	} else {
		s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
			"checked": len(subs),
			"sent":    sent,
		}), "notification run finished")
	}
	return sent, nil
}

func (s *service) notifyOne(ctx context.Context, sub models.UserSubscription) (bool, error) {
	if !sub.IsActive {
		return false, nil
	}
	logCtx := s.logg.WithSubscriptionID(ctx, sub.ID.String())

	matches, err := s.offers.FindMatches(ctx, availability.MatchQuery{
		DrugID:   sub.DrugID,
		City:     sub.City,
		MaxPrice: normalizeMaxPrice(sub.MaxPrice),
		Limit:    matchCap,
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find matches")
	}
	if len(matches) == 0 {
		s.logg.Info(logCtx, "notification suppressed, no matching stock")
		s.metrics.IncSuppressed()
		return false, nil
	}

	user, err := s.loadUser(ctx, sub)
	if err != nil {
		return false, err
	}
	if !user.IsActive || !user.EmailNotifications {
		s.logg.Info(s.logg.WithUserID(logCtx, user.ID.String()), "notification suppressed, recipient opted out")
		s.metrics.IncSuppressed()
		return false, nil
	}

	drug, err := s.loadDrug(ctx, sub)
	if err != nil {
		return false, err
	}

	subject, body := BuildDigest(*user, *drug, sub, matches, s.cfg.SiteBaseURL)
	if err := s.sender.Send(ctx, mailer.Message{To: user.Email, Subject: subject, Body: body}); err != nil {
		s.metrics.IncFailed()
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mail: send digest")
	}

	s.metrics.IncSent()
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"user_id": user.ID.String(),
		"matches": len(matches),
	}), "availability digest sent")
	return true, nil
}

func (s *service) loadUser(ctx context.Context, sub models.UserSubscription) (*models.User, error) {
	if sub.User != nil {
		return sub.User, nil
	}
	user, err := s.users.FindByID(ctx, sub.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

func (s *service) loadDrug(ctx context.Context, sub models.UserSubscription) (*models.Drug, error) {
	if sub.Drug != nil {
		return sub.Drug, nil
	}
	drug, err := s.drugs.FindDrugByID(ctx, sub.DrugID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription drug not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load drug")
	}
	return drug, nil
}

func normalizeMaxPrice(maxPrice *decimal.Decimal) *decimal.Decimal {
	if maxPrice == nil {
		return nil
	}
	copied := *maxPrice
	return &copied
}
