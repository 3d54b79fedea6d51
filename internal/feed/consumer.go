package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// availabilityEvent is one pharmacy feed update on the wire. Price travels as
// a string to keep decimal precision intact.
type availabilityEvent struct {
	DrugID      uuid.UUID `json:"drug_id"`
	PharmacyID  uuid.UUID `json:"pharmacy_id"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	IsAvailable bool      `json:"is_available"`
}

type upserter interface {
	Upsert(ctx context.Context, input availability.UpsertInput) (*models.Availability, error)
}

// Consumer applies pharmacy availability feed events from Pub/Sub.
type Consumer struct {
	offers       upserter
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer constructs a consumer that watches the provided subscription.
func NewConsumer(offers upserter, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if offers == nil {
		return nil, errors.New("availability service is required")
	}
	if subscription == nil {
		return nil, errors.New("feed subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{offers: offers, subscription: subscription, logg: logg}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var event availabilityEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Error(c.logg.WithFields(logCtx, map[string]any{
			"payload_preview": previewBytes(msg.Data, 800),
			"payload_len":     len(msg.Data),
		}), "failed to unmarshal feed event", err)
		return processResult{ack: true}
	}

	if event.DrugID == uuid.Nil || event.PharmacyID == uuid.Nil {
		c.logg.Error(logCtx, "feed event missing drug or pharmacy id", fmt.Errorf("empty id"))
		return processResult{ack: true}
	}

	price, err := decimal.NewFromString(strings.TrimSpace(event.Price))
	if err != nil {
		c.logg.Error(c.logg.WithField(logCtx, "price", event.Price), "feed event carries unparseable price", err)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"drug_id":     event.DrugID.String(),
		"pharmacy_id": event.PharmacyID.String(),
	})

	_, err = c.offers.Upsert(ctx, availability.UpsertInput{
		DrugID:      event.DrugID,
		PharmacyID:  event.PharmacyID,
		Price:       price,
		Quantity:    event.Quantity,
		IsAvailable: event.IsAvailable,
	})
	if err != nil {
		return c.handleUpsertError(logCtx, err)
	}

	c.logg.Info(logCtx, "availability feed event applied")
	return processResult{ack: true}
}

// handleUpsertError decides redelivery. Bad data never heals, so validation
// and unknown-reference failures ack; infrastructure failures nack for retry.
func (c *Consumer) handleUpsertError(ctx context.Context, err error) processResult {
	c.logg.Error(ctx, "failed to apply feed event", err)
	if coded := pkgerrors.As(err); coded != nil {
		switch coded.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeConflict:
			return processResult{ack: true}
		}
	}
	return processResult{nack: true}
}

func previewBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
