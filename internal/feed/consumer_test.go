package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/avolkov/pharmtrack-backend/internal/availability"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	pkgerrors "github.com/avolkov/pharmtrack-backend/pkg/errors"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubUpserter struct {
	inputs []availability.UpsertInput
	err    error
}

func (s *stubUpserter) Upsert(_ context.Context, input availability.UpsertInput) (*models.Availability, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Availability{ID: uuid.New(), DrugID: input.DrugID, PharmacyID: input.PharmacyID}, nil
}

func newConsumer(t *testing.T, offers *stubUpserter) *Consumer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	c, err := NewConsumer(offers, &pubsub.Subscriber{}, logg)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return c
}

func buildMessage(t *testing.T, event availabilityEvent) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &pubsub.Message{Data: data}
}

func TestProcessAppliesEvent(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{}
	c := newConsumer(t, offers)
	event := availabilityEvent{
		DrugID:      uuid.New(),
		PharmacyID:  uuid.New(),
		Price:       "149.90",
		Quantity:    7,
		IsAvailable: true,
	}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(offers.inputs) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(offers.inputs))
	}
	got := offers.inputs[0]
	if got.DrugID != event.DrugID || got.PharmacyID != event.PharmacyID {
		t.Fatal("event ids not forwarded")
	}
	if got.Price.StringFixed(2) != "149.90" {
		t.Fatalf("price parsed as %s", got.Price)
	}
	if got.Quantity != 7 || !got.IsAvailable {
		t.Fatalf("quantity/availability not forwarded: %+v", got)
	}
}

func TestProcessAcksMalformedJSON(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{}
	c := newConsumer(t, offers)

	result := c.process(context.Background(), &pubsub.Message{Data: []byte("{not json")})
	if !result.ack || result.nack {
		t.Fatalf("malformed payload must ack, got %+v", result)
	}
	if len(offers.inputs) != 0 {
		t.Fatal("malformed payload must not reach the service")
	}
}

func TestProcessAcksMissingIDs(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{}
	c := newConsumer(t, offers)
	event := availabilityEvent{PharmacyID: uuid.New(), Price: "10.00"}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(offers.inputs) != 0 {
		t.Fatal("event without drug id must not reach the service")
	}
}

func TestProcessAcksUnparseablePrice(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{}
	c := newConsumer(t, offers)
	event := availabilityEvent{DrugID: uuid.New(), PharmacyID: uuid.New(), Price: "abc"}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(offers.inputs) != 0 {
		t.Fatal("bad price must not reach the service")
	}
}

func TestProcessAcksUnknownReference(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{err: pkgerrors.New(pkgerrors.CodeNotFound, "drug not found")}
	c := newConsumer(t, offers)
	event := availabilityEvent{DrugID: uuid.New(), PharmacyID: uuid.New(), Price: "10.00"}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.ack || result.nack {
		t.Fatalf("unknown reference must ack, got %+v", result)
	}
}

func TestProcessNacksDependencyFailure(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("connection reset"), "db: upsert availability")}
	c := newConsumer(t, offers)
	event := availabilityEvent{DrugID: uuid.New(), PharmacyID: uuid.New(), Price: "10.00"}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.nack {
		t.Fatalf("dependency failure must nack for redelivery, got %+v", result)
	}
}

func TestProcessNacksUncodedError(t *testing.T) {
	t.Parallel()

	offers := &stubUpserter{err: errors.New("boom")}
	c := newConsumer(t, offers)
	event := availabilityEvent{DrugID: uuid.New(), PharmacyID: uuid.New(), Price: "10.00"}

	result := c.process(context.Background(), buildMessage(t, event))
	if !result.nack {
		t.Fatalf("unclassified failure must nack, got %+v", result)
	}
}
