package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/google/uuid"
)

type stubRunner struct {
	sent  int
	err   error
	drugs []*uuid.UUID
}

func (s *stubRunner) Run(_ context.Context, drugID *uuid.UUID) (int, error) {
	s.drugs = append(s.drugs, drugID)
	return s.sent, s.err
}

func TestNotifyJobSweepsAllSubscriptions(t *testing.T) {
	runner := &stubRunner{sent: 3}
	job, err := NewNotifyJob(NotifyJobParams{
		Logger: logger.New(logger.Options{ServiceName: "worker-test"}),
		Runner: runner,
	})
	if err != nil {
		t.Fatalf("NewNotifyJob: %v", err)
	}
	if job.Name() != "availability-notify" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(runner.drugs) != 1 || runner.drugs[0] != nil {
		t.Fatalf("sweep must run unscoped, got %v", runner.drugs)
	}
}

func TestNotifyJobSurfacesRunnerError(t *testing.T) {
	runner := &stubRunner{err: errors.New("db down")}
	job, err := NewNotifyJob(NotifyJobParams{
		Logger: logger.New(logger.Options{ServiceName: "worker-test"}),
		Runner: runner,
	})
	if err != nil {
		t.Fatalf("NewNotifyJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected runner error to surface")
	}
}
