package worker

import (
	"context"
	"fmt"

	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/google/uuid"
)

// NotifyJobParams configure the availability notification job.
type NotifyJobParams struct {
	Logger *logger.Logger
	Runner notifyRunner
}

type notifyRunner interface {
	Run(ctx context.Context, drugID *uuid.UUID) (int, error)
}

// NewNotifyJob builds the job that sweeps all active subscriptions.
func NewNotifyJob(params NotifyJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("notify runner required")
	}
	return &notifyJob{logg: params.Logger, runner: params.Runner}, nil
}

type notifyJob struct {
	logg   *logger.Logger
	runner notifyRunner
}

func (j *notifyJob) Name() string { return "availability-notify" }

func (j *notifyJob) Run(ctx context.Context) error {
	sent, err := j.runner.Run(ctx, nil)
	if err != nil {
		return fmt.Errorf("availability notify: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "sent", sent), "availability notify sweep complete")
	return nil
}
