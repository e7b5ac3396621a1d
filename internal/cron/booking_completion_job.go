package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
)

const bookingCompletionJobName = "booking-completion"

type bookingCompleter interface {
	CompleteDue(ctx context.Context) (int, error)
}

type BookingCompletionJobParams struct {
	Logger   *logger.Logger
	Bookings bookingCompleter
	Metrics  *metrics.CronJobMetrics
}

// bookingCompletionJob moves confirmed bookings whose return date has passed to completed.
type bookingCompletionJob struct {
	logg     *logger.Logger
	bookings bookingCompleter
	metrics  *metrics.CronJobMetrics
}

func NewBookingCompletionJob(params BookingCompletionJobParams) (Job, error) {
	if params.Bookings == nil {
		return nil, errors.New("bookings service required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &bookingCompletionJob{logg: logg, bookings: params.Bookings, metrics: params.Metrics}, nil
}

func (j *bookingCompletionJob) Name() string { return bookingCompletionJobName }

func (j *bookingCompletionJob) Run(ctx context.Context) error {
	completed, err := j.bookings.CompleteDue(ctx)
	// CompleteDue reports partial progress alongside a per-row error.
	j.metrics.AddAffected(bookingCompletionJobName, completed)
	j.logg.Info(j.logg.WithField(ctx, "bookings_completed", completed), "booking completion sweep finished")
	if err != nil {
		return fmt.Errorf("complete due bookings: %w", err)
	}
	return nil
}
