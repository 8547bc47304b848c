// Package scheduler runs the periodic maintenance jobs: folding due price
// changes into live field configurations, completing elapsed bookings,
// and deleting stale empty schedule records.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/opencourt/field-booking-backend/internal/booking"
	"github.com/opencourt/field-booking-backend/internal/field"
	"github.com/opencourt/field-booking-backend/internal/schedule"
)

type Scheduler struct {
	inner gocron.Scheduler
}

// New builds the scheduler and registers the maintenance jobs. Jobs run in
// singleton mode so a slow sweep never overlaps itself.
func New(fieldService field.Service, bookingService booking.Service, scheduleService schedule.Service) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{inner: inner}

	jobs := []struct {
		name     string
		interval time.Duration
		task     func(context.Context) error
	}{
		{
			name:     "apply-due-price-changes",
			interval: 15 * time.Minute,
			task: func(ctx context.Context) error {
				n, err := fieldService.ApplyDueChanges(ctx, time.Now())
				if n > 0 {
					log.Info().Int("fields", n).Msg("applied due price changes")
				}
				return err
			},
		},
		{
			name:     "complete-elapsed-bookings",
			interval: 5 * time.Minute,
			task: func(ctx context.Context) error {
				n, err := bookingService.CompleteElapsed(ctx, time.Now())
				if n > 0 {
					log.Info().Int("bookings", n).Msg("completed elapsed bookings")
				}
				return err
			},
		},
		{
			name:     "cleanup-empty-schedule-records",
			interval: 24 * time.Hour,
			task: func(ctx context.Context) error {
				n, err := scheduleService.CleanupEmpty(ctx, time.Now())
				if n > 0 {
					log.Info().Int("records", n).Msg("cleaned up empty schedule records")
				}
				return err
			},
		},
	}

	for _, j := range jobs {
		j := j
		_, err := inner.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				if err := j.task(ctx); err != nil {
					log.Error().Err(err).Str("job", j.name).Msg("scheduler job failed")
				}
			}),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeWait),
		)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	log.Info().Msg("scheduler starting")
	s.inner.Start()
}

func (s *Scheduler) Stop() error {
	log.Info().Msg("scheduler stopping")
	return s.inner.Shutdown()
}
