// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"time"

	"bonus-listing-system/logging"

	"github.com/go-co-op/gocron/v2"
)

// StartRepairScheduler re-sequences bonus order keys every interval so
// gaps left by partially failed writes close without an admin action.
// The caller shuts the returned scheduler down.
func StartRepairScheduler(seq *Sequencer, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()

			report, err := seq.Repair(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("[Scheduler] order repair failed")
				return
			}
			if report.Updated > 0 || report.Failed > 0 {
				logging.Info().Int("updated", report.Updated).Int("failed", report.Failed).Msg("🔧 [Scheduler] order keys repaired")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule order repair: %w", err)
	}

	sched.Start()
	logging.Info().Dur("interval", interval).Msg("⏰ order repair scheduler started")
	return sched, nil
}
