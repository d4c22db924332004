package cmd

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reminderTimeout        = 30 * time.Minute
	sessionCleanupSchedule = "@hourly"
	sessionCleanTimeout    = time.Minute
)

// Scheduler runs the periodic jobs until ctx is done. Running jobs are
// allowed to finish before it returns.
func Scheduler(ctx context.Context, reminders usecase.ReminderService, cfg utils.ReminderConfig, log *zap.Logger) error {
	log = log.With(zap.String("component", "scheduler"))
	c := cron.New()

	if cfg.Enabled {
		_, err := c.AddFunc(cfg.Cron, func() {
			jobCtx, cancel := context.WithTimeout(ctx, reminderTimeout)
			defer cancel()
			if _, err := reminders.SendUpcomingReminders(jobCtx); err != nil {
				log.Error("Reminder run failed", zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule reminders %q: %w", cfg.Cron, err)
		}
	}

	_, err := c.AddFunc(sessionCleanupSchedule, func() {
		jobCtx, cancel := context.WithTimeout(ctx, sessionCleanTimeout)
		defer cancel()
		if _, err := reminders.CleanSessions(jobCtx); err != nil {
			log.Error("Session cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}

	c.Start()
	log.Info("Scheduler started", zap.Bool("reminders", cfg.Enabled), zap.String("cron", cfg.Cron))

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("Scheduler stopped")
	return nil
}
