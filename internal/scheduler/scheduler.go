package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/robfig/cron/v3"

	"github.com/i474232898/temperature-quilt/internal/notify"
	"github.com/i474232898/temperature-quilt/internal/quilt"
)

const (
	tagDaily   = "daily-reminder"
	tagOnce    = "once-reminder"
	tagRefresh = "refresh"

	jobTimeout = 30 * time.Second
)

// Scheduler registers the daily reminder, one-off reminders and the periodic
// background refresh on a gocron scheduler.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  notify.Notifier
	location  *time.Location

	// gocron builds jobs through chained calls on the shared scheduler
	mu sync.Mutex
}

var _ quilt.ReminderScheduler = (*Scheduler)(nil)

// New creates a new Scheduler firing reminders through notifier. Times of day
// are interpreted in loc.
func New(loc *time.Location, notifier notify.Notifier) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		notifier:  notifier,
		location:  loc,
	}
}

// Start starts the underlying scheduler.
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// ScheduleDaily replaces the daily reminder with one firing every day at the
// hour and minute of at, in the scheduler's location.
func (s *Scheduler) ScheduleDaily(at time.Time) error {
	hhmm := at.In(s.location).Format("15:04")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeTag(tagDaily)
	_, err := s.scheduler.Every(1).Day().At(hhmm).Tag(tagDaily).Do(s.fireDaily)
	if err != nil {
		slog.Error("scheduler: register daily reminder failed", "at", hhmm, "error", err)
		return fmt.Errorf("schedule daily reminder at %s: %w", hhmm, err)
	}
	slog.Info("scheduler: daily reminder scheduled", "at", hhmm, "tz", s.location.String())
	return nil
}

// ScheduleDailyCron replaces the daily reminder with one driven by a standard
// five-field cron expression.
func (s *Scheduler) ScheduleDailyCron(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid reminder cron %q: %w", expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeTag(tagDaily)
	if _, err := s.scheduler.Cron(expr).Tag(tagDaily).Do(s.fireDaily); err != nil {
		slog.Error("scheduler: register cron reminder failed", "cron", expr, "error", err)
		return fmt.Errorf("schedule cron reminder %q: %w", expr, err)
	}
	slog.Info("scheduler: cron reminder scheduled", "cron", expr)
	return nil
}

// ScheduleOnce fires a single reminder after delay.
func (s *Scheduler) ScheduleOnce(delay time.Duration) error {
	if delay <= 0 {
		return fmt.Errorf("reminder delay must be positive, got %s", delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Tag(tagOnce).Do(func() {
		s.fire(notify.Reminder{
			Title:  "Temperature quilt",
			Body:   "This is what your daily reminder will look like.",
			FireAt: time.Now().In(s.location),
		})
	})
	if err != nil {
		slog.Error("scheduler: register one-off reminder failed", "delay", delay, "error", err)
		return fmt.Errorf("schedule reminder in %s: %w", delay, err)
	}
	return nil
}

// ScheduleRefresh runs refresh every interval. An interval of zero disables
// the job.
func (s *Scheduler) ScheduleRefresh(interval time.Duration, refresh func(ctx context.Context) error) error {
	if interval <= 0 {
		slog.Info("scheduler: background refresh disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeTag(tagRefresh)
	_, err := s.scheduler.Every(interval).Tag(tagRefresh).Do(func() {
		slog.Debug("scheduler: running refresh job")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		err := refresh(ctx)
		switch {
		case errors.Is(err, quilt.ErrRefreshInProgress):
			slog.Debug("scheduler: refresh skipped, one already in flight")
		case err != nil:
			slog.Warn("scheduler: refresh job failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule refresh every %s: %w", interval, err)
	}
	return nil
}

// NextDaily returns the next run of the daily reminder, if one is scheduled.
func (s *Scheduler) NextDaily() (time.Time, bool) {
	jobs, err := s.scheduler.FindJobsByTag(tagDaily)
	if err != nil || len(jobs) == 0 {
		return time.Time{}, false
	}
	next := jobs[0].NextRun()
	return next, !next.IsZero()
}

func (s *Scheduler) fireDaily() {
	s.fire(notify.DailyReminder(time.Now().In(s.location)))
}

func (s *Scheduler) fire(r notify.Reminder) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, r); err != nil {
		slog.Error("scheduler: reminder delivery failed", "title", r.Title, "error", err)
	}
}

func (s *Scheduler) removeTag(tag string) {
	if err := s.scheduler.RemoveByTag(tag); err != nil && !errors.Is(err, gocron.ErrJobNotFoundWithTag) {
		slog.Warn("scheduler: remove jobs failed", "tag", tag, "error", err)
	}
}
