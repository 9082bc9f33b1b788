package notify

import (
	"context"
	"log/slog"
	"time"
)

// Reminder is a notification delivered to the user.
type Reminder struct {
	Title  string
	Body   string
	FireAt time.Time
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier delivers reminders as log records.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "reminder",
		"title", r.Title,
		"body", r.Body,
		"fire_at", r.FireAt.Format(time.RFC3339),
	)
	return nil
}

// DailyReminder is the message sent by the daily job.
func DailyReminder(now time.Time) Reminder {
	return Reminder{
		Title:  "Temperature quilt",
		Body:   "Time to add today's row to your temperature quilt.",
		FireAt: now,
	}
}
