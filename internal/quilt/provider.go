package quilt

import (
	"context"
	"time"
)

// Fetcher retrieves the daily temperature records for a postal code.
type Fetcher interface {
	Fetch(ctx context.Context, postalCode string) ([]TemperatureRecord, error)
}

// RangeStore holds the user's ordered color ranges.
type RangeStore interface {
	List() []TemperatureRange
}

// PreferenceStore persists the postal code and the reminder time.
type PreferenceStore interface {
	PostalCode(ctx context.Context) (string, bool, error)
	SetPostalCode(ctx context.Context, zip string) error
	ReminderTime(ctx context.Context) (time.Time, bool, error)
	SetReminderTime(ctx context.Context, t time.Time) error
	Load(ctx context.Context) (Preferences, error)
}

// ReminderScheduler registers reminder notifications with the host.
type ReminderScheduler interface {
	ScheduleDaily(at time.Time) error
	ScheduleOnce(delay time.Duration) error
}
