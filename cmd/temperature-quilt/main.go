package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/temperature-quilt/internal/api/http"
	"github.com/i474232898/temperature-quilt/internal/config"
	"github.com/i474232898/temperature-quilt/internal/logging"
	"github.com/i474232898/temperature-quilt/internal/notify"
	"github.com/i474232898/temperature-quilt/internal/prefs"
	"github.com/i474232898/temperature-quilt/internal/quilt"
	"github.com/i474232898/temperature-quilt/internal/quilt/tablestore"
	"github.com/i474232898/temperature-quilt/internal/scheduler"
	"github.com/i474232898/temperature-quilt/internal/store"
)

const appName = "temperature-quilt"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(cfg.AppEnv, cfg.LogLevel, appName)
	slog.SetDefault(log)

	preferences, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		log.Error("failed to open preferences", "path", cfg.PrefsPath, "error", err)
		os.Exit(1)
	}
	defer preferences.Close()

	// Zero timeout leaves the bound to the caller's context.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := tablestore.NewClient(httpClient, tablestore.Config{
		BaseURL:            cfg.TableURL,
		ViewID:             cfg.TableViewID,
		Token:              cfg.TableToken,
		TokenHeader:        cfg.TableTokenHeader,
		Limit:              cfg.TableLimit,
		FilterByPostalCode: cfg.FilterByPostalCode,
		MaxRetries:         cfg.FetchRetries,
	})

	ranges := store.NewMemoryRangeStore(quilt.DefaultRanges())
	view := quilt.NewView(fetcher, preferences, cfg.PostalCode)

	sched := scheduler.New(cfg.Location, notify.LogNotifier{Logger: log})
	sched.Start()
	defer sched.Stop()

	scheduleReminder(cfg, sched, preferences)

	if err := sched.ScheduleRefresh(cfg.RefreshInterval, view.Refresh); err != nil {
		log.Error("failed to schedule background refresh", "error", err)
	}

	// Initial load, like the screen appearing.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res := <-view.RefreshAsync(ctx)
		if res.Err != nil {
			log.Warn("initial refresh failed", "error", res.Err)
		}
	}()

	app := httpapi.NewApp(appName)

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		View:      view,
		Ranges:    ranges,
		Prefs:     preferences,
		Reminders: sched,
		Location:  cfg.Location,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("listening", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

// scheduleReminder registers the daily reminder from, in order: REMINDER_CRON,
// the stored preference, REMINDER_TIME. Failures are logged only.
func scheduleReminder(cfg *config.AppConfig, sched *scheduler.Scheduler, p *prefs.Store) {
	if cfg.ReminderCron != "" {
		if err := sched.ScheduleDailyCron(cfg.ReminderCron); err != nil {
			slog.Error("failed to schedule reminder", "error", err)
		}
		return
	}

	at, ok, err := p.ReminderTime(context.Background())
	if err != nil {
		slog.Warn("failed to read stored reminder time", "error", err)
	}
	if !ok {
		at, ok = cfg.ReminderAt(time.Now())
	}
	if !ok {
		slog.Info("no daily reminder configured")
		return
	}

	if err := sched.ScheduleDaily(at); err != nil {
		slog.Error("failed to schedule reminder", "error", err)
	}
}
