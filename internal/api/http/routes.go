package httpapi

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/temperature-quilt/internal/quilt"
	"github.com/i474232898/temperature-quilt/internal/store"
)

var validate = validator.New()

const (
	// testReminderDelay is how long POST /reminders/test waits before firing.
	testReminderDelay = 5 * time.Second

	defaultRefreshTimeout = 30 * time.Second
)

// Deps are the collaborators the handlers need.
type Deps struct {
	View      *quilt.View
	Ranges    *store.MemoryRangeStore
	Prefs     quilt.PreferenceStore
	Reminders quilt.ReminderScheduler
	Location  *time.Location

	// RefreshTimeout bounds a refresh started over HTTP so a hung upstream
	// cannot hold the in-flight guard. Zero means 30s.
	RefreshTimeout time.Duration
}

// NewApp creates the Fiber app with the centralized JSON error handler.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		// Params and bodies are kept past the handler (range IDs, stored prefs).
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.RefreshTimeout <= 0 {
		d.RefreshTimeout = defaultRefreshTimeout
	}
	h := &handlers{Deps: d}

	v1 := app.Group("/api/v1")

	v1.Get("/temperatures", h.getTemperatures)
	v1.Post("/temperatures/refresh", h.refresh)
	v1.Get("/quilt", h.getQuilt)
	v1.Get("/colors", h.getColor)

	v1.Get("/ranges", h.listRanges)
	v1.Post("/ranges", h.createRange)
	v1.Put("/ranges/:id", h.updateRange)
	v1.Delete("/ranges/:id", h.deleteRange)
	v1.Post("/ranges/:id/move", h.moveRange)

	v1.Get("/preferences", h.getPreferences)
	v1.Put("/preferences", h.updatePreferences)
	v1.Post("/reminders/test", h.testReminder)
}

type handlers struct {
	Deps
}

func (h *handlers) getTemperatures(c *fiber.Ctx) error {
	return c.JSON(h.View.Snapshot())
}

func (h *handlers) refresh(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.RefreshTimeout)
	defer cancel()

	err := h.View.Refresh(ctx)
	if errors.Is(err, quilt.ErrRefreshInProgress) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    true,
			"message":  "failed to fetch temperatures",
			"snapshot": h.View.Snapshot(),
		})
	}
	return c.JSON(h.View.Snapshot())
}

func (h *handlers) getQuilt(c *fiber.Ctx) error {
	snap := h.View.Snapshot()
	return c.JSON(fiber.Map{
		"postalCode": snap.PostalCode,
		"busy":       snap.Busy,
		"rows":       quilt.BuildQuilt(snap.Records, h.Ranges.List()),
	})
}

func (h *handlers) getColor(c *fiber.Ctx) error {
	raw := c.Query("temp")
	if raw == "" {
		return fiber.NewError(fiber.StatusBadRequest, "temp query parameter is required")
	}
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return fiber.NewError(fiber.StatusBadRequest, "temp must be a finite number")
	}
	return c.JSON(fiber.Map{
		"temp":  temp,
		"color": quilt.ColorFor(temp, h.Ranges.List()),
	})
}

// rangeRequest is the body for creating or updating a range.
type rangeRequest struct {
	LowerBound *float64 `json:"lowerBound" validate:"required"`
	UpperBound *float64 `json:"upperBound" validate:"required"`
	Color      string   `json:"color" validate:"required"`
}

func (r rangeRequest) toRange() (quilt.TemperatureRange, error) {
	if *r.LowerBound >= *r.UpperBound {
		return quilt.TemperatureRange{}, errors.New("lowerBound must be less than upperBound")
	}
	color, err := quilt.NormalizeColor(r.Color)
	if err != nil {
		return quilt.TemperatureRange{}, err
	}
	return quilt.TemperatureRange{
		LowerBound: *r.LowerBound,
		UpperBound: *r.UpperBound,
		Color:      color,
	}, nil
}

func parseRange(c *fiber.Ctx) (quilt.TemperatureRange, error) {
	var req rangeRequest
	if err := c.BodyParser(&req); err != nil {
		return quilt.TemperatureRange{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return quilt.TemperatureRange{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	r, err := req.toRange()
	if err != nil {
		return quilt.TemperatureRange{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return r, nil
}

func (h *handlers) listRanges(c *fiber.Ctx) error {
	return c.JSON(h.Ranges.List())
}

func (h *handlers) createRange(c *fiber.Ctx) error {
	r, err := parseRange(c)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.Ranges.Add(r))
}

func (h *handlers) updateRange(c *fiber.Ctx) error {
	r, err := parseRange(c)
	if err != nil {
		return err
	}
	updated, err := h.Ranges.Update(strings.Clone(c.Params("id")), r)
	if err != nil {
		return rangeError(err)
	}
	return c.JSON(updated)
}

func (h *handlers) deleteRange(c *fiber.Ctx) error {
	if err := h.Ranges.Delete(c.Params("id")); err != nil {
		return rangeError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type moveRequest struct {
	Index *int `json:"index" validate:"required"`
}

func (h *handlers) moveRange(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.Ranges.Move(c.Params("id"), *req.Index); err != nil {
		return rangeError(err)
	}
	return c.JSON(h.Ranges.List())
}

func rangeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidIndex):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update ranges")
	}
}

// preferencesBody is both the response and the update request for
// /preferences. Reminder times are HH:MM in the server's time zone.
type preferencesBody struct {
	PostalCode   *string `json:"postalCode" validate:"omitempty,numeric,len=5"`
	ReminderTime *string `json:"reminderTime"`
}

func (h *handlers) getPreferences(c *fiber.Ctx) error {
	p, err := h.Prefs.Load(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load preferences")
	}

	zip := p.PostalCode
	if zip == "" {
		zip = h.View.Snapshot().PostalCode
	}
	reminder := ""
	if !p.ReminderTime.IsZero() {
		reminder = p.ReminderTime.In(h.Location).Format("15:04")
	}

	return c.JSON(preferencesBody{PostalCode: &zip, ReminderTime: &reminder})
}

func (h *handlers) updatePreferences(c *fiber.Ctx) error {
	var req preferencesBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var at time.Time
	if req.ReminderTime != nil {
		hm, err := time.Parse("15:04", strings.TrimSpace(*req.ReminderTime))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "reminderTime must be HH:MM")
		}
		now := time.Now().In(h.Location)
		at = time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, h.Location)
	}

	ctx := c.UserContext()
	if req.PostalCode != nil {
		if err := h.Prefs.SetPostalCode(ctx, *req.PostalCode); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save postal code")
		}
	}
	if req.ReminderTime != nil {
		if err := h.Prefs.SetReminderTime(ctx, at); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save reminder time")
		}
		if h.Reminders != nil {
			if err := h.Reminders.ScheduleDaily(at); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to schedule reminder")
			}
		}
	}

	return h.getPreferences(c)
}

func (h *handlers) testReminder(c *fiber.Ctx) error {
	if h.Reminders == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "reminders are not configured")
	}
	if err := h.Reminders.ScheduleOnce(testReminderDelay); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to schedule reminder")
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"scheduledIn": testReminderDelay.String(),
	})
}
