package quilt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ErrRefreshInProgress is returned when a refresh is requested while another
// one is still in flight.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Snapshot is a consistent copy of the view state.
type Snapshot struct {
	PostalCode  string              `json:"postalCode"`
	Records     []TemperatureRecord `json:"records"`
	Busy        bool                `json:"busy"`
	LastError   string              `json:"lastError,omitempty"`
	RefreshedAt *time.Time          `json:"refreshedAt,omitempty"`
}

// RefreshResult is delivered exactly once by RefreshAsync.
type RefreshResult struct {
	Snapshot Snapshot
	Err      error
}

// View owns the fetched record list and the busy flag. A fetch cycle moves it
// from idle to loading and back; success replaces the records wholesale,
// failure keeps the previous records and records the error.
type View struct {
	fetcher    Fetcher
	prefs      PreferenceStore
	defaultZip string
	now        func() time.Time
	busy       atomic.Bool

	mu          sync.RWMutex
	postalCode  string
	records     []TemperatureRecord
	lastErr     error
	refreshedAt time.Time
}

// NewView creates a View. defaultZip is used until a postal code preference
// has been stored.
func NewView(fetcher Fetcher, prefs PreferenceStore, defaultZip string) *View {
	return &View{
		fetcher:    fetcher,
		prefs:      prefs,
		defaultZip: defaultZip,
		postalCode: defaultZip,
		now:        time.Now,
	}
}

// Refresh runs one fetch cycle and blocks until it completes.
func (v *View) Refresh(ctx context.Context) error {
	if !v.busy.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}
	defer v.busy.Store(false)

	zip, err := v.resolvePostalCode(ctx)
	if err != nil {
		return v.fail(zip, fmt.Errorf("load postal code: %w", err))
	}

	slog.Debug("refreshing temperatures", "postal_code", zip)
	records, err := v.fetcher.Fetch(ctx, zip)
	if err != nil {
		return v.fail(zip, err)
	}

	v.mu.Lock()
	v.postalCode = zip
	v.records = append([]TemperatureRecord(nil), records...)
	v.lastErr = nil
	v.refreshedAt = v.now().UTC()
	v.mu.Unlock()

	slog.Info("temperatures refreshed", "postal_code", zip, "records", len(records))
	return nil
}

// RefreshAsync starts a fetch cycle in the background. The returned channel
// receives exactly one result and is then closed.
func (v *View) RefreshAsync(ctx context.Context) <-chan RefreshResult {
	out := make(chan RefreshResult, 1)
	go func() {
		defer close(out)
		err := v.Refresh(ctx)
		out <- RefreshResult{Snapshot: v.Snapshot(), Err: err}
	}()
	return out
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		PostalCode: v.postalCode,
		Records:    append([]TemperatureRecord{}, v.records...),
		Busy:       v.busy.Load(),
	}
	if v.lastErr != nil {
		s.LastError = v.lastErr.Error()
	}
	if !v.refreshedAt.IsZero() {
		ts := v.refreshedAt
		s.RefreshedAt = &ts
	}
	return s
}

// Records returns a copy of the current record list.
func (v *View) Records() []TemperatureRecord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]TemperatureRecord{}, v.records...)
}

// Busy reports whether a fetch is in flight.
func (v *View) Busy() bool {
	return v.busy.Load()
}

func (v *View) fail(zip string, err error) error {
	v.mu.Lock()
	v.lastErr = err
	v.mu.Unlock()

	slog.Error("temperature refresh failed", "postal_code", zip, "error", err)
	return fmt.Errorf("refresh temperatures: %w", err)
}

func (v *View) resolvePostalCode(ctx context.Context) (string, error) {
	if v.prefs == nil {
		return v.defaultZip, nil
	}
	zip, ok, err := v.prefs.PostalCode(ctx)
	if err != nil {
		return v.defaultZip, err
	}
	if !ok || zip == "" {
		return v.defaultZip, nil
	}
	return zip, nil
}
