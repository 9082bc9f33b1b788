package quilt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	records []TemperatureRecord
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, postalCode string) ([]TemperatureRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, postalCode)
	records, err, block, started := f.records, f.err, f.block, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return records, err
}

type memPrefs struct {
	zip      string
	reminder time.Time
	err      error
}

func (p *memPrefs) PostalCode(context.Context) (string, bool, error) {
	return p.zip, p.zip != "", p.err
}

func (p *memPrefs) SetPostalCode(_ context.Context, zip string) error {
	p.zip = zip
	return nil
}

func (p *memPrefs) ReminderTime(context.Context) (time.Time, bool, error) {
	return p.reminder, !p.reminder.IsZero(), p.err
}

func (p *memPrefs) SetReminderTime(_ context.Context, t time.Time) error {
	p.reminder = t
	return nil
}

func (p *memPrefs) Load(context.Context) (Preferences, error) {
	return Preferences{PostalCode: p.zip, ReminderTime: p.reminder}, p.err
}

func TestViewRefreshReplacesRecords(t *testing.T) {
	first := []TemperatureRecord{{ID: 1, Zip: 10001, Datetime: "2024-01-01", Temp: 30}}
	second := []TemperatureRecord{{ID: 2, Zip: 10001, Datetime: "2024-01-02", Temp: 31}}

	f := &fakeFetcher{records: first}
	v := NewView(f, nil, "10001")

	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, first, v.Records())

	f.records = second
	require.NoError(t, v.Refresh(context.Background()))
	assert.Equal(t, second, v.Records())

	snap := v.Snapshot()
	assert.False(t, snap.Busy)
	assert.Empty(t, snap.LastError)
	assert.NotNil(t, snap.RefreshedAt)
	assert.Equal(t, "10001", snap.PostalCode)
}

func TestViewRefreshFailureKeepsRecords(t *testing.T) {
	records := []TemperatureRecord{{ID: 1, Zip: 10001, Datetime: "2024-01-01", Temp: 30}}
	f := &fakeFetcher{records: records}
	v := NewView(f, nil, "10001")
	require.NoError(t, v.Refresh(context.Background()))

	boom := errors.New("boom")
	f.err = boom
	f.records = nil

	err := v.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	snap := v.Snapshot()
	assert.Equal(t, records, snap.Records)
	assert.False(t, snap.Busy)
	assert.Contains(t, snap.LastError, "boom")

	// A later success clears the error.
	f.err = nil
	f.records = records
	require.NoError(t, v.Refresh(context.Background()))
	assert.Empty(t, v.Snapshot().LastError)
}

func TestViewUsesStoredPostalCode(t *testing.T) {
	f := &fakeFetcher{}
	prefs := &memPrefs{zip: "94110"}
	v := NewView(f, prefs, "10001")

	require.NoError(t, v.Refresh(context.Background()))
	prefs.zip = ""
	require.NoError(t, v.Refresh(context.Background()))

	assert.Equal(t, []string{"94110", "10001"}, f.calls)
}

func TestViewPrefsErrorIsSurfaced(t *testing.T) {
	f := &fakeFetcher{}
	v := NewView(f, &memPrefs{err: errors.New("disk gone")}, "10001")

	err := v.Refresh(context.Background())
	require.Error(t, err)
	assert.Empty(t, f.calls)
	assert.Contains(t, v.Snapshot().LastError, "disk gone")
	assert.False(t, v.Busy())
}

func TestViewRejectsOverlappingRefresh(t *testing.T) {
	f := &fakeFetcher{
		records: []TemperatureRecord{{ID: 1}},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	v := NewView(f, nil, "10001")

	results := v.RefreshAsync(context.Background())
	<-f.started
	assert.True(t, v.Busy())
	assert.True(t, v.Snapshot().Busy)

	err := v.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	close(f.block)
	res, ok := <-results
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Len(t, res.Snapshot.Records, 1)

	_, ok = <-results
	assert.False(t, ok, "result channel should be closed after one value")
	assert.False(t, v.Busy())
	assert.Len(t, f.calls, 1)
}
