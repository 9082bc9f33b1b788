package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/temperature-quilt/internal/quilt"
)

var (
	// ErrNotFound is returned when no range has the given ID.
	ErrNotFound = errors.New("temperature range not found")
	// ErrInvalidIndex is returned by Move for an out-of-bounds target.
	ErrInvalidIndex = errors.New("range index out of bounds")
)

// MemoryRangeStore is a concurrency-safe, ordered, in-memory list of
// temperature ranges. Order is significant: the first matching range colors
// a temperature.
type MemoryRangeStore struct {
	mu     sync.RWMutex
	ranges []quilt.TemperatureRange
}

var _ quilt.RangeStore = (*MemoryRangeStore)(nil)

// NewMemoryRangeStore creates a store seeded with initial, in order. Ranges
// without an ID are assigned one.
func NewMemoryRangeStore(initial []quilt.TemperatureRange) *MemoryRangeStore {
	s := &MemoryRangeStore{}
	s.Replace(initial)
	return s
}

// List returns a copy of the ranges in order.
func (s *MemoryRangeStore) List() []quilt.TemperatureRange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]quilt.TemperatureRange, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// Get returns the range with the given ID.
func (s *MemoryRangeStore) Get(id string) (quilt.TemperatureRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return quilt.TemperatureRange{}, ErrNotFound
	}
	return s.ranges[i], nil
}

// Add appends r at the end of the list with a fresh ID and returns it.
func (s *MemoryRangeStore) Add(r quilt.TemperatureRange) quilt.TemperatureRange {
	r.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ranges = append(s.ranges, r)
	return r
}

// Update replaces the bounds and color of the range with the given ID,
// keeping its position.
func (s *MemoryRangeStore) Update(id string, r quilt.TemperatureRange) (quilt.TemperatureRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return quilt.TemperatureRange{}, ErrNotFound
	}
	r.ID = id
	s.ranges[i] = r
	return r, nil
}

// Delete removes the range with the given ID.
func (s *MemoryRangeStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.ranges = append(s.ranges[:i], s.ranges[i+1:]...)
	return nil
}

// Move places the range with the given ID at index, shifting the others.
func (s *MemoryRangeStore) Move(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.indexOf(id)
	if from < 0 {
		return ErrNotFound
	}
	if index < 0 || index >= len(s.ranges) {
		return ErrInvalidIndex
	}
	if from == index {
		return nil
	}

	r := s.ranges[from]
	s.ranges = append(s.ranges[:from], s.ranges[from+1:]...)
	s.ranges = append(s.ranges[:index], append([]quilt.TemperatureRange{r}, s.ranges[index:]...)...)
	return nil
}

// Replace swaps the whole list for ranges.
func (s *MemoryRangeStore) Replace(ranges []quilt.TemperatureRange) {
	next := make([]quilt.TemperatureRange, len(ranges))
	copy(next, ranges)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = uuid.NewString()
		}
	}

	s.mu.Lock()
	s.ranges = next
	s.mu.Unlock()
}

func (s *MemoryRangeStore) indexOf(id string) int {
	for i, r := range s.ranges {
		if r.ID == id {
			return i
		}
	}
	return -1
}
