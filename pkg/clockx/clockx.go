// Package clockx supplies the current time in a single fixed zone so that
// expiry arithmetic never depends on the host's local time settings.
package clockx

import (
	"sync"
	"time"
)

// Clock is the only way code in this module should learn the current time.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock and reports it in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem returns a System clock pinned to loc. A nil loc means UTC.
func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

// LoadSystem resolves an IANA zone name such as "Asia/Taipei".
func LoadSystem(zone string) (System, error) {
	if zone == "" {
		return NewSystem(time.UTC), nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return System{}, err
	}
	return NewSystem(loc), nil
}

func (s System) Now() time.Time {
	loc := s.loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Location reports the zone this clock reports in.
func (s System) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// Manual is a settable clock for tests. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}
