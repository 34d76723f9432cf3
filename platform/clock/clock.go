// Package clock provides an injectable wall clock pinned to a civil timezone.
// Calendar-date comparisons in the pipeline go through it so tests can fix
// "now" and the zone deterministically.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the ISO calendar-date layout used for progress events.
const DateLayout = "2006-01-02"

// Clock reports the current instant and the civil zone used for calendar dates.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System is the production clock.
type System struct {
	loc *time.Location
}

// NewSystem returns a wall clock whose calendar dates are computed in loc.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

// LoadSystem resolves the named IANA zone and returns a wall clock for it.
func LoadSystem(zone string) (*System, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return NewSystem(loc), nil
}

func (s *System) Now() time.Time          { return time.Now().In(s.loc) }
func (s *System) Location() *time.Location { return s.loc }

// Fixed is a settable clock for tests and offline tooling.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
	loc *time.Location
}

// NewFixed returns a clock frozen at now, reporting dates in loc.
func NewFixed(now time.Time, loc *time.Location) *Fixed {
	if loc == nil {
		loc = time.UTC
	}
	return &Fixed{now: now, loc: loc}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now.In(f.loc)
}

func (f *Fixed) Location() *time.Location { return f.loc }

// Set moves the clock to now.
func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// Date is a civil calendar date with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the civil date of c.Now().
func Today(c Clock) Date {
	return DateOf(c.Now(), c.Location())
}

// ParseDate accepts an ISO calendar date or an RFC 3339 timestamp. Timestamps
// are converted into loc before their date is taken.
func ParseDate(raw string, loc *time.Location) (Date, bool) {
	if raw == "" {
		return Date{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return DateOf(t, loc), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DateOf(t, loc), true
	}
	return Date{}, false
}

// Midnight returns the instant the date starts in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}
