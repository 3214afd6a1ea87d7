package dates

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("dates: end date is before start date")

// Period is an inclusive calendar date range [Start, End]. Both endpoints
// are rented days, so a same-day period spans one day. Times are truncated
// to midnight UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Day truncates a timestamp to its calendar date in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in UTC.
func Today(now time.Time) time.Time {
	if now.IsZero() {
		now = time.Now()
	}
	return Day(now)
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidRange
	}
	if p.End.Before(p.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Days counts the rented days, both endpoints included.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Overlaps reports whether two closed ranges share at least one calendar
// day: [a,b] and [c,d] overlap iff a <= d and c <= b.
func (p Period) Overlaps(other Period) bool {
	return !p.Start.After(other.End) && !other.Start.After(p.End)
}

func (p Period) ContainsDay(t time.Time) bool {
	d := Day(t)
	return !d.Before(p.Start) && !d.After(p.End)
}
