package ledger

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granularity time (loan ages and accrual count whole days)
// =============================================================================

// TimePoint wraps time.Time normalized to UTC midnight. All aging and
// accrual arithmetic in this engine happens in whole days.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func At(t time.Time) TimePoint {
	return TimePoint{Time: t}
}

func Today() TimePoint {
	now := time.Now()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// ParseDay parses an ISO date (YYYY-MM-DD).
func ParseDay(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t}, nil
}

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint {
	return TimePoint{Time: tp.Time.AddDate(0, 0, n)}
}

// Properties
func (tp TimePoint) IsZero() bool { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.normalize().Format("2006-01-02") }

// DaysBetween returns the whole days from 'from' to 'to'. Equivalent to
// floor((to - from) / 1 day) after day normalization.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
