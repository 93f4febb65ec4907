package reservation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
)

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
// 24:00 is accepted as an end-of-day bound.
type TimeOfDay int

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSlot, s)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSlot, s)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidSlot, s)
	}
	if h == 24 && m == 0 {
		return MinutesPerDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: time %q out of range", ErrInvalidSlot, s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidSlot, s)
	}
	return d, nil
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Slot is a half-open interval [start, end) on one resource and date.
type Slot struct {
	resourceID uuid.UUID
	date       time.Time
	start      TimeOfDay
	end        TimeOfDay
}

func NewSlot(resourceID uuid.UUID, date time.Time, start, end TimeOfDay) (Slot, error) {
	if start < 0 || end > MinutesPerDay {
		return Slot{}, fmt.Errorf("%w: %s-%s out of range", ErrInvalidSlot, start, end)
	}
	if start >= end {
		return Slot{}, fmt.Errorf("%w: start %s must be before end %s", ErrInvalidSlot, start, end)
	}
	return Slot{
		resourceID: resourceID,
		date:       truncateDate(date),
		start:      start,
		end:        end,
	}, nil
}

func (s Slot) ResourceID() uuid.UUID { return s.resourceID }
func (s Slot) Date() time.Time       { return s.date }
func (s Slot) Start() TimeOfDay      { return s.start }
func (s Slot) End() TimeOfDay        { return s.end }

// Overlaps is true for slots on the same resource and date whose intervals intersect.
// Adjacent slots (a.end == b.start) do not overlap.
func (s Slot) Overlaps(other Slot) bool {
	if s.resourceID != other.resourceID || !s.date.Equal(other.date) {
		return false
	}
	return s.start < other.end && other.start < s.end
}

func (s Slot) Duration() time.Duration {
	return time.Duration(s.end-s.start) * time.Minute
}

func (s Slot) DurationHours() (float64, error) {
	if s.start >= s.end {
		return 0, ErrInvalidSlot
	}
	return s.Duration().Hours(), nil
}

func (s Slot) StartAt(loc *time.Location) time.Time {
	return s.at(s.start, loc)
}

func (s Slot) EndAt(loc *time.Location) time.Time {
	return s.at(s.end, loc)
}

func (s Slot) at(t TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := s.date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(t) * time.Minute)
}

// LockKey identifies the (resource, date) contention scope.
func (s Slot) LockKey() string {
	return s.resourceID.String() + "/" + s.date.Format(DateLayout)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", s.date.Format(DateLayout), s.start, s.end)
}

// Money is an amount in the currency's minor unit.
type Money struct {
	amount int64
}

func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{amount: amount}, nil
}

func (m Money) Amount() int64 {
	return m.amount
}
