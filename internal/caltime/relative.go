package caltime

import (
	"fmt"
	"math"
)

// RelativeTime is a calendar displacement. Fields are independent and never
// normalized: 70 minutes stays 70 minutes. The zero value is no displacement
// with six significant decimals.
type RelativeTime struct {
	Years        int
	Months       int
	Days         int
	Hours        int
	Minutes      int
	Microseconds int64

	dropped int
}

// NewRelativeTime builds a RelativeTime, rounding seconds to the nearest microsecond
func NewRelativeTime(years, months, days, hours, minutes int, seconds float64) RelativeTime {
	return RelativeTime{
		Years:        years,
		Months:       months,
		Days:         days,
		Hours:        hours,
		Minutes:      minutes,
		Microseconds: int64(math.Round(seconds * float64(microsPerSecond))),
	}
}

// FromAmount expresses an AmountOfTime as a RelativeTime of seconds only
func FromAmount(a AmountOfTime) RelativeTime {
	return RelativeTime{Microseconds: a.micros, dropped: a.dropped}
}

// Offset returns a RelativeTime usable as a UTC offset of hours and minutes
func Offset(hours, minutes int) RelativeTime {
	return RelativeTime{Hours: hours, Minutes: minutes}
}

// Seconds returns the seconds field
func (r RelativeTime) Seconds() float64 {
	return float64(r.Microseconds) / float64(microsPerSecond)
}

// WithSeconds returns a copy of r with the seconds field replaced
func (r RelativeTime) WithSeconds(s float64) RelativeTime {
	r.Microseconds = int64(math.Round(s * float64(microsPerSecond)))
	return r
}

// DecimalCount returns the number of significant decimals of the seconds field
func (r RelativeTime) DecimalCount() int {
	return maxDecimalCount - r.dropped
}

// WithDecimalCount returns a copy of r with n significant decimals (0-6)
func (r RelativeTime) WithDecimalCount(n int) (RelativeTime, error) {
	if err := checkRange("decimal count", int64(n), 0, maxDecimalCount); err != nil {
		return r, err
	}
	r.dropped = maxDecimalCount - n
	return r, nil
}

// Add adds r and o field by field
func (r RelativeTime) Add(o RelativeTime) RelativeTime {
	return RelativeTime{
		Years:        r.Years + o.Years,
		Months:       r.Months + o.Months,
		Days:         r.Days + o.Days,
		Hours:        r.Hours + o.Hours,
		Minutes:      r.Minutes + o.Minutes,
		Microseconds: r.Microseconds + o.Microseconds,
		dropped:      max(r.dropped, o.dropped),
	}
}

// Sub subtracts o from r field by field
func (r RelativeTime) Sub(o RelativeTime) RelativeTime {
	return r.Add(o.Neg())
}

// Neg negates every field
func (r RelativeTime) Neg() RelativeTime {
	return RelativeTime{
		Years:        -r.Years,
		Months:       -r.Months,
		Days:         -r.Days,
		Hours:        -r.Hours,
		Minutes:      -r.Minutes,
		Microseconds: -r.Microseconds,
		dropped:      r.dropped,
	}
}

// IsIdentical reports memberwise equality, decimal count included
func (r RelativeTime) IsIdentical(o RelativeTime) bool {
	return r == o
}

// Equal is IsIdentical. RelativeTimes have no ordering.
func (r RelativeTime) Equal(o RelativeTime) bool {
	return r == o
}

// IsValidAsOffsetFromUTC reports whether r is a whole hour/minute offset in [-13:00, +13:00]
func (r RelativeTime) IsValidAsOffsetFromUTC() bool {
	if r.Years != 0 || r.Months != 0 || r.Days != 0 || r.Microseconds != 0 {
		return false
	}
	m := r.Hours*60 + r.Minutes
	return m >= minOffsetMinutes && m <= maxOffsetMinutes
}

func (r RelativeTime) offsetMinutes() int {
	return r.Hours*60 + r.Minutes
}

// ToBasicISO8601Time renders a time of day as hhmmss[.f]
func (r RelativeTime) ToBasicISO8601Time() (string, error) {
	return r.isoTime("")
}

// ToExtendedISO8601Time renders a time of day as hh:mm:ss[.f]
func (r RelativeTime) ToExtendedISO8601Time() (string, error) {
	return r.isoTime(":")
}

func (r RelativeTime) isoTime(sep string) (string, error) {
	if r.Years != 0 || r.Months != 0 || r.Days != 0 {
		return "", fmt.Errorf("relative time with date fields is not a time of day: %w", ErrNotSupported)
	}
	if r.Hours < 0 || r.Minutes < 0 || r.Microseconds < 0 {
		return "", fmt.Errorf("negative relative time is not a time of day: %w", ErrNotSupported)
	}
	s := fmt.Sprintf("%02d%s%02d%s%02d", r.Hours, sep, r.Minutes, sep, r.Microseconds/microsPerSecond)
	return s + fraction(r.Microseconds%microsPerSecond, r.DecimalCount()), nil
}

// fraction renders ".ddd" truncated to decimalCount digits, or nothing for zero decimals.
func fraction(us int64, decimalCount int) string {
	if decimalCount <= 0 {
		return ""
	}
	return "." + fmt.Sprintf("%06d", us)[:decimalCount]
}

func (r RelativeTime) String() string {
	return fmt.Sprintf("%dY %dM %dD %dh %dm %s", r.Years, r.Months, r.Days, r.Hours, r.Minutes,
		Microseconds(r.Microseconds).withDropped(r.dropped))
}
