package caltime

import "fmt"

// wallMicros returns the wall clock fields as microseconds since 1970-01-01T00:00 of the same zone.
func (t CalendarTime) wallMicros() int64 {
	days := daysFromCivil(t.year, t.month, t.day)
	return days*microsPerDay + int64(t.hour)*microsPerHour + int64(t.minute)*microsPerMinute + t.micros
}

// utcMicros returns microseconds since the POSIX epoch.
func (t CalendarTime) utcMicros() int64 {
	return t.wallMicros() - int64(t.offset)*microsPerMinute
}

// setWallMicros replaces the wall clock fields from a microsecond count of the same zone.
func (t *CalendarTime) setWallMicros(us int64) {
	days := floorDiv(us, microsPerDay)
	rem := us - days*microsPerDay
	t.year, t.month, t.day = civilFromDays(days)
	t.hour = int(rem / microsPerHour)
	rem %= microsPerHour
	t.minute = int(rem / microsPerMinute)
	t.micros = rem % microsPerMinute
}

// Add applies r in calendar order: years, then months, then days, hours, minutes and
// seconds. A day past the end of the resulting month is clamped to its last day.
func (t CalendarTime) Add(r RelativeTime) (CalendarTime, error) {
	if !t.initialized {
		return t, fmt.Errorf("add to uninitialized time: %w", ErrOutOfRange)
	}
	res := t
	if r.Years != 0 {
		res.year += r.Years
		res.clampDayOfMonth()
	}
	if r.Months != 0 {
		total := int64(res.year)*12 + int64(res.month-1) + int64(r.Months)
		res.year = int(floorDiv(total, 12))
		res.month = int(total-int64(res.year)*12) + 1
		res.clampDayOfMonth()
	}
	delta := int64(r.Days)*microsPerDay + int64(r.Hours)*microsPerHour +
		int64(r.Minutes)*microsPerMinute + r.Microseconds
	if delta != 0 {
		res.setWallMicros(res.wallMicros() + delta)
	}
	if res.utcMicros() < 0 {
		return t, fmt.Errorf("adding %v to %v: %w", r, t, ErrBeforeEpoch)
	}
	if err := checkYear(res.year); err != nil {
		return t, fmt.Errorf("adding %v to %v: %w", r, t, err)
	}
	res.decimalCount = min(t.decimalCount, r.DecimalCount())
	return res, nil
}

// SubRelative applies the negation of r
func (t CalendarTime) SubRelative(r RelativeTime) (CalendarTime, error) {
	return t.Add(r.Neg())
}

// Sub returns the amount of time t-u, independent of the offsets of t and u
func (t CalendarTime) Sub(u CalendarTime) AmountOfTime {
	a := Microseconds(t.utcMicros() - u.utcMicros())
	a.dropped = maxDecimalCount - min(t.decimalCount, u.decimalCount)
	return a
}

// AmountOfTime returns how long r lasts when applied at t
func (t CalendarTime) AmountOfTime(r RelativeTime) (AmountOfTime, error) {
	end, err := t.Add(r)
	if err != nil {
		return AmountOfTime{}, err
	}
	return end.Sub(t), nil
}

// compareKey is the UTC microsecond count truncated to precision p and to t's own decimals.
func (t CalendarTime) compareKey(p Precision) int64 {
	u := t
	u.setWallMicros(t.utcMicros())
	switch p {
	case PrecisionYear:
		u.month = 1
		fallthrough
	case PrecisionMonth:
		u.day = 1
		fallthrough
	case PrecisionDay:
		u.hour = 0
		fallthrough
	case PrecisionHour:
		u.minute = 0
		fallthrough
	case PrecisionMinute:
		u.micros = 0
	}
	u.micros = truncateMicros(u.micros, t.decimalCount)
	return u.wallMicros()
}

// Compare returns -1, 0 or +1 as t is before, equal to or after u, at the coarser
// precision of the two.
func (t CalendarTime) Compare(u CalendarTime) int {
	p := min(t.precision, u.precision)
	a, b := t.compareKey(p), u.compareKey(p)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Equal reports whether t and u denote the same moment at the coarser precision
func (t CalendarTime) Equal(u CalendarTime) bool { return t.Compare(u) == 0 }

// Before reports whether t is before u
func (t CalendarTime) Before(u CalendarTime) bool { return t.Compare(u) < 0 }

// After reports whether t is after u
func (t CalendarTime) After(u CalendarTime) bool { return t.Compare(u) > 0 }

// Equivalent reports whether t and u are within tolerance of each other
func Equivalent(t, u CalendarTime, tolerance AmountOfTime) bool {
	return IsEquivalent(Microseconds(t.utcMicros()), Microseconds(u.utcMicros()), tolerance)
}

// MakeUTC rewrites t as the same moment with a zero offset
func (t *CalendarTime) MakeUTC() error {
	return t.moveTo(0)
}

// MakeLocal rewrites t as the same moment at the given offset
func (t *CalendarTime) MakeLocal(offset RelativeTime) error {
	if !offset.IsValidAsOffsetFromUTC() {
		return fmt.Errorf("invalid UTC offset %v: %w", offset, ErrOutOfRange)
	}
	return t.moveTo(offset.offsetMinutes())
}

func (t *CalendarTime) moveTo(offset int) error {
	if t.offset == offset {
		return nil
	}
	u := *t
	u.setWallMicros(t.utcMicros() + int64(offset)*microsPerMinute)
	u.offset = offset
	if u.year < epochYear {
		return fmt.Errorf("moving %v to offset %d: %w", *t, offset, ErrBeforeEpoch)
	}
	*t = u
	return nil
}

// ToPosixTime returns seconds since the epoch, rounded to the nearest second
func (t CalendarTime) ToPosixTime() int64 {
	return floorDiv(t.utcMicros()+microsPerSecond/2, microsPerSecond)
}

// FromPosixTime returns the UTC moment sec seconds after the epoch
func FromPosixTime(sec int64) (CalendarTime, error) {
	if sec < 0 {
		return CalendarTime{}, fmt.Errorf("posix time %d: %w", sec, ErrBeforeEpoch)
	}
	t := CalendarTime{decimalCount: maxDecimalCount, precision: PrecisionSecond, initialized: true}
	t.setWallMicros(sec * microsPerSecond)
	if err := checkYear(t.year); err != nil {
		return CalendarTime{}, err
	}
	return t, nil
}
