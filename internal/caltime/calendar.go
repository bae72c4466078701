// Package caltime provides exact calendar arithmetic with explicit UTC offsets.
package caltime

import (
	"fmt"
	"math"
)

// Precision tells which fields of a CalendarTime are significant
type Precision int

const (
	PrecisionUnknown Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
	PrecisionHour
	PrecisionMinute
	PrecisionSecond
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionHour:
		return "hour"
	case PrecisionMinute:
		return "minute"
	case PrecisionSecond:
		return "second"
	}
	return "unknown"
}

// CalendarTime is an absolute moment with an explicit offset from UTC.
// The zero value is uninitialized; see IsInitialized.
type CalendarTime struct {
	year         int
	month        int
	day          int
	hour         int
	minute       int
	micros       int64 // second and fraction, 0..59,999,999
	decimalCount int
	offset       int // minutes from UTC
	precision    Precision
	initialized  bool
}

// New returns a CalendarTime with six significant decimals and second precision
func New(year, month, day, hour, minute int, second float64, offset RelativeTime) (CalendarTime, error) {
	return NewWithDecimals(year, month, day, hour, minute, second, maxDecimalCount, offset)
}

// NewWithDecimals returns a CalendarTime with decimalCount significant decimals
func NewWithDecimals(year, month, day, hour, minute int, second float64, decimalCount int, offset RelativeTime) (CalendarTime, error) {
	if !offset.IsValidAsOffsetFromUTC() {
		return CalendarTime{}, fmt.Errorf("invalid UTC offset %v: %w", offset, ErrOutOfRange)
	}
	us := int64(math.Round(second * float64(microsPerSecond)))
	return build(year, month, day, hour, minute, us, decimalCount, offset.offsetMinutes(), PrecisionSecond)
}

// NewDate returns a date-only CalendarTime at midnight UTC with day precision
func NewDate(year, month, day int) (CalendarTime, error) {
	return build(year, month, day, 0, 0, 0, 0, 0, PrecisionDay)
}

// build validates all fields and rolls a day past the end of the month into the next month.
func build(year, month, day, hour, minute int, us int64, decimalCount, offset int, p Precision) (CalendarTime, error) {
	t := CalendarTime{precision: p}
	checks := []error{
		checkYear(year),
		checkRange("month", int64(month), 1, 12),
		checkRange("day", int64(day), 1, 31),
		checkRange("hour", int64(hour), 0, 23),
		checkRange("minute", int64(minute), 0, 59),
		checkRange("microsecond", us, 0, 60*microsPerSecond-1),
		checkRange("decimal count", int64(decimalCount), 0, maxDecimalCount),
		checkRange("offset minutes", int64(offset), minOffsetMinutes, maxOffsetMinutes),
	}
	for _, err := range checks {
		if err != nil {
			return t, err
		}
	}
	t.year, t.month, t.day = year, month, day
	t.hour, t.minute, t.micros = hour, minute, us
	t.decimalCount = decimalCount
	t.offset = offset
	t.initialized = true
	t.adjustDayOfMonth()
	if t.utcMicros() < 0 {
		return CalendarTime{}, fmt.Errorf("%04d-%02d-%02d %02d:%02d at offset %d minutes: %w",
			year, month, day, hour, minute, offset, ErrBeforeEpoch)
	}
	return t, nil
}

// set applies f to an initialized t. The change is undone if it moves t before the epoch.
func (t *CalendarTime) set(field string, f func()) error {
	if !t.initialized {
		return fmt.Errorf("failed to set %s of uninitialized time: %w", field, ErrOutOfRange)
	}
	prev := *t
	f()
	if t.utcMicros() < 0 {
		*t = prev
		return fmt.Errorf("failed to set %s: %w", field, ErrBeforeEpoch)
	}
	return nil
}

func checkYear(year int) error {
	if year < epochYear {
		return fmt.Errorf("year %d: %w", year, ErrBeforeEpoch)
	}
	return checkRange("year", int64(year), epochYear, 9999)
}

// adjustDayOfMonth moves a day past the end of the month into the next month.
// December has 31 days so the year never changes.
func (t *CalendarTime) adjustDayOfMonth() {
	if dim := DaysInMonth(t.year, t.month); t.day > dim {
		t.day -= dim
		t.month++
	}
}

// clampDayOfMonth caps the day at the last day of the month.
func (t *CalendarTime) clampDayOfMonth() {
	if dim := DaysInMonth(t.year, t.month); t.day > dim {
		t.day = dim
	}
}

// IsInitialized reports whether t was produced by a constructor or parser
func (t CalendarTime) IsInitialized() bool { return t.initialized }

// Year returns the year
func (t CalendarTime) Year() int { return t.year }

// Month returns the month, 1-12
func (t CalendarTime) Month() int { return t.month }

// Day returns the day of month
func (t CalendarTime) Day() int { return t.day }

// Hour returns the hour, 0-23
func (t CalendarTime) Hour() int { return t.hour }

// Minute returns the minute, 0-59
func (t CalendarTime) Minute() int { return t.minute }

// Second returns the second including its fraction
func (t CalendarTime) Second() float64 {
	return float64(t.micros) / float64(microsPerSecond)
}

// Microsecond returns the second and its fraction in microseconds
func (t CalendarTime) Microsecond() int64 { return t.micros }

// DecimalCount returns the number of significant decimals of the seconds
func (t CalendarTime) DecimalCount() int { return t.decimalCount }

// Precision returns which fields are significant
func (t CalendarTime) Precision() Precision { return t.precision }

// OffsetFromUTC returns the offset as hours and minutes
func (t CalendarTime) OffsetFromUTC() RelativeTime {
	return Offset(t.offset/60, t.offset%60)
}

// IsUTC reports whether the offset is zero
func (t CalendarTime) IsUTC() bool { return t.offset == 0 }

// SetYear changes the year
func (t *CalendarTime) SetYear(year int) error {
	if err := checkYear(year); err != nil {
		return err
	}
	return t.set("year", func() {
		t.year = year
		t.adjustDayOfMonth()
	})
}

// SetMonth changes the month
func (t *CalendarTime) SetMonth(month int) error {
	if err := checkRange("month", int64(month), 1, 12); err != nil {
		return err
	}
	return t.set("month", func() {
		t.month = month
		t.adjustDayOfMonth()
	})
}

// SetDay changes the day of month
func (t *CalendarTime) SetDay(day int) error {
	if err := checkRange("day", int64(day), 1, 31); err != nil {
		return err
	}
	return t.set("day", func() {
		t.day = day
		t.adjustDayOfMonth()
	})
}

// SetHour changes the hour
func (t *CalendarTime) SetHour(hour int) error {
	if err := checkRange("hour", int64(hour), 0, 23); err != nil {
		return err
	}
	return t.set("hour", func() { t.hour = hour })
}

// SetMinute changes the minute
func (t *CalendarTime) SetMinute(minute int) error {
	if err := checkRange("minute", int64(minute), 0, 59); err != nil {
		return err
	}
	return t.set("minute", func() { t.minute = minute })
}

// SetSecond changes the second, rounded to the nearest microsecond
func (t *CalendarTime) SetSecond(second float64) error {
	us := int64(math.Round(second * float64(microsPerSecond)))
	if err := checkRange("microsecond", us, 0, 60*microsPerSecond-1); err != nil {
		return err
	}
	return t.set("second", func() { t.micros = us })
}

// SetDecimalCount changes the number of significant decimals
func (t *CalendarTime) SetDecimalCount(n int) error {
	if err := checkRange("decimal count", int64(n), 0, maxDecimalCount); err != nil {
		return err
	}
	return t.set("decimal count", func() { t.decimalCount = n })
}

// SetPrecision changes which fields are significant
func (t *CalendarTime) SetPrecision(p Precision) error {
	if err := checkRange("precision", int64(p), int64(PrecisionUnknown), int64(PrecisionSecond)); err != nil {
		return err
	}
	return t.set("precision", func() { t.precision = p })
}

// SetOffsetFromUTC changes the offset without moving the wall clock fields
func (t *CalendarTime) SetOffsetFromUTC(offset RelativeTime) error {
	if !offset.IsValidAsOffsetFromUTC() {
		return fmt.Errorf("invalid UTC offset %v: %w", offset, ErrOutOfRange)
	}
	return t.set("offset", func() { t.offset = offset.offsetMinutes() })
}

// TimeOfDay returns hours, minutes and seconds as a RelativeTime
func (t CalendarTime) TimeOfDay() RelativeTime {
	r := RelativeTime{Hours: t.hour, Minutes: t.minute, Microseconds: t.micros}
	r.dropped = maxDecimalCount - t.decimalCount
	return r
}

// SetTimeOfDay replaces hours, minutes and seconds. The time must stay within the same day.
func (t *CalendarTime) SetTimeOfDay(r RelativeTime) error {
	if r.Years != 0 || r.Months != 0 || r.Days != 0 {
		return fmt.Errorf("time of day with date fields: %w", ErrOutOfRange)
	}
	if r.Hours < 0 || r.Minutes < 0 || r.Microseconds < 0 {
		return fmt.Errorf("negative time of day: %w", ErrOutOfRange)
	}
	total := int64(r.Hours)*microsPerHour + int64(r.Minutes)*microsPerMinute + r.Microseconds
	if total >= microsPerDay {
		return fmt.Errorf("time of day %v passes midnight: %w", r, ErrOutOfRange)
	}
	return t.set("time of day", func() {
		t.hour = int(total / microsPerHour)
		t.minute = int(total % microsPerHour / microsPerMinute)
		t.micros = total % microsPerMinute
		t.decimalCount = r.DecimalCount()
	})
}

// IsIdentical reports memberwise equality of all fields, offset and precision included
func (t CalendarTime) IsIdentical(u CalendarTime) bool {
	return t == u
}

// String returns the extended ISO 8601 form
func (t CalendarTime) String() string {
	if !t.initialized {
		return "<uninitialized>"
	}
	return t.ToExtendedISO8601()
}

// DumpString returns every field for diagnostics
func (t CalendarTime) DumpString() string {
	return fmt.Sprintf("CalendarTime: year=%d month=%d day=%d hour=%d minute=%d microsecond=%d "+
		"decimals=%d offset=%d precision=%s initialized=%t",
		t.year, t.month, t.day, t.hour, t.minute, t.micros,
		t.decimalCount, t.offset, t.precision, t.initialized)
}
