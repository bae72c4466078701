package caltime

import (
	"fmt"
	"math"
	"strconv"
)

// AmountOfTime is an exact, timezone independent duration in microseconds.
// The zero value is zero seconds with six significant decimals.
type AmountOfTime struct {
	micros int64
	// number of decimals below microseconds that are not significant
	dropped int
}

// Seconds returns an AmountOfTime for s seconds, rounded to the nearest microsecond
func Seconds(s float64) AmountOfTime {
	return AmountOfTime{micros: int64(math.Round(s * float64(microsPerSecond)))}
}

// Microseconds returns an AmountOfTime of us microseconds
func Microseconds(us int64) AmountOfTime {
	return AmountOfTime{micros: us}
}

// Seconds returns the amount in seconds
func (a AmountOfTime) Seconds() float64 {
	return float64(a.micros) / float64(microsPerSecond)
}

// WithSeconds returns a copy of a holding s seconds
func (a AmountOfTime) WithSeconds(s float64) AmountOfTime {
	a.micros = int64(math.Round(s * float64(microsPerSecond)))
	return a
}

// Microseconds returns the internal microsecond count
func (a AmountOfTime) Microseconds() int64 {
	return a.micros
}

// DecimalCount returns the number of significant decimals of the seconds
func (a AmountOfTime) DecimalCount() int {
	return maxDecimalCount - a.dropped
}

// WithDecimalCount returns a copy of a with n significant decimals (0-6)
func (a AmountOfTime) WithDecimalCount(n int) (AmountOfTime, error) {
	if err := checkRange("decimal count", int64(n), 0, maxDecimalCount); err != nil {
		return a, err
	}
	a.dropped = maxDecimalCount - n
	return a, nil
}

// Add returns a+b with the lower precision of the two
func (a AmountOfTime) Add(b AmountOfTime) AmountOfTime {
	return AmountOfTime{micros: a.micros + b.micros, dropped: max(a.dropped, b.dropped)}
}

// Sub returns a-b with the lower precision of the two
func (a AmountOfTime) Sub(b AmountOfTime) AmountOfTime {
	return AmountOfTime{micros: a.micros - b.micros, dropped: max(a.dropped, b.dropped)}
}

// Neg returns -a
func (a AmountOfTime) Neg() AmountOfTime {
	a.micros = -a.micros
	return a
}

// Abs returns |a|
func (a AmountOfTime) Abs() AmountOfTime {
	if a.micros < 0 {
		return a.Neg()
	}
	return a
}

// Compare returns -1, 0 or +1 as a is shorter than, equal to or longer than b
func (a AmountOfTime) Compare(b AmountOfTime) int {
	switch {
	case a.micros < b.micros:
		return -1
	case a.micros > b.micros:
		return 1
	}
	return 0
}

// Equal reports whether a and b hold the same number of microseconds
func (a AmountOfTime) Equal(b AmountOfTime) bool { return a.micros == b.micros }

// Less reports whether a < b
func (a AmountOfTime) Less(b AmountOfTime) bool { return a.micros < b.micros }

// LessOrEqual reports whether a <= b
func (a AmountOfTime) LessOrEqual(b AmountOfTime) bool { return a.micros <= b.micros }

// Greater reports whether a > b
func (a AmountOfTime) Greater(b AmountOfTime) bool { return a.micros > b.micros }

// GreaterOrEqual reports whether a >= b
func (a AmountOfTime) GreaterOrEqual(b AmountOfTime) bool { return a.micros >= b.micros }

// IsEquivalent reports whether |a-b| <= tolerance. A negative tolerance never matches.
func IsEquivalent(a, b, tolerance AmountOfTime) bool {
	return a.Sub(b).Abs().micros <= tolerance.micros
}

// String renders the amount in seconds with DecimalCount decimals, truncated
func (a AmountOfTime) String() string {
	us := truncateMicros(a.micros, a.DecimalCount())
	sign := ""
	if us < 0 {
		sign = "-"
		us = -us
	}
	s := sign + strconv.FormatInt(us/microsPerSecond, 10)
	if dc := a.DecimalCount(); dc > 0 {
		frac := fmt.Sprintf("%06d", us%microsPerSecond)
		s += "." + frac[:dc]
	}
	return s + "s"
}

func (a AmountOfTime) withDropped(d int) AmountOfTime {
	a.dropped = d
	return a
}
