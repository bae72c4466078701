package caltime

import (
	"fmt"
	"strings"
)

const cimLength = 25

// ToBasicISO8601 renders YYYYMMDDThhmmss[.f]±hh[mm], or Z for UTC
func (t CalendarTime) ToBasicISO8601() string {
	return t.iso("", "")
}

// ToExtendedISO8601 renders YYYY-MM-DDThh:mm:ss[.f]±hh[:mm], or Z for UTC
func (t CalendarTime) ToExtendedISO8601() string {
	return t.iso("-", ":")
}

func (t CalendarTime) iso(dateSep, timeSep string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d%s%02d%s%02dT%02d%s%02d%s%02d",
		t.year, dateSep, t.month, dateSep, t.day,
		t.hour, timeSep, t.minute, timeSep, t.micros/microsPerSecond)
	b.WriteString(fraction(t.micros%microsPerSecond, t.decimalCount))
	if t.offset == 0 {
		b.WriteByte('Z')
		return b.String()
	}
	off := t.offset
	sign := byte('+')
	if off < 0 {
		sign = '-'
		off = -off
	}
	fmt.Fprintf(&b, "%c%02d", sign, off/60)
	if off%60 != 0 {
		fmt.Fprintf(&b, "%s%02d", timeSep, off%60)
	}
	return b.String()
}

// ToCIM renders the CIM DATETIME form YYYYMMDDhhmmss.uuuuuuSzzz.
// Digits beyond DecimalCount are written as zeros.
func (t CalendarTime) ToCIM() string {
	off := t.offset
	sign := byte('+')
	if off < 0 {
		sign = '-'
		off = -off
	}
	frac := truncateMicros(t.micros%microsPerSecond, t.decimalCount)
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d.%06d%c%03d",
		t.year, t.month, t.day, t.hour, t.minute, t.micros/microsPerSecond, frac, sign, off)
}

// FromCIM parses the CIM DATETIME form YYYYMMDDhhmmss.uuuuuuSzzz
func FromCIM(s string) (CalendarTime, error) {
	if len(s) != cimLength {
		return CalendarTime{}, invalidFormat(fmt.Sprintf("CIM datetime must be %d characters", cimLength), s)
	}
	if s[14] != '.' {
		return CalendarTime{}, invalidFormat("CIM datetime missing decimal point", s)
	}
	sign := 1
	switch s[21] {
	case '+':
	case '-':
		sign = -1
	case ':':
		return CalendarTime{}, fmt.Errorf("CIM interval %q: %w", s, ErrNotSupported)
	default:
		return CalendarTime{}, invalidFormat("CIM datetime has bad UTC offset sign", s)
	}
	var v [8]int
	for i, f := range [8][2]int{{0, 4}, {4, 6}, {6, 8}, {8, 10}, {10, 12}, {12, 14}, {15, 21}, {22, 25}} {
		n, err := digits(s[f[0]:f[1]], s)
		if err != nil {
			return CalendarTime{}, err
		}
		v[i] = n
	}
	us := int64(v[5])*microsPerSecond + int64(v[6])
	return build(v[0], v[1], v[2], v[3], v[4], us, maxDecimalCount, sign*v[7], PrecisionSecond)
}

// FromISO8601 parses basic or extended ISO 8601 date-time text with an explicit offset.
// Week dates, ordinal dates, reduced precision and more than six decimals are not supported.
func FromISO8601(s string) (CalendarTime, error) {
	tpos := strings.IndexByte(s, 'T')
	if tpos < 0 {
		return CalendarTime{}, invalidFormat("missing date/time separator T", s)
	}
	date, clock := s[:tpos], s[tpos+1:]
	if strings.ContainsRune(date, 'W') {
		return CalendarTime{}, fmt.Errorf("week date %q: %w", s, ErrNotSupported)
	}
	y, mo, d, err := parseISODate(date, s)
	if err != nil {
		return CalendarTime{}, err
	}
	clock, offset, err := splitISOOffset(clock, s)
	if err != nil {
		return CalendarTime{}, err
	}
	h, mi, us, dc, err := parseISOClock(clock, s)
	if err != nil {
		return CalendarTime{}, err
	}
	return build(y, mo, d, h, mi, us, dc, offset, PrecisionSecond)
}

func parseISODate(date, s string) (y, m, d int, err error) {
	switch len(date) {
	case 8:
	case 10:
		if date[4] != '-' || date[7] != '-' {
			return 0, 0, 0, invalidFormat("non ISO 8601 date", s)
		}
		date = date[:4] + date[5:7] + date[8:]
	case 4, 7:
		return 0, 0, 0, fmt.Errorf("reduced precision date %q: %w", s, ErrNotSupported)
	default:
		return 0, 0, 0, invalidFormat("non ISO 8601 date", s)
	}
	if y, err = digits(date[0:4], s); err != nil {
		return
	}
	if m, err = digits(date[4:6], s); err != nil {
		return
	}
	d, err = digits(date[6:8], s)
	return
}

// splitISOOffset strips the offset suffix and returns it in minutes.
func splitISOOffset(clock, s string) (string, int, error) {
	if strings.HasSuffix(clock, "Z") {
		return clock[:len(clock)-1], 0, nil
	}
	i := strings.LastIndexAny(clock, "+-")
	if i < 0 {
		return "", 0, invalidFormat("missing UTC offset", s)
	}
	sign := 1
	if clock[i] == '-' {
		sign = -1
	}
	z := clock[i+1:]
	var hh, mm string
	switch {
	case len(z) == 2:
		hh = z
	case len(z) == 4:
		hh, mm = z[:2], z[2:]
	case len(z) == 5 && z[2] == ':':
		hh, mm = z[:2], z[3:]
	default:
		return "", 0, invalidFormat("bad UTC offset", s)
	}
	h, err := digits(hh, s)
	if err != nil {
		return "", 0, err
	}
	m := 0
	if mm != "" {
		if m, err = digits(mm, s); err != nil {
			return "", 0, err
		}
		if m > 59 {
			return "", 0, invalidFormat("bad UTC offset", s)
		}
	}
	return clock[:i], sign * (h*60 + m), nil
}

func parseISOClock(clock, s string) (h, m int, us int64, dc int, err error) {
	frac := ""
	if dp := strings.IndexAny(clock, ".,"); dp >= 0 {
		frac = clock[dp+1:]
		if frac == "" {
			return 0, 0, 0, 0, invalidFormat("missing decimals", s)
		}
		clock = clock[:dp]
	}
	switch len(clock) {
	case 8:
		if clock[2] != ':' || clock[5] != ':' {
			return 0, 0, 0, 0, invalidFormat("non ISO 8601 time", s)
		}
		clock = clock[:2] + clock[3:5] + clock[6:]
	case 6:
	case 2, 4:
		return 0, 0, 0, 0, fmt.Errorf("reduced precision time %q: %w", s, ErrNotSupported)
	case 5:
		if clock[2] == ':' {
			return 0, 0, 0, 0, fmt.Errorf("reduced precision time %q: %w", s, ErrNotSupported)
		}
		return 0, 0, 0, 0, invalidFormat("non ISO 8601 time", s)
	default:
		return 0, 0, 0, 0, invalidFormat("non ISO 8601 time", s)
	}
	if len(frac) > maxDecimalCount {
		return 0, 0, 0, 0, fmt.Errorf("more than %d decimals in %q: %w", maxDecimalCount, s, ErrNotSupported)
	}
	var sec, f int
	if h, err = digits(clock[0:2], s); err != nil {
		return
	}
	if m, err = digits(clock[2:4], s); err != nil {
		return
	}
	if sec, err = digits(clock[4:6], s); err != nil {
		return
	}
	if frac != "" {
		if f, err = digits(frac, s); err != nil {
			return
		}
	}
	dc = len(frac)
	us = int64(sec)*microsPerSecond + int64(f)*pow10(maxDecimalCount-dc)
	return h, m, us, dc, nil
}

// digits parses an unsigned decimal field; s is the full text for diagnostics.
func digits(field, s string) (int, error) {
	if field == "" {
		return 0, invalidFormat("missing number", s)
	}
	n := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c < '0' || c > '9' {
			return 0, invalidFormat(fmt.Sprintf("%q is not a number", field), s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
