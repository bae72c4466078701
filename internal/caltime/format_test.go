package caltime

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestISO8601Output(t *testing.T) {
	is := is.New(t)

	ct, err := NewWithDecimals(1994, 12, 10, 16, 14, 15.001, 3, Offset(2, 0))
	is.NoErr(err)
	is.Equal(ct.ToExtendedISO8601(), "1994-12-10T16:14:15.001+02")
	is.Equal(ct.ToBasicISO8601(), "19941210T161415.001+02")
	is.Equal(ct.String(), "1994-12-10T16:14:15.001+02")

	ct, err = NewWithDecimals(1994, 2, 3, 4, 5, 6, 0, Offset(-3, -30))
	is.NoErr(err)
	is.Equal(ct.ToExtendedISO8601(), "1994-02-03T04:05:06-03:30")
	is.Equal(ct.ToBasicISO8601(), "19940203T040506-0330")

	ct = mustNew(t, 2000, 1, 1, 0, 0, 0.5, utc)
	is.Equal(ct.ToExtendedISO8601(), "2000-01-01T00:00:00.500000Z")
}

func TestCIMOutput(t *testing.T) {
	is := is.New(t)

	ct, err := NewWithDecimals(1994, 12, 10, 16, 14, 15.001, 3, Offset(2, 0))
	is.NoErr(err)
	is.Equal(ct.ToCIM(), "19941210161415.001000+120")

	ct, err = NewWithDecimals(1994, 2, 3, 4, 5, 6.123456, 2, Offset(0, -30))
	is.NoErr(err)
	is.Equal(ct.ToCIM(), "19940203040506.120000-030")
}

func TestFromCIM(t *testing.T) {
	is := is.New(t)

	ct, err := FromCIM("19940203040506.001000-030")
	is.NoErr(err)
	assertDate(is, ct, 1994, 2, 3)
	is.Equal(ct.Hour(), 4)
	is.Equal(ct.Minute(), 5)
	is.Equal(ct.Microsecond(), int64(6_001_000))
	is.Equal(ct.DecimalCount(), 6)
	is.Equal(ct.OffsetFromUTC(), Offset(0, -30))
	is.Equal(ct.Precision(), PrecisionSecond)
}

func TestFromCIMRejectsMalformedText(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		target error
	}{
		{"too long", "19941210161415.001000+1200", ErrInvalidFormat},
		{"too short", "19941210161415.001000+1", ErrInvalidFormat},
		{"bad sign", "19941210161415.001000#120", ErrInvalidFormat},
		{"comma decimal", "19941210161415,001000+120", ErrInvalidFormat},
		{"letters", "1994121016141X.001000+120", ErrInvalidFormat},
		{"interval", "00000001020304.000000:000", ErrNotSupported},
		{"month 13", "19941310161415.001000+120", ErrOutOfRange},
		{"before epoch", "19691231235959.000000+000", ErrBeforeEpoch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			_, err := FromCIM(tc.text)
			is.True(errors.Is(err, tc.target))
		})
	}
}

func TestFromISO8601(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		target   error
		micros   int64
		decimals int
		offset   RelativeTime
	}{
		{"extended comma", "2001-02-03T04:05:06,123456+07:30", nil, 6_123_456, 6, Offset(7, 30)},
		{"basic", "20010203T040506.125-07", nil, 6_125_000, 3, Offset(-7, 0)},
		{"extended minutes", "2001-02-03T04:05:06.125-07:30", nil, 6_125_000, 3, Offset(-7, -30)},
		{"basic offset minutes", "20010203T040506-0730", nil, 6_000_000, 0, Offset(-7, -30)},
		{"zulu", "2001-02-03T04:05:06.125Z", nil, 6_125_000, 3, utc},
		{"no decimals", "2001-02-03T04:05:06Z", nil, 6_000_000, 0, utc},
		{"month only", "2001-02T04:05:06,123456+07:30", ErrNotSupported, 0, 0, utc},
		{"year only", "2001T04:05:06,123456+07:30", ErrNotSupported, 0, 0, utc},
		{"week date", "2001-W05-6T04:05:06Z", ErrNotSupported, 0, 0, utc},
		{"seven decimals", "2001-02-03T04:05:06,1234567+07:30", ErrNotSupported, 0, 0, utc},
		{"hour and minute", "2001-02-03T04:05+07:30", ErrNotSupported, 0, 0, utc},
		{"hour only", "2001-02-03T04Z", ErrNotSupported, 0, 0, utc},
		{"short basic date", "200102T040506,123456+07:30", ErrInvalidFormat, 0, 0, utc},
		{"colon date", "2001:02:03T04:05:06,123456+07:30", ErrInvalidFormat, 0, 0, utc},
		{"dash time", "2001-02-03T04-05-06,123456+07:30", ErrInvalidFormat, 0, 0, utc},
		{"no T", "2001-02-03 04:05:06Z", ErrInvalidFormat, 0, 0, utc},
		{"no offset", "2001-02-03T04:05:06", ErrInvalidFormat, 0, 0, utc},
		{"bad offset", "2001-02-03T04:05:06+7", ErrInvalidFormat, 0, 0, utc},
		{"offset minutes 75", "2001-02-03T04:05:06+01:75", ErrInvalidFormat, 0, 0, utc},
		{"basic offset minutes 99", "20010203T040506+0199", ErrInvalidFormat, 0, 0, utc},
		{"offset minutes 60", "20010203T040506-0060", ErrInvalidFormat, 0, 0, utc},
		{"empty decimals", "2001-02-03T04:05:06.Z", ErrInvalidFormat, 0, 0, utc},
		{"letters", "2001-0a-03T04:05:06Z", ErrInvalidFormat, 0, 0, utc},
		{"hour 25", "2001-02-03T25:05:06Z", ErrOutOfRange, 0, 0, utc},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			ct, err := FromISO8601(tc.text)
			if tc.target != nil {
				is.True(errors.Is(err, tc.target))
				return
			}
			is.NoErr(err)
			assertDate(is, ct, 2001, 2, 3)
			is.Equal(ct.Hour(), 4)
			is.Equal(ct.Minute(), 5)
			is.Equal(ct.Microsecond(), tc.micros)
			is.Equal(ct.DecimalCount(), tc.decimals)
			is.Equal(ct.OffsetFromUTC(), tc.offset)
		})
	}
}

func TestInvalidFormatErrorCarriesText(t *testing.T) {
	is := is.New(t)

	_, err := FromISO8601("20010203")
	var ife *InvalidFormatError
	is.True(errors.As(err, &ife))
	is.Equal(ife.Text, "20010203")
	is.Equal(err.Error(), "missing date/time separator T (20010203)")
}

func TestTextRoundTrip(t *testing.T) {
	values := []struct {
		name             string
		year, month, day int
		hour, minute     int
		second           float64
		decimals         int
		offset           RelativeTime
	}{
		{"epoch", 1970, 1, 1, 0, 0, 0, 6, utc},
		{"no decimals", 1994, 12, 10, 16, 14, 15, 0, Offset(2, 0)},
		{"three decimals", 1994, 12, 10, 16, 14, 15.0015, 3, Offset(-3, -30)},
		{"six decimals", 2024, 2, 29, 23, 59, 59.999999, 6, Offset(13, 0)},
		{"one decimal", 2038, 1, 19, 3, 14, 7.75, 1, Offset(-12, 0)},
		{"half hour offset", 2001, 6, 15, 12, 0, 30.123456, 4, Offset(0, 30)},
	}
	for _, v := range values {
		t.Run(v.name, func(t *testing.T) {
			is := is.New(t)
			x, err := NewWithDecimals(v.year, v.month, v.day, v.hour, v.minute, v.second, v.decimals, v.offset)
			is.NoErr(err)

			basic, err := FromISO8601(x.ToBasicISO8601())
			is.NoErr(err)
			is.True(basic.Equal(x))
			is.Equal(basic.OffsetFromUTC(), x.OffsetFromUTC())

			ext, err := FromISO8601(x.ToExtendedISO8601())
			is.NoErr(err)
			is.True(ext.Equal(x))
			is.Equal(ext.ToExtendedISO8601(), x.ToExtendedISO8601())

			cim, err := FromCIM(x.ToCIM())
			is.NoErr(err)
			is.True(cim.Equal(x))
			is.Equal(cim.ToCIM(), x.ToCIM())
		})
	}

	is := is.New(t)
	d, err := NewDate(2024, 5, 1)
	is.NoErr(err)
	parsed, err := FromISO8601(d.ToBasicISO8601())
	is.NoErr(err)
	is.True(parsed.Equal(d))
}
