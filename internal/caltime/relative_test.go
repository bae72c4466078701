package caltime

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestRelativeAddDoesNotCascade(t *testing.T) {
	is := is.New(t)

	r := RelativeTime{Minutes: 50}.Add(RelativeTime{Minutes: 20, Hours: 1})
	is.Equal(r.Minutes, 70)
	is.Equal(r.Hours, 1)

	r = NewRelativeTime(1, 2, 3, 4, 5, 6).Sub(NewRelativeTime(1, 1, 1, 1, 1, 1))
	is.True(r.IsIdentical(NewRelativeTime(0, 1, 2, 3, 4, 5)))

	n := NewRelativeTime(1, 2, 3, 4, 5, 6.5).Neg()
	is.Equal(n, RelativeTime{Years: -1, Months: -2, Days: -3, Hours: -4, Minutes: -5, Microseconds: -6_500_000})
}

func TestRelativeIdentityIncludesDecimals(t *testing.T) {
	is := is.New(t)

	a := RelativeTime{Hours: 1}
	b, err := a.WithDecimalCount(2)
	is.NoErr(err)
	is.True(a.IsIdentical(a))
	is.True(!a.IsIdentical(b))
	is.Equal(a.Add(b).DecimalCount(), 2)
}

func TestIsValidAsOffsetFromUTC(t *testing.T) {
	cases := []struct {
		name string
		r    RelativeTime
		want bool
	}{
		{"zero", RelativeTime{}, true},
		{"plus two", Offset(2, 0), true},
		{"india", Offset(5, 30), true},
		{"newfoundland", Offset(-3, -30), true},
		{"auckland summer", Offset(13, 0), true},
		{"minus thirteen", Offset(-13, 0), true},
		{"too far east", Offset(14, 0), false},
		{"too far west", Offset(-13, -1), false},
		{"days", RelativeTime{Days: 1}, false},
		{"months", RelativeTime{Months: 1}, false},
		{"years", RelativeTime{Years: 1}, false},
		{"seconds", RelativeTime{Microseconds: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(tc.r.IsValidAsOffsetFromUTC(), tc.want)
		})
	}
}

func TestRelativeISO8601Time(t *testing.T) {
	is := is.New(t)

	r := NewRelativeTime(0, 0, 0, 4, 5, 6.5)
	s, err := r.ToBasicISO8601Time()
	is.NoErr(err)
	is.Equal(s, "040506.500000")
	s, err = r.ToExtendedISO8601Time()
	is.NoErr(err)
	is.Equal(s, "04:05:06.500000")

	r1, err := r.WithDecimalCount(1)
	is.NoErr(err)
	s, err = r1.ToExtendedISO8601Time()
	is.NoErr(err)
	is.Equal(s, "04:05:06.5")

	r0, err := r.WithDecimalCount(0)
	is.NoErr(err)
	s, err = r0.ToBasicISO8601Time()
	is.NoErr(err)
	is.Equal(s, "040506")

	_, err = RelativeTime{Days: 1}.ToBasicISO8601Time()
	is.True(errors.Is(err, ErrNotSupported)) // date fields
	_, err = RelativeTime{Hours: -1}.ToExtendedISO8601Time()
	is.True(errors.Is(err, ErrNotSupported)) // negative
}

func TestFromAmount(t *testing.T) {
	is := is.New(t)

	a, err := Seconds(90).WithDecimalCount(1)
	is.NoErr(err)
	r := FromAmount(a)
	is.Equal(r.Microseconds, int64(90_000_000))
	is.Equal(r.Minutes, 0)
	is.Equal(r.DecimalCount(), 1)
	is.Equal(r.Seconds(), 90.0)
}
