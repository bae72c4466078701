package caltime

import "time"

// now is replaced in tests.
var now = time.Now

// CurrentUTC returns the current moment in UTC with microsecond precision
func CurrentUTC() CalendarTime {
	t := CalendarTime{decimalCount: maxDecimalCount, precision: PrecisionSecond, initialized: true}
	t.setWallMicros(now().UnixMicro())
	return t
}

// CurrentLocal returns the current moment at the local offset from UTC
func CurrentLocal() (CalendarTime, error) {
	return FromTime(now())
}

// CurrentOffsetFromUTC returns the local offset from UTC
func CurrentOffsetFromUTC() RelativeTime {
	_, sec := now().Zone()
	return Offset(sec/3600, (sec%3600)/60)
}

// FromTime converts a time.Time, keeping its offset from UTC
func FromTime(tm time.Time) (CalendarTime, error) {
	_, sec := tm.Zone()
	us := int64(tm.Second())*microsPerSecond + int64(tm.Nanosecond()/1000)
	return build(tm.Year(), int(tm.Month()), tm.Day(), tm.Hour(), tm.Minute(), us,
		maxDecimalCount, sec/60, PrecisionSecond)
}

// Time converts t to a time.Time in a fixed zone at t's offset
func (t CalendarTime) Time() time.Time {
	return time.UnixMicro(t.utcMicros()).In(time.FixedZone("", t.offset*60))
}
