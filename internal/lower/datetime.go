package lower

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/weftlang/weft/internal/langerr"
)

const (
	MIN_YEAR_DIGITS     = 4
	MAX_YEAR_DIGITS     = 9
	MAX_FRACTION_DIGITS = 9
	UTC_ZONE_NAME       = "UTC"
)

// zones loaded by name, *time.Location values are immutable and can be shared by all lowering calls.
var zoneCache = cmap.New[*time.Location]()

// DateTime is a parsed date-time literal.
type DateTime struct {
	Time time.Time
	// Zone is the explicit zone name, UTC for literals without offset and zone, UTC+hh:mm for literals
	// with an offset but without a zone.
	Zone string
}

// calendarError is raised when the fields of a literal have the right shape but do not denote a point of the calendar.
type calendarError struct {
	field    string
	value    int
	min, max int
}

func (e calendarError) Error() string {
	return fmt.Sprintf("invalid value for %s (valid values %d - %d): %d", e.field, e.min, e.max, e.value)
}

// ParseDateTime validates and parses a date-time literal such as 2017-03-17T16:04:02.123+01:00@Europe/Berlin.
// The time, the offset and the zone are optional: 2017-03-17T is midnight UTC.
func ParseDateTime(text string) (DateTime, *langerr.Error) {
	fail := func(field, msg string) (DateTime, *langerr.Error) {
		e := langerr.Unlocated(langerr.InvalidDateTime, msg).Put("literal", text)
		if field != "" {
			e.Put("field", field)
		}
		return DateTime{}, e
	}

	s := text
	zoneName := ""
	hasZone := false
	if at := strings.IndexByte(s, '@'); at >= 0 {
		zoneName = Identifier(s[at+1:])
		s = s[:at]
		hasZone = true
		if zoneName == "" {
			return fail("zone", EMPTY_TIME_ZONE)
		}
	}

	sep := strings.IndexByte(s, 'T')
	if sep < 0 {
		return fail("", MISSING_TIME_SEPARATOR)
	}
	datePart, timePart := s[:sep], s[sep+1:]

	//date

	negativeYear := false
	switch {
	case strings.HasPrefix(datePart, "-"):
		negativeYear = true
		datePart = datePart[1:]
	case strings.HasPrefix(datePart, "+"):
		datePart = datePart[1:]
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return fail("", INVALID_DATE)
	}

	if !isDigits(dateFields[0], MIN_YEAR_DIGITS, MAX_YEAR_DIGITS) {
		return fail("year", INVALID_YEAR)
	}
	if !isDigits(dateFields[1], 1, 2) {
		return fail("month", INVALID_MONTH)
	}
	if !isDigits(dateFields[2], 1, 2) {
		return fail("dayOfMonth", INVALID_DAY_OF_MONTH)
	}

	year := atoi(dateFields[0])
	if negativeYear {
		year = -year
	}
	month := atoi(dateFields[1])
	day := atoi(dateFields[2])

	//offset, it starts at the first sign or Z of the time part

	offsetPart := ""
	if i := strings.IndexAny(timePart, "Z+-"); i >= 0 {
		offsetPart = timePart[i:]
		timePart = timePart[:i]
	}

	//time

	hour, minute, second, nanosecond := 0, 0, 0, 0

	if timePart != "" {
		clock, fraction, hasFraction := strings.Cut(timePart, ".")

		timeFields := strings.Split(clock, ":")
		if len(timeFields) != 3 {
			return fail("", INVALID_TIME)
		}
		if !isDigits(timeFields[0], 1, 2) {
			return fail("hour", INVALID_HOUR)
		}
		if !isDigits(timeFields[1], 1, 2) {
			return fail("minute", INVALID_MINUTE)
		}
		if !isDigits(timeFields[2], 1, 2) {
			return fail("second", INVALID_SECOND)
		}
		hour, minute, second = atoi(timeFields[0]), atoi(timeFields[1]), atoi(timeFields[2])

		if hasFraction {
			if !isDigits(fraction, 1, MAX_FRACTION_DIGITS) {
				return fail("fractionOfSecond", INVALID_FRACTION_OF_SECOND)
			}
			//right-pad to nanoseconds: .123 is 123000000ns
			nanosecond = atoi(fraction + strings.Repeat("0", MAX_FRACTION_DIGITS-len(fraction)))
		}
	}

	hasOffset := offsetPart != ""
	offsetSeconds := 0
	normalizedOffset := ""

	if hasOffset {
		if offsetPart == "Z" {
			normalizedOffset = "Z"
		} else {
			sign := offsetPart[0]
			offsetHour, offsetMinute, ok := strings.Cut(offsetPart[1:], ":")
			if (sign != '+' && sign != '-') || !ok {
				return fail("offset", INVALID_OFFSET)
			}
			if !isDigits(offsetHour, 1, 2) {
				return fail("offsetHour", INVALID_OFFSET_HOUR)
			}
			if !isDigits(offsetMinute, 1, 2) {
				return fail("offsetMinute", INVALID_OFFSET_MINUTE)
			}

			h, m := atoi(offsetHour), atoi(offsetMinute)
			if h > 18 {
				return failCalendar(text, calendarError{field: "offsetHour", value: h, min: 0, max: 18})
			}
			if m > 59 {
				return failCalendar(text, calendarError{field: "offsetMinute", value: m, min: 0, max: 59})
			}

			offsetSeconds = h*3600 + m*60
			if sign == '-' {
				offsetSeconds = -offsetSeconds
			}
			normalizedOffset = fmt.Sprintf("%c%02d:%02d", sign, h, m)
		}
	}

	if err := checkCalendar(year, month, day, hour, minute, second); err != nil {
		return failCalendar(text, *err)
	}

	switch {
	case !hasZone && !hasOffset:
		t := time.Date(year, time.Month(month), day, hour, minute, second, nanosecond, time.UTC)
		return DateTime{Time: t, Zone: UTC_ZONE_NAME}, nil
	case !hasZone:
		zone := UTC_ZONE_NAME
		loc := time.UTC
		if offsetSeconds != 0 {
			zone = UTC_ZONE_NAME + normalizedOffset
			loc = time.FixedZone(zone, offsetSeconds)
		}
		t := time.Date(year, time.Month(month), day, hour, minute, second, nanosecond, loc)
		return DateTime{Time: t, Zone: zone}, nil
	}

	loc, err := loadZone(zoneName)
	if err != nil {
		e := langerr.Unlocated(langerr.InvalidDateTime, fmtUnknownTimeZone(zoneName)).Put("literal", text).Put("field", "zone")
		e.Cause = err
		return DateTime{}, e
	}

	if !hasOffset {
		//the offset of the zone at that local time applies
		t := time.Date(year, time.Month(month), day, hour, minute, second, nanosecond, loc)
		return DateTime{Time: t, Zone: zoneName}, nil
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, nanosecond, time.FixedZone("", offsetSeconds)).In(loc)
	if _, zoneOffset := t.Zone(); zoneOffset != offsetSeconds {
		return DateTime{}, langerr.Unlocated(langerr.InvalidDateTime, fmtOffsetNotValidForZone(normalizedOffset, zoneName)).
			Put("literal", text).
			Put("field", "offset")
	}
	return DateTime{Time: t, Zone: zoneName}, nil
}

func failCalendar(text string, cause calendarError) (DateTime, *langerr.Error) {
	e := langerr.Unlocated(langerr.InvalidDateTime, cause.Error()).Put("literal", text).Put("field", cause.field)
	e.Cause = cause
	return DateTime{}, e
}

func checkCalendar(year, month, day, hour, minute, second int) *calendarError {
	if month < 1 || month > 12 {
		return &calendarError{field: "month", value: month, min: 1, max: 12}
	}

	//day 0 of the next month is the last day of the month
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > daysInMonth {
		return &calendarError{field: "dayOfMonth", value: day, min: 1, max: daysInMonth}
	}
	if hour > 23 {
		return &calendarError{field: "hour", value: hour, min: 0, max: 23}
	}
	if minute > 59 {
		return &calendarError{field: "minute", value: minute, min: 0, max: 59}
	}
	if second > 59 {
		return &calendarError{field: "second", value: second, min: 0, max: 59}
	}
	return nil
}

// loadZone returns the location with the given name, names of the form UTC+hh:mm denote fixed zones.
func loadZone(name string) (*time.Location, error) {
	if loc, ok := zoneCache.Get(name); ok {
		return loc, nil
	}

	loc, ok := fixedZone(name)
	if !ok {
		if name == "Local" {
			return nil, fmt.Errorf("the local zone cannot be referenced")
		}
		var err error
		loc, err = time.LoadLocation(name)
		if err != nil {
			return nil, err
		}
	}

	zoneCache.Set(name, loc)
	return loc, nil
}

func fixedZone(name string) (*time.Location, bool) {
	rest, ok := strings.CutPrefix(name, UTC_ZONE_NAME)
	if !ok {
		rest, ok = strings.CutPrefix(name, "GMT")
	}
	if !ok || len(rest) < 4 || (rest[0] != '+' && rest[0] != '-') {
		return nil, false
	}

	h, m, ok := strings.Cut(rest[1:], ":")
	if !ok || !isDigits(h, 1, 2) || !isDigits(m, 1, 2) {
		return nil, false
	}
	seconds := atoi(h)*3600 + atoi(m)*60
	if rest[0] == '-' {
		seconds = -seconds
	}
	return time.FixedZone(name, seconds), true
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi converts a string already validated by isDigits.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
