// Package convert translates between Jalali and Gregorian dates in
// their common slash-separated string forms: "1394/05/01" and
// "2015/07/23", optionally followed by a time of day.
//
// Months are one-based in strings, unlike the zero-based month field of
// the calendar engine. All conversions treat the input as UTC wall
// time; no zone offset is applied.
package convert

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/jalali"
	"github.com/tartampluch/go-jalali/internal/persiantext"
)

// SolarToGregorian converts a Jalali date string to the Gregorian
// equivalent. Input is "yyyy/MM/dd", optionally followed by " HH:mm" or
// " HH:mm:ss"; Persian or Arabic digits are accepted. The output keeps
// the time of day if the input carried one, without seconds.
func SolarToGregorian(s string) (string, error) {
	t, hasTime, err := solarToTime(s)
	if err != nil {
		return "", err
	}
	if hasTime {
		return t.Format(config.DateTimeFormatSlash), nil
	}
	return t.Format(config.DateFormatSlash), nil
}

// SolarToGregorianTime converts a Jalali date string to a time.Time in
// UTC.
func SolarToGregorianTime(s string) (time.Time, error) {
	t, _, err := solarToTime(s)
	return t, err
}

// GregorianToSolar converts a Gregorian date string to the Jalali
// equivalent. Input is "yyyy/MM/dd", optionally followed by " HH:mm" or
// " HH:mm:ss", with a trailing ".0" style fraction tolerated. The
// output keeps the time of day if the input carried one, without
// seconds.
func GregorianToSolar(s string) (string, error) {
	s = strings.TrimSpace(persiantext.Unify(s))
	hasTime := strings.ContainsRune(s, ' ')

	var t time.Time
	var err error
	if hasTime {
		// SQL timestamp output often carries seconds and a fractional
		// part; strip the fraction and try both time layouts.
		if i := strings.LastIndexByte(s, '.'); i > strings.IndexByte(s, ' ') {
			s = s[:i]
		}
		t, err = time.Parse(config.DateTimeSecondsFmt, s)
		if err != nil {
			t, err = time.Parse(config.DateTimeFormatSlash, s)
		}
	} else {
		t, err = time.Parse(config.DateFormatSlash, s)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}

	return GregorianTimeToSolar(t, hasTime), nil
}

// GregorianTimeToSolar converts a time.Time to a Jalali date string,
// read as UTC. With withTime set the output carries "HH:mm".
func GregorianTimeToSolar(t time.Time, withTime bool) string {
	c := jalali.NewFromMillis(t.UTC().UnixMilli())

	// Get cannot fail here: the calendar was built from an instant, so
	// no field validation is involved.
	year, _ := c.Get(jalali.FieldYear)
	month, _ := c.Get(jalali.FieldMonth)
	day, _ := c.Get(jalali.FieldDayOfMonth)

	out := fmt.Sprintf("%04d/%02d/%02d", year, month+1, day)
	if withTime {
		out += t.UTC().Format(" 15:04")
	}
	return out
}

// solarToTime parses a Jalali date string and converts it through the
// engine, reporting whether a time of day was present.
func solarToTime(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(persiantext.Unify(s))

	datePart := s
	timePart := ""
	if i := strings.IndexByte(s, ' '); i >= 0 {
		datePart = s[:i]
		timePart = strings.TrimSpace(s[i+1:])
	}

	year, month, day, err := splitDate(datePart)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}

	hour, minute, sec := 0, 0, 0
	if timePart != "" {
		hour, minute, sec, err = splitTime(timePart)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%s: %w", config.ErrDateParse, err)
		}
	}

	c := jalali.NewDateTime(year, month-1, day, hour, minute, sec)
	c.SetLenient(false)
	ms, err := c.Time()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", config.ErrDateConvert, err)
	}
	return time.UnixMilli(ms).UTC(), timePart != "", nil
}

func splitDate(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("want yyyy/MM/dd, got %q", s)
	}
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, err
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, err
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("month %d out of range", month)
	}
	return year, month, day, nil
}

func splitTime(s string) (hour, minute, sec int, err error) {
	// Tolerate a trailing ".0" style fraction.
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("want HH:mm or HH:mm:ss, got %q", s)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, err
	}
	if minute, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, err
	}
	if len(parts) == 3 {
		if sec, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, 0, err
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("time of day %q out of range", s)
	}
	return hour, minute, sec, nil
}
