// Package jalali implements a proleptic solar-Hijri (Jalali) calendar
// engine. It converts between absolute time, counted in milliseconds
// from 1970-01-01T00:00Z, and the full Jalali field set (era, year,
// month, day, week and time-of-day fields), and supports field
// arithmetic with configurable week rules.
//
// The Jalali calendar has two eras, BH (Before Hegira) and AH (After
// Hegira), and its leap years repeat on a 33-year cycle with eight leap
// years per cycle. Because the rules are applied proleptically, the
// engine produces consistent results for all representable instants,
// arbitrarily far before or after the epoch.
//
// Week-of-year values run from 1 to 53. Week 1 of a year is the
// earliest seven-day period starting on FirstDayOfWeek that contains at
// least MinimalDaysInFirstWeek days of that year, so days at the start
// of a year can belong to the last week of the previous year and days
// at the end of a year to week 1 of the next. Week-of-month works the
// same way within a month, except that days before week 1 report
// week 0.
package jalali

import "time"

// Calendar is a mutable Jalali calendar value. It holds an absolute
// time and a set of calendar fields, each with a freshness stamp, and
// lazily converts between the two representations: setting the time
// invalidates the fields, setting a field invalidates the time, and the
// next read triggers the appropriate conversion.
//
// A Calendar is a plain value, not a guarded resource; it is not safe
// for concurrent mutation without external synchronization. Use Clone
// to hand independent copies to other goroutines.
type Calendar struct {
	// time is the absolute time in milliseconds from the epoch. Valid
	// only while isTimeSet holds.
	time int64

	isTimeSet    bool
	areFieldsSet bool

	fields [fieldCount]int
	stamp  [fieldCount]int

	// nextStamp is the instance-owned monotonic counter handed out to
	// explicit Set calls, so that the most recently set field group can
	// be identified during fields-to-time disambiguation.
	nextStamp int

	lenient                bool
	firstDayOfWeek         int
	minimalDaysInFirstWeek int

	// zoneOffset is the raw offset of the wall clock from the absolute
	// time axis, in milliseconds. DST is not evaluated; see the
	// computeFields notes.
	zoneOffset int
}

// New returns a Calendar holding the current instant, with the default
// configuration: lenient, UTC wall time, weeks starting on Saturday
// with a minimal first week of one day.
func New() *Calendar {
	c := newCalendar()
	c.SetTime(time.Now().UnixMilli())
	return c
}

// NewFromMillis returns a Calendar holding the given absolute time in
// milliseconds from the epoch.
func NewFromMillis(ms int64) *Calendar {
	c := newCalendar()
	c.SetTime(ms)
	return c
}

// NewDate returns a Calendar with the given Jalali date in the AH era.
// The month is zero-based: 0 for Farvardin.
func NewDate(year, month, day int) *Calendar {
	c := newCalendar()
	c.Set(FieldEra, AH)
	c.Set(FieldYear, year)
	c.Set(FieldMonth, month)
	c.Set(FieldDayOfMonth, day)
	return c
}

// NewDateTime returns a Calendar with the given Jalali date and wall
// time in the AH era. The month is zero-based: 0 for Farvardin.
func NewDateTime(year, month, day, hour, minute, second int) *Calendar {
	c := NewDate(year, month, day)
	c.Set(FieldHourOfDay, hour)
	c.Set(FieldMinute, minute)
	c.Set(FieldSecond, second)
	return c
}

func newCalendar() *Calendar {
	return &Calendar{
		nextStamp:              stampMinUser,
		lenient:                true,
		firstDayOfWeek:         Saturday,
		minimalDaysInFirstWeek: 1,
	}
}

// Clone returns an independent copy of the Calendar, including its
// stamps and configuration.
func (c *Calendar) Clone() *Calendar {
	dup := *c
	return &dup
}

// IsLeapYear reports whether the given Jalali year has 366 days. Leap
// years occur eight times per 33-year cycle, with gaps alternating
// between four and five years; 1370, 1375 and 1379 are leap years.
func IsLeapYear(year int) bool {
	mod := (year + 11) % 33
	return mod%4 == 0 && mod != 32
}

// Time returns the absolute time in milliseconds from the epoch,
// converting from the calendar fields first if necessary. In strict
// mode the conversion fails if any explicitly set field is out of
// range.
func (c *Calendar) Time() (int64, error) {
	if !c.isTimeSet {
		if err := c.computeTime(); err != nil {
			return 0, err
		}
		c.isTimeSet = true
	}
	return c.time, nil
}

// SetTime sets the absolute time in milliseconds from the epoch. All
// calendar fields are recomputed from it on the next read.
func (c *Calendar) SetTime(ms int64) {
	c.time = ms
	c.isTimeSet = true
	c.areFieldsSet = false
}

// Get returns the value of the given field, first completing any
// pending conversion between time and fields.
func (c *Calendar) Get(field Field) (int, error) {
	if err := c.complete(); err != nil {
		return 0, err
	}
	return c.fields[field], nil
}

// Set assigns a value to the given field and records it as the most
// recent user mutation. The absolute time is invalidated and will be
// recomputed from the field set on the next read.
func (c *Calendar) Set(field Field, value int) {
	c.fields[field] = value
	c.stamp[field] = c.nextStamp
	c.nextStamp++
	c.isTimeSet = false
	c.areFieldsSet = false
}

// Clear unsets a single field. Its value reads as zero during the next
// fields-to-time conversion.
func (c *Calendar) Clear(field Field) {
	c.fields[field] = 0
	c.stamp[field] = stampUnset
	c.isTimeSet = false
	c.areFieldsSet = false
}

// ClearAll unsets every field and resets the mutation counter.
func (c *Calendar) ClearAll() {
	for i := range c.fields {
		c.fields[i] = 0
		c.stamp[i] = stampUnset
	}
	c.nextStamp = stampMinUser
	c.isTimeSet = false
	c.areFieldsSet = false
}

// IsSet reports whether the field currently holds a value, either
// computed or explicitly set.
func (c *Calendar) IsSet(field Field) bool {
	return c.stamp[field] != stampUnset
}

// complete runs whichever of the two conversions is pending so that
// both the absolute time and the field set are valid.
func (c *Calendar) complete() error {
	if !c.isTimeSet {
		if err := c.computeTime(); err != nil {
			return err
		}
		c.isTimeSet = true
	}
	if !c.areFieldsSet {
		c.computeFields()
		c.areFieldsSet = true
	}
	return nil
}

// Lenient reports whether out-of-range field values are normalized by
// carrying into adjacent fields rather than rejected.
func (c *Calendar) Lenient() bool { return c.lenient }

// SetLenient switches between lenient normalization and strict
// validation of explicitly set fields.
func (c *Calendar) SetLenient(lenient bool) { c.lenient = lenient }

// FirstDayOfWeek returns the weekday that starts a week, Sunday..Saturday.
func (c *Calendar) FirstDayOfWeek() int { return c.firstDayOfWeek }

// SetFirstDayOfWeek sets the weekday that starts a week.
func (c *Calendar) SetFirstDayOfWeek(day int) {
	if c.firstDayOfWeek != day {
		c.firstDayOfWeek = day
		c.areFieldsSet = false
	}
}

// MinimalDaysInFirstWeek returns how many days of the new period the
// first week must contain before it counts as week 1.
func (c *Calendar) MinimalDaysInFirstWeek() int { return c.minimalDaysInFirstWeek }

// SetMinimalDaysInFirstWeek sets the week-1 threshold, 1..7.
func (c *Calendar) SetMinimalDaysInFirstWeek(days int) {
	if c.minimalDaysInFirstWeek != days {
		c.minimalDaysInFirstWeek = days
		c.areFieldsSet = false
	}
}

// RawZoneOffset returns the configured wall-clock offset from the
// absolute time axis, in milliseconds.
func (c *Calendar) RawZoneOffset() int { return c.zoneOffset }

// SetRawZoneOffset sets the wall-clock offset in milliseconds.
func (c *Calendar) SetRawZoneOffset(ms int) {
	if c.zoneOffset != ms {
		c.zoneOffset = ms
		c.areFieldsSet = false
	}
}

// Equal reports whether two Calendars denote the same instant under the
// same configuration (zone offset, week rule and leniency). Field
// stamps do not participate: two differently-built Calendars resolving
// to one instant are equal. A Calendar whose field combination fails
// strict validation is not equal to anything.
func (c *Calendar) Equal(o *Calendar) bool {
	if o == nil {
		return false
	}
	ct, err := c.Time()
	if err != nil {
		return false
	}
	ot, err := o.Time()
	if err != nil {
		return false
	}
	return ct == ot &&
		c.lenient == o.lenient &&
		c.firstDayOfWeek == o.firstDayOfWeek &&
		c.minimalDaysInFirstWeek == o.minimalDaysInFirstWeek &&
		c.zoneOffset == o.zoneOffset
}

// monthLength returns the length of a month in the year currently held
// by the fields, accounting for the era.
func (c *Calendar) monthLength(month int) int {
	year := c.fields[FieldYear]
	if c.internalGetEra() == BH {
		year = 1 - year
	}
	return monthLength(month, year)
}

func monthLength(month, year int) int {
	if IsLeapYear(year) {
		return leapMonthLengths[month]
	}
	return monthLengths[month]
}

func yearLength(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// yearLengthCurrent is the length of the year currently held by the
// fields, accounting for the era.
func (c *Calendar) yearLengthCurrent() int {
	year := c.fields[FieldYear]
	if c.internalGetEra() == BH {
		year = 1 - year
	}
	return yearLength(year)
}

// internalGetEra returns the era, defaulting to AH when unset.
func (c *Calendar) internalGetEra() int {
	if c.stamp[FieldEra] != stampUnset {
		return c.fields[FieldEra]
	}
	return AH
}

// pinDayOfMonth clamps day-of-month to the current month's length.
// After Add on YEAR or MONTH we do not want the date to spill over:
// Shahrivar 31 plus one month lands on Mehr 30, not Aban 1.
func (c *Calendar) pinDayOfMonth() {
	monthLen := c.monthLength(c.fields[FieldMonth])
	if c.fields[FieldDayOfMonth] > monthLen {
		c.Set(FieldDayOfMonth, monthLen)
	}
}
