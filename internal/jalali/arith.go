package jalali

// Add adds a signed amount to a field, carrying overflow into larger
// fields. Adding to YEAR keeps the day of month pinned to the target
// month's length, and adding to MONTH does the same after carrying
// whole years, so Shahrivar 31 plus one month is Mehr 30.
//
// ZONE_OFFSET and DST_OFFSET cannot be added to.
func (c *Calendar) Add(field Field, amount int) error {
	if amount == 0 {
		return nil
	}
	if field < 0 || field >= fieldCount {
		return unsupportedFieldError(field)
	}
	if err := c.complete(); err != nil {
		return err
	}

	switch field {
	case FieldEra:
		era := c.fields[FieldEra] + amount
		if era < BH {
			era = BH
		}
		if era > AH {
			era = AH
		}
		c.Set(FieldEra, era)
		return nil

	case FieldYear:
		year := c.fields[FieldYear]
		if c.internalGetEra() == AH {
			year += amount
			if year > 0 {
				c.Set(FieldYear, year)
			} else {
				// Crossed into BH; year 0 becomes 1 BH.
				c.Set(FieldYear, 1-year)
				c.Set(FieldEra, BH)
			}
		} else {
			// BH years count downward.
			year -= amount
			if year > 0 {
				c.Set(FieldYear, year)
			} else {
				c.Set(FieldYear, 1-year)
				c.Set(FieldEra, AH)
			}
		}
		c.pinDayOfMonth()
		return nil

	case FieldMonth:
		month := c.fields[FieldMonth] + amount
		years, rem := floorDivRemInt(month, 12)
		c.Set(FieldYear, c.fields[FieldYear]+years)
		c.Set(FieldMonth, rem)
		c.pinDayOfMonth()
		return nil

	case FieldZoneOffset, FieldDSTOffset:
		return unsupportedFieldError(field)
	}

	// The remaining fields are handled by adding the equivalent number
	// of milliseconds to the current time. If a real DST implementation
	// is ever wired in, fields of a day or more must compensate for a
	// DST transition so the wall-clock hour stays put; fields below an
	// hour must not, or an add across the transition would appear to do
	// nothing.
	delta := int64(amount)
	adjustDST := true

	switch field {
	case FieldWeekOfYear, FieldWeekOfMonth, FieldDayOfWeekInMonth:
		delta *= oneWeek
	case FieldAmPm:
		delta *= 12 * int64(oneHour)
	case FieldDayOfMonth, FieldDayOfYear, FieldDayOfWeek:
		delta *= oneDay
	case FieldHourOfDay, FieldHour:
		delta *= int64(oneHour)
		adjustDST = false
	case FieldMinute:
		delta *= int64(oneMinute)
		adjustDST = false
	case FieldSecond:
		delta *= int64(oneSecond)
		adjustDST = false
	case FieldMillisecond:
		adjustDST = false
	}

	var dst int
	if adjustDST {
		dst = c.fields[FieldDSTOffset]
	}

	c.SetTime(c.time + delta)

	if adjustDST {
		if err := c.complete(); err != nil {
			return err
		}
		dst -= c.fields[FieldDSTOffset]
		if dst != 0 {
			c.SetTime(c.time + int64(dst))
		}
	}
	return nil
}

// RollOne rolls a field up or down by a single unit.
func (c *Calendar) RollOne(field Field, up bool) error {
	if up {
		return c.Roll(field, 1)
	}
	return c.Roll(field, -1)
}

// Roll adds a signed amount to a field without changing larger fields.
// The field wraps within its current valid range; for fields whose
// range depends on the date (weeks, day of month, day of year) the
// range is derived from the current date, and rolling never moves a
// larger field. Rolling WEEK_OF_YEAR may change YEAR by one because the
// week-numbering year can differ from the calendar year at the year
// boundaries.
//
// ZONE_OFFSET and DST_OFFSET cannot be rolled.
func (c *Calendar) Roll(field Field, amount int) error {
	if amount == 0 {
		return nil
	}
	if field < 0 || field >= fieldCount ||
		field == FieldZoneOffset || field == FieldDSTOffset {
		return unsupportedFieldError(field)
	}
	if err := c.complete(); err != nil {
		return err
	}

	min := minValues[field]
	max := maxValues[field]

	switch field {
	case FieldEra, FieldYear, FieldAmPm, FieldMinute, FieldSecond, FieldMillisecond:
		// Fixed minima and maxima; the standard roll below applies.

	case FieldHour, FieldHourOfDay:
		// Manipulate the time directly rather than the field, so that a
		// future DST implementation cannot produce an hour that does
		// not exist on a transition day. min is 0 for both hour fields.
		start := c.time
		oldHour := c.fields[field]
		newHour := (oldHour + amount) % (max + 1)
		if newHour < 0 {
			newHour += max + 1
		}
		c.SetTime(start + int64(oneHour)*int64(newHour-oldHour))
		return nil

	case FieldMonth:
		// Wrap within the year, then keep the day of month legal for
		// the landing month: Bahman 30 rolled forward lands on Esfand
		// 29 or 30, never Farvardin.
		mon := (c.fields[FieldMonth] + amount) % 12
		if mon < 0 {
			mon += 12
		}
		c.Set(FieldMonth, mon)
		monthLen := c.monthLength(mon)
		if c.fields[FieldDayOfMonth] > monthLen {
			c.Set(FieldDayOfMonth, monthLen)
		}
		return nil

	case FieldWeekOfYear:
		// The week-numbering year can differ from the calendar year at
		// the boundaries: Esfand 28 can already belong to week 1 of the
		// next year, and early Farvardin to week 52 or 53 of the
		// previous one. Track the week-numbering year explicitly so the
		// roll wraps within it.
		woy := c.fields[FieldWeekOfYear]
		weekYear := c.fields[FieldYear]
		weekDoy := c.fields[FieldDayOfYear]
		if c.fields[FieldMonth] == Farvardin {
			if woy >= 52 {
				weekYear--
				weekDoy += yearLength(weekYear)
			}
		} else if woy == 1 {
			weekDoy -= yearLength(weekYear)
			weekYear++
		}
		woy += amount
		if woy < 1 || woy > 52 {
			// Find the last week of the target year. If the trailing
			// days already count as week 1 of the next year, the last
			// numbered week ends seven days earlier.
			lastDoy := yearLength(weekYear)
			lastRelDow := (lastDoy - weekDoy + c.fields[FieldDayOfWeek] - c.firstDayOfWeek) % 7
			if lastRelDow < 0 {
				lastRelDow += 7
			}
			if 6-lastRelDow >= c.minimalDaysInFirstWeek {
				lastDoy -= 7
			}
			lastWoy := c.weekNumber(lastDoy, lastRelDow+1)
			_, rem := floorDivRemInt(woy+lastWoy-1, lastWoy)
			woy = rem + 1
		}
		c.Set(FieldWeekOfYear, woy)
		c.Set(FieldYear, weekYear)
		return nil

	case FieldWeekOfMonth:
		// Pad the month with phantom days so the first and last partial
		// weeks become full weeks, roll the day of month within that
		// rectangular block, then pin back to the real month. A day in
		// a partial week can therefore change its day of week: rolling
		// back from the second week can land on day 1 regardless of
		// weekday.
		dow := c.fields[FieldDayOfWeek] - c.firstDayOfWeek
		if dow < 0 {
			dow += 7
		}

		// Weekday of the first of the month, zero-based on the
		// configured first day of the week.
		fdm := (dow - c.fields[FieldDayOfMonth] + 1) % 7
		if fdm < 0 {
			fdm += 7
		}

		// Day number where the first counted week starts; zero or
		// negative when the leading partial week counts, 8-fdm when it
		// is skipped under the minimal-days rule.
		var start int
		if 7-fdm < c.minimalDaysInFirstWeek {
			start = 8 - fdm
		} else {
			start = 1 - fdm
		}

		monthLen := c.monthLength(c.fields[FieldMonth])
		ldm := (monthLen - c.fields[FieldDayOfMonth] + dow) % 7
		// monthLen >= day of month, so ldm needs no negative fixup.

		// One past the last day of the padded month.
		limit := monthLen + 7 - ldm

		gap := limit - start
		dayOfMonth := (c.fields[FieldDayOfMonth] + amount*7 - start) % gap
		if dayOfMonth < 0 {
			dayOfMonth += gap
		}
		dayOfMonth += start

		// Pin phantom days to the real month boundaries.
		if dayOfMonth < 1 {
			dayOfMonth = 1
		}
		if dayOfMonth > monthLen {
			dayOfMonth = monthLen
		}

		// DAY_OF_MONTH was stamped most recently, so it wins the next
		// field resolution.
		c.Set(FieldDayOfMonth, dayOfMonth)
		return nil

	case FieldDayOfMonth:
		max = c.monthLength(c.fields[FieldMonth])
		// Standard roll below, within the current month.

	case FieldDayOfYear:
		// Roll in milliseconds within the current year.
		delta := int64(amount) * oneDay
		yearStart := c.time - int64(c.fields[FieldDayOfYear]-1)*oneDay
		yearMillis := int64(c.yearLengthCurrent()) * oneDay
		t := (c.time + delta - yearStart) % yearMillis
		if t < 0 {
			t += yearMillis
		}
		c.SetTime(t + yearStart)
		return nil

	case FieldDayOfWeek:
		// Roll in milliseconds within the current week, delimited by
		// the configured first day of the week.
		delta := int64(amount) * oneDay
		leadDays := c.fields[FieldDayOfWeek] - c.firstDayOfWeek
		if leadDays < 0 {
			leadDays += 7
		}
		weekStart := c.time - int64(leadDays)*oneDay
		t := (c.time + delta - weekStart) % oneWeek
		if t < 0 {
			t += oneWeek
		}
		c.SetTime(t + weekStart)
		return nil

	case FieldDayOfWeekInMonth:
		// Roll in weeks among the days of the month sharing this day's
		// weekday.
		delta := int64(amount) * oneWeek
		preWeeks := (c.fields[FieldDayOfMonth] - 1) / 7
		postWeeks := (c.monthLength(c.fields[FieldMonth]) - c.fields[FieldDayOfMonth]) / 7
		first := c.time - int64(preWeeks)*oneWeek
		gap := oneWeek * int64(preWeeks+postWeeks+1)
		t := (c.time + delta - first) % gap
		if t < 0 {
			t += gap
		}
		c.SetTime(t + first)
		return nil
	}

	// Standard roll for fields with a fixed range.
	gap := max - min + 1
	_, rem := floorDivRemInt(c.fields[field]+amount-min, gap)
	c.Set(field, rem+min)
	return nil
}

// WeekYear returns the year that WEEK_OF_YEAR belongs to, which may be
// one before or after the calendar year at the year boundaries. With
// weeks starting on Saturday and at least three minimal days in the
// first week, Farvardin 1, 1381 falls in week 53 of 1380, and its week
// year is 1380.
func (c *Calendar) WeekYear() (int, error) {
	if err := c.complete(); err != nil {
		return 0, err
	}
	weekYear := c.fields[FieldYear]
	woy := c.fields[FieldWeekOfYear]
	switch c.fields[FieldMonth] {
	case Farvardin:
		if woy >= 52 {
			weekYear--
		}
	case Esfand:
		if woy == 1 {
			weekYear++
		}
	}
	return weekYear, nil
}
