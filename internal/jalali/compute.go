package jalali

import "math"

// The Jalali day number used throughout this file is a modified day
// count whose onset is midnight rather than noon. Two anchors tie it to
// the millisecond axis: day 2440588 is 1970-01-01 (the millisecond
// epoch) and day 2450529 is Farvardin 1, 1376, a Friday.

// millisToJalaliDay converts absolute milliseconds to a Jalali day
// number.
func millisToJalaliDay(millis int64) int64 {
	return epochJalaliDay + floorDiv(millis, oneDay)
}

// jalaliDayToMillis converts a Jalali day number to the absolute
// milliseconds of its midnight.
func jalaliDayToMillis(day int64) int64 {
	return (day - epochJalaliDay) * oneDay
}

// jalaliDayToDayOfWeek returns the 1-based weekday of a Jalali day
// number. Day 2450529 (Farvardin 1, 1376) is a Friday, which puts
// Sunday at day numbers congruent to 6 mod 7.
func jalaliDayToDayOfWeek(day int64) int {
	dayOfWeek := int((day + 1) % 7)
	if dayOfWeek < 0 {
		return dayOfWeek + 7 + Sunday
	}
	return dayOfWeek + Sunday
}

// computeFields converts the absolute time to the full field set. This
// is the time-to-fields half of the engine; the wall clock is the
// absolute time shifted by the raw zone offset.
//
// Zone rules for the Jalali calendar are deliberately not evaluated, so
// the DST offset is always zero. The midnight-overflow recomputation
// below is kept anyway, so that a real zone implementation only has to
// supply a nonzero dstOffset.
func (c *Calendar) computeFields() {
	rawOffset := c.zoneOffset
	localMillis := c.time + int64(rawOffset)

	// Near the representable extremes, adding the zone offset can wrap
	// the sign, which would turn a maximal AH instant into a huge BH
	// year. Pin such values to the extremes instead; this loses the
	// offset but keeps the era.
	if c.time > 0 && localMillis < 0 && rawOffset > 0 {
		localMillis = math.MaxInt64
	} else if c.time < 0 && localMillis > 0 && rawOffset < 0 {
		localMillis = math.MinInt64
	}

	c.timeToFields(localMillis, false)

	days := localMillis / oneDay
	millisInDay := int(localMillis - days*oneDay)
	if millisInDay < 0 {
		millisInDay += int(oneDay)
	}

	dstOffset := 0
	millisInDay += dstOffset

	// If DST pushed the wall clock past midnight, the date fields above
	// describe the previous day and must be recomputed from the
	// DST-adjusted time.
	if millisInDay >= int(oneDay) {
		dstMillis := localMillis + int64(dstOffset)
		millisInDay -= int(oneDay)
		if localMillis > 0 && dstMillis < 0 && dstOffset > 0 {
			dstMillis = math.MaxInt64
		} else if localMillis < 0 && dstMillis > 0 && dstOffset < 0 {
			dstMillis = math.MinInt64
		}
		c.timeToFields(dstMillis, false)
	}

	c.fields[FieldMillisecond] = millisInDay % 1000
	millisInDay /= 1000
	c.fields[FieldSecond] = millisInDay % 60
	millisInDay /= 60
	c.fields[FieldMinute] = millisInDay % 60
	millisInDay /= 60
	c.fields[FieldHourOfDay] = millisInDay
	c.fields[FieldAmPm] = millisInDay / 12
	c.fields[FieldHour] = millisInDay % 12

	c.fields[FieldZoneOffset] = rawOffset
	c.fields[FieldDSTOffset] = dstOffset

	for i := range c.stamp {
		c.stamp[i] = stampComputed
	}
}

// timeToFields converts wall-clock milliseconds to the date fields.
// The caller must pass local wall millis (standard or DST, whichever is
// in effect) to get the correct local day.
//
// With quick set, only era, year, month, day-of-month, day-of-week and
// day-of-year are computed; the week-derived fields are skipped.
//
// Values are written to the field array directly, without touching the
// stamps: the caller decides whether this pass counts as a full
// recomputation.
func (c *Calendar) timeToFields(theTime int64, quick bool) {
	// Offset from Farvardin 1, 1376, then a multiple-radix
	// decomposition over the leap structure: the 4-year group has
	// 4*365+1 = 1461 days and the 33-year cycle has 33*365+8 = 12053.
	jalaliEpochDay := millisToJalaliDay(theTime) - farvardin11376Day
	n33, rem := floorDivRem(jalaliEpochDay, 12053)
	n4, remInt := floorDivRemInt(int(rem), 1461)
	n1, remInt := floorDivRemInt(remInt, 365)

	rawYear := baseYear + 33*int(n33) + 4*n4 + n1
	dayOfYear := remInt // zero-based

	// The leap day sits at the end of each 4-year group, and the last
	// year of the 33-year cycle is not leap; both positions need an
	// off-by-one correction against the plain radix result.
	if n4 != 7 && n1 == 4 {
		dayOfYear = 365 // Esfand 30 at the end of a 4-year group
	} else {
		rawYear++
		if n4 == 8 {
			dayOfYear++ // the skipped leap day belongs to the next cycle
		} else if n4 == 7 && n1 == 4 {
			dayOfYear = 0 // Farvardin 1 of the cycle's last year
		}
	}

	// Day zero of the epoch-offset axis is a Friday.
	dayOfWeek := int((jalaliEpochDay + Friday - Sunday) % 7)
	if dayOfWeek < 0 {
		dayOfWeek += Sunday + 7
	} else {
		dayOfWeek += Sunday
	}

	// The first six months have 31 days, the rest 30 (29 for a common
	// Esfand), hence the two divisors.
	var month int
	if dayOfYear < numDays[6] {
		month = dayOfYear / 31
	} else {
		month = (dayOfYear - 6) / 30
	}
	date := dayOfYear - numDays[month] + 1 // one-based

	era := AH
	year := rawYear
	if year < 1 {
		era = BH
		year = 1 - year
	}

	c.fields[FieldEra] = era
	c.fields[FieldYear] = year
	c.fields[FieldMonth] = month
	c.fields[FieldDayOfMonth] = date
	c.fields[FieldDayOfWeek] = dayOfWeek
	dayOfYear++ // one-based from here on
	c.fields[FieldDayOfYear] = dayOfYear
	if quick {
		return
	}

	// Week of year. Valid week numbers run from 1 to 52 or 53. Days at
	// the start of the year may fall into the last week of the previous
	// year; days at the end of the year may fall into week 1 of the
	// next. Both cases are decided with the neighboring year's length.
	relDow := (dayOfWeek + 7 - c.firstDayOfWeek) % 7          // 0..6
	relDowFar1 := (dayOfWeek - dayOfYear + 701 - c.firstDayOfWeek) % 7 // 0..6, weekday of Farvardin 1
	weekOfYear := (dayOfYear - 1 + relDowFar1) / 7
	if 7-relDowFar1 >= c.minimalDaysInFirstWeek {
		weekOfYear++
	}

	if dayOfYear > 359 { // fast check eliminating most dates
		lastDoy := yearLength(rawYear)
		lastRelDow := (relDow + lastDoy - dayOfYear) % 7
		if lastRelDow < 0 {
			lastRelDow += 7
		}
		if 6-lastRelDow >= c.minimalDaysInFirstWeek && dayOfYear+7-relDow > lastDoy {
			weekOfYear = 1
		}
	} else if weekOfYear == 0 {
		// Last week of the previous year.
		prevDoy := dayOfYear + yearLength(rawYear-1)
		weekOfYear = c.weekNumber(prevDoy, dayOfWeek)
	}
	c.fields[FieldWeekOfYear] = weekOfYear

	c.fields[FieldWeekOfMonth] = c.weekNumber(date, dayOfWeek)
	c.fields[FieldDayOfWeekInMonth] = (date-1)/7 + 1
}

// computeTime converts the field set to the absolute time. This is the
// fields-to-time half of the engine and resolves which of several
// possible field groups determines the day within the year.
func (c *Calendar) computeTime() error {
	if !c.lenient {
		if err := c.validateFields(); err != nil {
			return err
		}
	}

	// Unset fields read as zero throughout this function.

	year := baseYear
	if c.stamp[FieldYear] != stampUnset {
		year = c.fields[FieldYear]
	}
	if c.stamp[FieldEra] != stampUnset {
		era := c.fields[FieldEra]
		if era == BH {
			year = 1 - year
		} else if era != AH {
			// Eras other than BH and AH are rejected even in lenient
			// mode; there is nothing sensible to normalize them to.
			return ErrInvalidEra
		}
	}

	jalaliDay := c.computeJalaliDay(year)
	millis := jalaliDayToMillis(jalaliDay)

	// Time of day. The only ambiguity is HOUR_OF_DAY versus
	// HOUR + AM_PM; the fresher of the two wins. Overflowing values are
	// not normalized here so that they carry into the next period, like
	// every other field.
	millisInDay := 0
	hourOfDayStamp := c.stamp[FieldHourOfDay]
	hourStamp := c.stamp[FieldHour]
	bestStamp := max(hourStamp, hourOfDayStamp)
	if bestStamp != stampUnset {
		if bestStamp == hourOfDayStamp {
			millisInDay += c.fields[FieldHourOfDay]
		} else {
			millisInDay += c.fields[FieldHour]
			millisInDay += 12 * c.fields[FieldAmPm] // unset reads as AM
		}
	}
	millisInDay *= 60
	millisInDay += c.fields[FieldMinute]
	millisInDay *= 60
	millisInDay += c.fields[FieldSecond]
	millisInDay *= 1000
	millisInDay += c.fields[FieldMillisecond]

	// The configured raw offset applies unless the user has set the
	// zone offset field explicitly.
	zoneOffset := c.zoneOffset
	if c.stamp[FieldZoneOffset] >= stampMinUser {
		zoneOffset = c.fields[FieldZoneOffset]
	}

	// millis now holds local wall time with no zone adjustments.
	millis += int64(millisInDay)

	var dstOffset int
	if c.stamp[FieldZoneOffset] >= stampMinUser {
		dstOffset = c.fields[FieldDSTOffset]
	} else {
		// A zone lookup needs normalized year/month/date fields. If we
		// are lenient, or the month/day pair is incomplete, or the time
		// of day overflowed the day, renormalize them from the wall
		// millis. Note that a user-set DAY_OF_WEEK cannot be trusted
		// here even when present; only the day number derived above is
		// reliable.
		_, normalizedMillisInDay := floorDivRem(millis, oneDay)
		if c.lenient || c.stamp[FieldMonth] == stampUnset ||
			c.stamp[FieldDayOfMonth] == stampUnset ||
			int64(millisInDay) != normalizedMillisInDay {
			c.timeToFields(millis, true)
		}
		// Jalali zone rules are deliberately not evaluated; see
		// computeFields.
		dstOffset = 0
	}

	c.time = millis - int64(zoneOffset) - int64(dstOffset)
	return nil
}

// computeJalaliDay computes the Jalali day number from the given
// adjusted year (0 is 1 BH, -1 is 2 BH, ...) and the remaining fields.
//
// Several field groups can each specify the day within the year:
//
//	MONTH + DAY_OF_MONTH
//	MONTH + WEEK_OF_MONTH + DAY_OF_WEEK
//	MONTH + DAY_OF_WEEK_IN_MONTH + DAY_OF_WEEK
//	DAY_OF_YEAR
//	WEEK_OF_YEAR + DAY_OF_WEEK
//
// The group whose fields were set most recently wins. A group involving
// a week-related field counts only if its DAY_OF_WEEK partner is also
// set.
func (c *Calendar) computeJalaliDay(year int) int64 {
	month := 0
	var date int

	dowStamp := c.stamp[FieldDayOfWeek]
	monthStamp := c.stamp[FieldMonth]
	domStamp := c.stamp[FieldDayOfMonth]
	womStamp := aggregateStamp(c.stamp[FieldWeekOfMonth], dowStamp)
	dowimStamp := aggregateStamp(c.stamp[FieldDayOfWeekInMonth], dowStamp)
	doyStamp := c.stamp[FieldDayOfYear]
	woyStamp := aggregateStamp(c.stamp[FieldWeekOfYear], dowStamp)

	bestStamp := domStamp
	if womStamp > bestStamp {
		bestStamp = womStamp
	}
	if dowimStamp > bestStamp {
		bestStamp = dowimStamp
	}
	if doyStamp > bestStamp {
		bestStamp = doyStamp
	}
	if woyStamp > bestStamp {
		bestStamp = woyStamp
	}

	// No complete group. Fall back to WEEK_OF_MONTH,
	// DAY_OF_WEEK_IN_MONTH or WEEK_OF_YEAR alone, treating DAY_OF_WEEK
	// alone as DAY_OF_WEEK_IN_MONTH.
	if bestStamp == stampUnset {
		womStamp = c.stamp[FieldWeekOfMonth]
		dowimStamp = max(c.stamp[FieldDayOfWeekInMonth], dowStamp)
		woyStamp = c.stamp[FieldWeekOfYear]
		bestStamp = max(max(womStamp, dowimStamp), woyStamp)

		// MONTH alone, or no fields at all, behaves as DAY_OF_MONTH
		// (defaulting to day 1).
		if bestStamp == stampUnset {
			domStamp = monthStamp
			bestStamp = monthStamp
		}
	}

	useMonth := bestStamp == domStamp || bestStamp == womStamp || bestStamp == dowimStamp

	if useMonth {
		if monthStamp != stampUnset {
			month = c.fields[FieldMonth]
		}
		// An out-of-range month carries into the year.
		if month < 0 || month > 11 {
			carry, rem := floorDivRemInt(month, 12)
			year += carry
			month = rem
		}
	}

	y := year - baseYear - 1
	q33, rem33 := floorDivRemInt(y, 33)
	jalaliDay := int64(farvardin11376Day) + 365*int64(y) - 1
	jalaliDay += int64(q33 * 8)
	jalaliDay += int64(floorDivInt(rem33, 4))
	jalaliDay -= int64(floorDivInt(rem33, 32))
	// jalaliDay is now the day before Farvardin 1 of the target year.

	if useMonth {
		jalaliDay += int64(numDays[month])

		if bestStamp == domStamp {
			date = 1
			if c.stamp[FieldDayOfMonth] != stampUnset {
				date = c.fields[FieldDayOfMonth]
			}
		} else {
			// Compute from the day of week plus either the week number
			// in the month or the day-of-week-in-month ordinal; the two
			// computations are almost identical. fdm is the weekday of
			// the first of the month, zero-based on the configured
			// first day of the week.
			fdm := jalaliDayToDayOfWeek(jalaliDay+1) - c.firstDayOfWeek
			if fdm < 0 {
				fdm += 7
			}

			// Start of the first week, a date in 1..-6: the target
			// weekday within the week containing day 1, ignoring the
			// minimal-days rule for now.
			date = 1 - fdm
			if dowStamp != stampUnset {
				date += c.fields[FieldDayOfWeek] - c.firstDayOfWeek
			}

			if bestStamp == womStamp {
				if 7-fdm < c.minimalDaysInFirstWeek {
					date += 7
				}
				date += 7 * (c.fields[FieldWeekOfMonth] - 1)
			} else {
				if date < 1 {
					date += 7
				}
				dim := 1
				if c.stamp[FieldDayOfWeekInMonth] != stampUnset {
					dim = c.fields[FieldDayOfWeekInMonth]
				}
				if dim >= 0 {
					date += 7 * (dim - 1)
				} else {
					// Negative ordinals count back from the last such
					// weekday in the month: -1 is the last, -2 the one
					// before it, and so on.
					date += ((monthLength(month, year)-date)/7 + dim + 1) * 7
				}
			}
		}

		jalaliDay += int64(date)
	} else if bestStamp == doyStamp {
		jalaliDay += int64(c.fields[FieldDayOfYear])
	} else {
		// WEEK_OF_YEAR + DAY_OF_WEEK, anchored at Farvardin 1 instead
		// of the first of a month.
		fdy := jalaliDayToDayOfWeek(jalaliDay+1) - c.firstDayOfWeek
		if fdy < 0 {
			fdy += 7
		}
		date = 1 - fdy
		if dowStamp != stampUnset {
			date += c.fields[FieldDayOfWeek] - c.firstDayOfWeek
		}
		if 7-fdy < c.minimalDaysInFirstWeek {
			date += 7
		}
		date += 7 * (c.fields[FieldWeekOfYear] - 1)
		jalaliDay += int64(date)
	}

	return jalaliDay
}

// weekNumber returns the week number of a day within a period (year or
// month). The result is one-based, or zero for days before the first
// counted week when minimalDaysInFirstWeek excludes a short leading
// week. dayOfPeriod is 1 for the first day of the period; dayOfWeek is
// that day's weekday, and determines the weekday of day 1 of the
// period.
func (c *Calendar) weekNumber(dayOfPeriod, dayOfWeek int) int {
	periodStartDayOfWeek := (dayOfWeek - c.firstDayOfWeek - dayOfPeriod + 1) % 7
	if periodStartDayOfWeek < 0 {
		periodStartDayOfWeek += 7
	}

	// Count full weeks, padding out a fractional first week, then
	// decide whether that first week is long enough to count.
	weekNo := (dayOfPeriod + periodStartDayOfWeek - 1) / 7
	if 7-periodStartDayOfWeek >= c.minimalDaysInFirstWeek {
		weekNo++
	}
	return weekNo
}

// validateFields checks every explicitly set field against its valid
// range. It runs to completion before computeTime touches any state, so
// a strict-mode error never leaves partial results behind.
func (c *Calendar) validateFields() error {
	for f := Field(0); f < fieldCount; f++ {
		// Day-of-month and day-of-year have month- and year-dependent
		// maxima and are handled below.
		if f == FieldDayOfMonth || f == FieldDayOfYear {
			continue
		}
		if c.stamp[f] == stampUnset {
			continue
		}
		v := c.fields[f]
		if v < minValues[f] || v > maxValues[f] {
			if f == FieldEra {
				return ErrInvalidEra
			}
			return fieldRangeError(f, v, minValues[f], maxValues[f])
		}
	}

	if c.stamp[FieldDayOfMonth] != stampUnset {
		date := c.fields[FieldDayOfMonth]
		monthLen := c.monthLength(c.fields[FieldMonth])
		if date < minValues[FieldDayOfMonth] || date > monthLen {
			return fieldRangeError(FieldDayOfMonth, date, minValues[FieldDayOfMonth], monthLen)
		}
	}

	if c.stamp[FieldDayOfYear] != stampUnset {
		days := c.fields[FieldDayOfYear]
		if days < 1 || days > c.yearLengthCurrent() {
			return fieldRangeError(FieldDayOfYear, days, 1, c.yearLengthCurrent())
		}
	}

	if c.stamp[FieldDayOfWeekInMonth] != stampUnset && c.fields[FieldDayOfWeekInMonth] == 0 {
		return ErrDayOfWeekInMonthZero
	}

	return nil
}
