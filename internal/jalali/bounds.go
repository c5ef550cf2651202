package jalali

// Field bounds, indexed by Field. Most fields have fixed ranges; the
// three variable ones are the day counts (month and year lengths vary
// with leap years) and the week numbers that follow from them. YEAR's
// maxima delimit the instants representable in signed 64-bit
// milliseconds.
var (
	minValues = [fieldCount]int{
		BH,        // ERA
		1,         // YEAR
		Farvardin, // MONTH
		1,         // WEEK_OF_YEAR
		0,         // WEEK_OF_MONTH
		1,         // DAY_OF_MONTH
		1,         // DAY_OF_YEAR
		Sunday,    // DAY_OF_WEEK
		-1,        // DAY_OF_WEEK_IN_MONTH
		AM,        // AM_PM
		0,         // HOUR
		0,         // HOUR_OF_DAY
		0,         // MINUTE
		0,         // SECOND
		0,         // MILLISECOND
		-12 * oneHour, // ZONE_OFFSET
		0,         // DST_OFFSET
	}

	leastMaxValues = [fieldCount]int{
		AH,        // ERA
		292269054, // YEAR
		Esfand,    // MONTH
		52,        // WEEK_OF_YEAR
		5,         // WEEK_OF_MONTH
		29,        // DAY_OF_MONTH
		365,       // DAY_OF_YEAR
		Saturday,  // DAY_OF_WEEK
		4,         // DAY_OF_WEEK_IN_MONTH
		PM,        // AM_PM
		11,        // HOUR
		23,        // HOUR_OF_DAY
		59,        // MINUTE
		59,        // SECOND
		999,       // MILLISECOND
		12 * oneHour, // ZONE_OFFSET
		oneHour,   // DST_OFFSET
	}

	maxValues = [fieldCount]int{
		AH,        // ERA
		292278994, // YEAR
		Esfand,    // MONTH
		53,        // WEEK_OF_YEAR
		6,         // WEEK_OF_MONTH
		31,        // DAY_OF_MONTH
		366,       // DAY_OF_YEAR
		Saturday,  // DAY_OF_WEEK
		6,         // DAY_OF_WEEK_IN_MONTH
		PM,        // AM_PM
		11,        // HOUR
		23,        // HOUR_OF_DAY
		59,        // MINUTE
		59,        // SECOND
		999,       // MILLISECOND
		12 * oneHour, // ZONE_OFFSET
		oneHour,   // DST_OFFSET
	}
)

// Minimum returns the smallest value the field can ever take.
func (c *Calendar) Minimum(field Field) int {
	return minValues[field]
}

// Maximum returns the largest value the field can ever take, for any
// date.
func (c *Calendar) Maximum(field Field) int {
	return maxValues[field]
}

// GreatestMinimum returns the highest minimum value for the field. No
// Jalali field has a variable minimum, so this equals Minimum.
func (c *Calendar) GreatestMinimum(field Field) int {
	return minValues[field]
}

// LeastMaximum returns the lowest maximum value for the field across
// all dates. For DAY_OF_MONTH that is 29, the length of a common
// Esfand.
func (c *Calendar) LeastMaximum(field Field) int {
	return leastMaxValues[field]
}

// ActualMinimum returns the minimum value the field can take at the
// current date. No Jalali field has a date-dependent minimum, so this
// equals Minimum.
func (c *Calendar) ActualMinimum(field Field) int {
	return minValues[field]
}

// ActualMaximum returns the maximum value the field can take at the
// current date. For DAY_OF_MONTH on Esfand 3, 1379 it is 30; on
// Esfand 3, 1380 it is 29.
func (c *Calendar) ActualMaximum(field Field) (int, error) {
	switch field {
	case FieldDayOfMonth:
		month, err := c.Get(FieldMonth)
		if err != nil {
			return 0, err
		}
		return c.monthLength(month), nil

	case FieldDayOfYear:
		if err := c.complete(); err != nil {
			return 0, err
		}
		return c.yearLengthCurrent(), nil

	case FieldWeekOfYear, FieldWeekOfMonth, FieldDayOfWeekInMonth:
		return c.probeActualMaximum(field)

	case FieldYear:
		return c.actualMaximumYear()

	default:
		// Every other field has a fixed maximum.
		return maxValues[field], nil
	}
}

// probeActualMaximum finds the maximum for a week-related field by
// setting candidate values on a lenient clone, counting up from the
// greatest minimum until the value no longer round-trips.
func (c *Calendar) probeActualMaximum(field Field) (int, error) {
	value := c.GreatestMinimum(field)
	end := c.Maximum(field)
	if value == end {
		return value, nil
	}

	work := c.Clone()
	work.SetLenient(true)

	result := value
	for value <= end {
		work.Set(field, value)
		got, err := work.Get(field)
		if err != nil {
			return 0, err
		}
		if got != value {
			break
		}
		result = value
		value++
	}
	return result, nil
}

// actualMaximumYear finds the largest year reachable from the current
// date within the representable millisecond range.
//
// The probe loop used for the week fields would take far too long over
// a range this large, so a binary search is used instead: a candidate
// year is set on a lenient clone of the anchor date, and it is valid
// exactly when both the year and the era read back unchanged. Checking
// the era as well catches the overflow wrapping an AH instant into BH;
// month, date and time need no checking, since an invalid year corrupts
// the era or the year before anything else.
//
// Each candidate gets its own clone. A failed candidate leaves
// overflow-wrapped fields behind, and reusing that calendar would make
// the next probe compose from the wrapped month and day instead of the
// anchor's, so the usual search invariant (lowGood valid, highBad
// invalid) only holds when every probe starts from the anchor fields.
func (c *Calendar) actualMaximumYear() (int, error) {
	base := c.Clone()
	base.SetLenient(true)

	era, err := base.Get(FieldEra)
	if err != nil {
		return 0, err
	}

	lowGood := leastMaxValues[FieldYear]
	highBad := maxValues[FieldYear] + 1
	for lowGood+1 < highBad {
		y := lowGood + (highBad-lowGood)/2
		work := base.Clone()
		work.Set(FieldYear, y)
		gotYear, err := work.Get(FieldYear)
		if err != nil {
			return 0, err
		}
		gotEra, err := work.Get(FieldEra)
		if err != nil {
			return 0, err
		}
		if gotYear == y && gotEra == era {
			lowGood = y
		} else {
			highBad = y
		}
	}
	return lowGood, nil
}
