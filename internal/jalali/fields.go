package jalali

// Field identifies one slot of a Calendar's field array.
type Field int

// Calendar fields. The numbering is part of the bounds tables and must
// not be reordered.
const (
	FieldEra Field = iota
	FieldYear
	FieldMonth
	FieldWeekOfYear
	FieldWeekOfMonth
	FieldDayOfMonth
	FieldDayOfYear
	FieldDayOfWeek
	FieldDayOfWeekInMonth
	FieldAmPm
	FieldHour
	FieldHourOfDay
	FieldMinute
	FieldSecond
	FieldMillisecond
	FieldZoneOffset
	FieldDSTOffset

	fieldCount
)

var fieldNames = [fieldCount]string{
	"ERA", "YEAR", "MONTH", "WEEK_OF_YEAR", "WEEK_OF_MONTH",
	"DAY_OF_MONTH", "DAY_OF_YEAR", "DAY_OF_WEEK", "DAY_OF_WEEK_IN_MONTH",
	"AM_PM", "HOUR", "HOUR_OF_DAY", "MINUTE", "SECOND", "MILLISECOND",
	"ZONE_OFFSET", "DST_OFFSET",
}

// String returns the conventional upper-case name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "UNKNOWN_FIELD"
	}
	return fieldNames[f]
}

// Eras. The year sequence at the transition is ..., 2 BH, 1 BH, 1 AH, 2 AH, ...
// There is no year zero.
const (
	BH = 0 // Before Hegira
	AH = 1 // After Hegira
)

// Days of the week, values of FieldDayOfWeek.
const (
	Sunday = 1 + iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Months of the Jalali year, values of FieldMonth. Zero-based:
// Farvardin is month 0, Esfand is month 11.
const (
	Farvardin = iota
	Ordibehesht
	Khordad
	Tir
	Mordad
	Shahrivar
	Mehr
	Aban
	Azar
	Dey
	Bahman
	Esfand
)

// Values of FieldAmPm.
const (
	AM = 0
	PM = 1
)

// Stamp values recording how a field slot got its value. Values greater
// than stampComputed are pseudo-timestamps assigned by the owning
// Calendar's monotonic counter on each explicit Set.
const (
	stampUnset    = 0
	stampComputed = 1
	stampMinUser  = 2
)

// Millisecond constants. Day and week sizes are int64 to keep products
// with day counts from overflowing.
const (
	oneSecond       = 1000
	oneMinute       = 60 * oneSecond
	oneHour         = 60 * oneMinute
	oneDay    int64 = 24 * oneHour
	oneWeek   int64 = 7 * oneDay
)

// Epoch anchors. The absolute-time axis counts milliseconds from
// 1970-01-01T00:00Z, which is Jalali day number 2440588; Farvardin 1,
// 1376 is Jalali day number 2450529 and is a Friday. The 33-year leap
// cycle is anchored so that 1375 opens a cycle.
const (
	farvardin11376Day = 2450529
	epochJalaliDay    = 2440588
	baseYear          = 1375
)

// numDays[m] is the number of days in the year before month m.
var numDays = [12]int{0, 31, 62, 93, 124, 155, 186, 216, 246, 276, 306, 336}

var monthLengths = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 29}

var leapMonthLengths = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 30}
