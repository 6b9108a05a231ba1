// Package convert implements the raw Gregorian/Jalali triple conversion.
//
// Both directions go through an absolute day number relative to an internal
// epoch, so converting never walks the calendar day by day. The functions
// here are total: they accept any integer triple and never validate. Feeding
// them a day that does not exist in the source calendar produces a
// well-defined but meaningless result; the calendar package is responsible
// for rejecting such input before it gets here.
package convert

// gregorianMonthDays holds the month lengths of a non-leap Gregorian year.
var gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// jalaliMonthDays holds the month lengths of a non-leap Jalali year.
// Esfand gains a 30th day in leap years.
var jalaliMonthDays = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 29}

const (
	// epochShift aligns the Gregorian day count (rebased to 1600-03)
	// with the Jalali day count (rebased to year 979).
	epochShift = 79

	// Cycle lengths in days.
	grandCycle     = 12053  // 33 Jalali years: 25 common + 8 leap
	jalaliSubCycle = 1461   // 4 Jalali years, first one leap
	gregorian400   = 146097 // 400 Gregorian years
	gregorian100   = 36524  // 100 Gregorian years without the 400-year leap day
	gregorian4     = 1461   // 4 Gregorian years including the leap day

	// Year rebasing offsets chosen so the two day counts meet at zero
	// near the shared epoch.
	gregorianYearBase = 1600
	jalaliYearBase    = 979
)

// Div returns the floor of a/b for any integer a and positive b.
// Go's native division truncates toward zero, which is wrong for the
// negative day counts that show up when converting dates before the epoch.
func Div(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Mod returns a - Div(a,b)*b, always in [0, b) for positive b.
func Mod(a, b int) int {
	return a - Div(a, b)*b
}

// IsGregorianLeap reports whether a proleptic Gregorian year is leap.
func IsGregorianLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ToJalali converts a proleptic Gregorian date to the Jalali calendar.
// Months are 1-based in both calendars.
func ToJalali(gy, gm, gd int) (jy, jm, jd int) {
	y := gy - gregorianYearBase

	// Days from the internal Gregorian epoch to the start of year y,
	// then to the start of month gm, then to the day itself.
	days := 365*y + Div(y+3, 4) - Div(y+99, 100) + Div(y+399, 400)
	for i := 0; i < gm-1; i++ {
		days += gregorianMonthDays[i]
	}
	if gm > 2 && IsGregorianLeap(gy) {
		days++
	}
	days += gd - 1

	// Re-anchor on the Jalali epoch and peel off the cycles.
	days -= epochShift

	jy = jalaliYearBase + 33*Div(days, grandCycle)
	days = Mod(days, grandCycle)

	jy += 4 * (days / jalaliSubCycle)
	days %= jalaliSubCycle

	// The first year of each 4-year sub-cycle carries the leap day.
	if days >= 366 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}

	var i int
	for i = 0; i < 11 && days >= jalaliMonthDays[i]; i++ {
		days -= jalaliMonthDays[i]
	}
	return jy, i + 1, days + 1
}

// ToGregorian converts a Jalali date to the proleptic Gregorian calendar.
// Months are 1-based in both calendars.
func ToGregorian(jy, jm, jd int) (gy, gm, gd int) {
	y := jy - jalaliYearBase

	// Leap days accumulated by the 33-year rule: 8 leap years per cycle,
	// landing on cycle years 0, 4, 8, ..., 28.
	days := 365*y + Div(y, 33)*8 + Div(Mod(y, 33)+3, 4)
	for i := 0; i < jm-1; i++ {
		days += jalaliMonthDays[i]
	}
	days += jd - 1

	days += epochShift

	gy = gregorianYearBase + 400*Div(days, gregorian400)
	days = Mod(days, gregorian400)

	// Within a 400-year block the century years are not leap except the
	// first. The off-by-one shuffles below account for the leap day that
	// a straight division would place in the wrong century.
	leap := true
	if days >= gregorian100+1 {
		days--
		gy += 100 * (days / gregorian100)
		days %= gregorian100
		if days >= 365 {
			days++
		} else {
			leap = false
		}
	}

	gy += 4 * (days / gregorian4)
	days %= gregorian4

	if days >= 366 {
		leap = false
		days--
		gy += days / 365
		days %= 365
	}

	var i int
	for i = 0; days >= monthLen(i, leap); i++ {
		days -= monthLen(i, leap)
	}
	return gy, i + 1, days + 1
}

// monthLen returns the length of 0-based Gregorian month i.
func monthLen(i int, leap bool) int {
	if i == 1 && leap {
		return 29
	}
	return gregorianMonthDays[i]
}
