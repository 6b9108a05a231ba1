package calendar

import (
	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/convert"
)

// Interval selects the unit of an arithmetic step.
type Interval int

const (
	// None leaves the date untouched.
	None Interval = iota
	// Day shifts by whole days.
	Day
	// Month shifts by whole months, clamping the day of month.
	Month
	// Year shifts by whole years, clamping the day of month.
	Year
)

// IsValid reports whether the triple names a real Jalali calendar day.
// After the cheap bounds check it round-trips the triple through the
// converter and demands exact equality, which catches impossible days like
// Esfand 30 of a common year without a separate leap table. Two conversions
// per call is fine; validation is nowhere near a hot path.
func IsValid(year, month, day int) bool {
	if year < config.MinJalaliYear || year > config.MaxJalaliYear {
		return false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	gy, gm, gd := convert.ToGregorian(year, month, day)
	jy, jm, jd := convert.ToJalali(gy, gm, gd)
	return jy == year && jm == month && jd == day
}

// IsLeapYear reports whether the Jalali year has 366 days.
// A year is leap exactly when its Esfand has a 30th day, so validation
// doubles as the leap rule.
func IsLeapYear(year int) bool {
	return IsValid(year, 12, 30)
}

// DaysInMonth returns the length of the given month of the given year.
func DaysInMonth(year, month int) int {
	switch {
	case month < 7:
		return 31
	case month < 12:
		return 30
	case IsLeapYear(year):
		return 30
	default:
		return 29
	}
}

// ClampDayOfMonth forces day into the valid range for the given Jalali
// year/month. Used after arithmetic that may overflow a month's length,
// e.g. the 31st of Shahrivar rolled into Mehr becomes the 30th.
func ClampDayOfMonth(year, month, day int) int {
	if day < 1 {
		return 1
	}
	if max := DaysInMonth(year, month); day > max {
		return max
	}
	return day
}

// Add returns a copy of d shifted by amount units of the given interval.
// The receiver is never mutated. Amount zero or interval None returns d.
func (d Date) Add(interval Interval, amount int) Date {
	if amount == 0 {
		return d
	}
	switch interval {
	case Day:
		return d.AddDays(amount)
	case Month:
		return d.AddMonths(amount)
	case Year:
		return d.AddYears(amount)
	default:
		return d
	}
}

// AddDays shifts by whole days. The raw day field may leave [1,31], but the
// converter re-decomposes any absolute day number, so a round-trip through
// Gregorian normalizes month and year without explicit wraparound logic.
func (d Date) AddDays(n int) Date {
	gy, gm, gd := convert.ToGregorian(d.jy, d.jm, d.jd+n)
	return FromGregorian(gy, gm, gd)
}

// AddMonths shifts by whole months, carrying into the year by floor
// division and clamping the day to the target month's length.
func (d Date) AddMonths(n int) Date {
	m := d.jm - 1 + n
	year := d.jy + convert.Div(m, 12)
	month := convert.Mod(m, 12) + 1
	return FromJalali(year, month, ClampDayOfMonth(year, month, d.jd))
}

// AddYears shifts by whole years, clamping the day. Esfand 30 of a leap
// year rolled into a common year lands on Esfand 29.
func (d Date) AddYears(n int) Date {
	year := d.jy + n
	return FromJalali(year, d.jm, ClampDayOfMonth(year, d.jm, d.jd))
}

// FirstOfMonth returns day 1 of the same Jalali year and month.
func (d Date) FirstOfMonth() Date {
	return FromJalali(d.jy, d.jm, 1)
}
