package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-jalali/internal/config"
)

// Locale carries the lookup tables the formatter needs. It is a plain value
// passed explicitly on every call; swapping languages means passing a
// different Locale, never mutating a shared table.
type Locale struct {
	// MonthNames holds the 12 Jalali month names, Farvardin first.
	MonthNames [12]string

	// WeekdayLabels holds the 7 day labels, Shanbeh (Saturday) first.
	// The formatter itself does not consume these; they exist for
	// callers that render week headers next to formatted dates.
	WeekdayLabels [7]string
}

// DefaultLocale returns the built-in English transliteration tables.
func DefaultLocale() Locale {
	return Locale{
		MonthNames: [12]string{
			"Farvardin", "Ordibehesht", "Khordad", "Tir", "Mordad", "Shahrivar",
			"Mehr", "Aban", "Azar", "Dey", "Bahman", "Esfand",
		},
		WeekdayLabels: [7]string{"Sh", "Ye", "Do", "Se", "Ch", "Pa", "Jo"},
	}
}

// Format renders d's Jalali triple according to layout. Each single-letter
// code is substituted, every other byte is copied through:
//
//	r  day of month            1..31
//	R  day of month, padded    01..31
//	q  month number            1..12
//	Q  month number, padded    01..12
//	e  month name from loc     Farvardin..Esfand
//	b  last two digits of year 89
//	B  four-digit year         1389
func Format(d Date, layout string, loc Locale) string {
	jy, jm, jd := d.Jalali()

	var b strings.Builder
	b.Grow(len(layout) + 8)
	for _, r := range layout {
		switch r {
		case 'r':
			b.WriteString(strconv.Itoa(jd))
		case 'R':
			fmt.Fprintf(&b, "%02d", jd)
		case 'q':
			b.WriteString(strconv.Itoa(jm))
		case 'Q':
			fmt.Fprintf(&b, "%02d", jm)
		case 'e':
			b.WriteString(loc.MonthNames[jm-1])
		case 'b':
			fmt.Fprintf(&b, "%02d", jy%100)
		case 'B':
			fmt.Fprintf(&b, "%04d", jy)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse reads a Jalali date string. Accepted layouts are the canonical
// "B/Q/R" (a two-digit year field is expanded into the 1300s), "Q/R" with
// the year taken from ref, a bare year, and a bare month; fields a layout
// omits default to ref's corresponding field.
//
// Without strict, only field bounds are checked and the returned Date is
// whatever the converter derives, so an overflowing day rolls forward.
// With strict, the triple must survive a round-trip unchanged, which
// rejects strings like "1394/12/30" naming the leap day of a common year.
func Parse(s string, strict bool, ref Date) (Date, error) {
	fields := strings.Split(strings.TrimSpace(s), config.DateSeparator)

	ry, rm, rd := ref.Jalali()
	var year, month, day int

	switch len(fields) {
	case 3:
		vals, err := atoiFields(fields)
		if err != nil {
			return Date{}, err
		}
		year, month, day = vals[0], vals[1], vals[2]
		if len(fields[0]) <= 2 {
			year += config.CenturyBase
		}
	case 2:
		vals, err := atoiFields(fields)
		if err != nil {
			return Date{}, err
		}
		year, month, day = ry, vals[0], vals[1]
	case 1:
		vals, err := atoiFields(fields)
		if err != nil {
			return Date{}, err
		}
		if len(fields[0]) > 2 {
			year, month, day = vals[0], rm, rd
		} else {
			year, month, day = ry, vals[0], rd
		}
	default:
		return Date{}, ErrMalformedInput
	}

	if year < config.MinJalaliYear || year > config.MaxJalaliYear ||
		month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, ErrInvalidDate
	}
	if strict && !IsValid(year, month, day) {
		return Date{}, ErrInvalidDate
	}

	// Normalize through the converter so a lenient parse of an
	// overflowing day yields a consistent Date.
	d := FromJalali(year, month, day)
	return FromGregorian(d.Gregorian()), nil
}

// atoiFields converts every field to an integer, rejecting anything that
// is not a plain unsigned decimal.
func atoiFields(fields []string) ([]int, error) {
	vals := make([]int, len(fields))
	for i, f := range fields {
		if f == "" {
			return nil, ErrMalformedInput
		}
		for _, r := range f {
			if r < '0' || r > '9' {
				return nil, ErrMalformedInput
			}
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, ErrMalformedInput
		}
		vals[i] = v
	}
	return vals, nil
}
