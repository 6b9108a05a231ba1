// Package calendar is the validating layer on top of the raw converter.
// It owns the Date value type, leap-year detection, interval arithmetic,
// and the textual format/parse grammar.
package calendar

import (
	"errors"
	"time"

	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/convert"
)

// Sentinel errors returned by the validating entry points. Callers are
// expected to check; nothing in this package panics on bad dates.
var (
	// ErrInvalidDate marks a triple that is out of range or names a day
	// that does not exist in the calendar (e.g. Esfand 30 of a common year).
	ErrInvalidDate = errors.New(config.ErrInvalidDate)

	// ErrMalformedInput marks a date string the parser cannot split into
	// numeric fields.
	ErrMalformedInput = errors.New(config.ErrMalformedDate)
)

// Date is an immutable day-granularity point in time, viewable in either
// calendar. Both triples are fixed at construction, so the derived Jalali
// fields never go stale and the value is safe to share across goroutines.
type Date struct {
	gy, gm, gd int
	jy, jm, jd int
}

// FromGregorian builds a Date from a proleptic Gregorian triple.
// The triple is taken as-is; garbage in, garbage out, exactly like the
// underlying converter.
func FromGregorian(year, month, day int) Date {
	jy, jm, jd := convert.ToJalali(year, month, day)
	return Date{gy: year, gm: month, gd: day, jy: jy, jm: jm, jd: jd}
}

// FromJalali builds a Date from a Jalali triple without validating it.
// Use IsValid first when the triple comes from untrusted input.
func FromJalali(year, month, day int) Date {
	gy, gm, gd := convert.ToGregorian(year, month, day)
	return Date{gy: gy, gm: gm, gd: gd, jy: year, jm: month, jd: day}
}

// FromTime truncates t to its calendar day in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return FromGregorian(y, int(m), d)
}

// Gregorian returns the proleptic Gregorian triple.
func (d Date) Gregorian() (year, month, day int) {
	return d.gy, d.gm, d.gd
}

// Jalali returns the Jalali triple.
func (d Date) Jalali() (year, month, day int) {
	return d.jy, d.jm, d.jd
}

// Time materializes the date as a time.Time in UTC at a fixed neutral hour.
// Noon is deliberate: a value later shifted into any civil timezone still
// falls on the same calendar day, so DST transitions cannot flip it.
func (d Date) Time() time.Time {
	return time.Date(d.gy, time.Month(d.gm), d.gd, config.NeutralHour, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d == other
}
