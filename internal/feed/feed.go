// Package feed renders the months of a Jalali year as an iCalendar feed.
// Each month start becomes an all-day VEVENT, so subscribing a calendar
// client to the feed overlays the Jalali month boundaries onto its
// Gregorian grid.
package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/go-jalali/internal/calendar"
	"github.com/tartampluch/go-jalali/internal/config"
)

// MonthEntry describes one Jalali month for list-style rendering.
type MonthEntry struct {
	// Month is the 1-based Jalali month number.
	Month int

	// Name is the localized month name.
	Name string

	// Start is the first day of the month.
	Start calendar.Date

	// Days is the month length, accounting for leap Esfand.
	Days int
}

// SummaryData feeds the localized summary template.
type SummaryData struct {
	Month string
	Year  int
}

// Generator builds the ICS document. FormatSummary lets the caller inject
// localized strings without this package importing the translation layer.
type Generator struct {
	Clock  Clock
	Locale calendar.Locale

	FormatSummary func(data SummaryData) string
}

// Generate produces the feed for one Jalali year along with the month list.
// The year must be inside the validated calendar range.
func (g *Generator) Generate(ctx context.Context, year int) ([]byte, []MonthEntry, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyYear, year,
	)

	if year < config.MinJalaliYear || year > config.MaxJalaliYear {
		return nil, nil, fmt.Errorf("%s: %d", config.ErrYearRange, year)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: month boundaries never change, so a long refresh is fine.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(g.Clock.Now().UTC())

	entries := make([]MonthEntry, 0, 12)
	for m := 1; m <= 12; m++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		first := calendar.FromJalali(year, m, 1)
		entry := MonthEntry{
			Month: m,
			Name:  g.Locale.MonthNames[m-1],
			Start: first,
			Days:  calendar.DaysInMonth(year, m),
		}
		entries = append(entries, entry)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, g.eventUID(year, m))
		event.Props.SetText(config.PropSummary, g.summary(entry, year))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(first.Time())
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	log.Info(config.MsgFeedGenerated,
		config.LogKeyEvents, len(entries),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), entries, nil
}

// summary renders the event title, falling back to "Name Year" when no
// localized formatter is wired in.
func (g *Generator) summary(entry MonthEntry, year int) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(SummaryData{Month: entry.Name, Year: year})
	}
	return fmt.Sprintf("%s %d", entry.Name, year)
}

// eventUID derives a stable identifier so clients do not duplicate events
// across refreshes.
func (g *Generator) eventUID(year, month int) string {
	input := fmt.Sprintf(config.FormatHashInput, year, month, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	base := fmt.Sprintf("%x", hash[:config.UIDHashLength])
	return fmt.Sprintf(config.FormatUID, base, year, config.ICalDomain)
}
