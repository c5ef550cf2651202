// Package feed turns a vCard address book into an iCalendar feed of
// Jalali anniversaries.
//
// BDAY values written as slash dates ("1375/12/10") are Jalali;
// dash, basic and RFC 3339 forms are Gregorian and converted. Events
// recur on the same Jalali date every Jalali year, so their Gregorian
// DTSTART drifts by a day from year to year exactly as the calendar
// does.
package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/jalali"
	"github.com/tartampluch/go-jalali/internal/persiantext"
)

// SyncConfig carries all parameters of one feed generation.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // absolute path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP basic auth username
	WebPass         string // HTTP basic auth password
	ReminderTrigger string // ISO8601 duration (e.g. "-P1D"), empty disables alarms
}

// Generator fetches the address book and produces the feed.
type Generator struct {
	Clock   Clock
	Fetcher VCardFetcher

	// FormatSummary injects localized event summaries. Nil falls back
	// to the default English form.
	FormatSummary func(name string, age int, yearKnown bool) string
}

// jalaliDate is a plain Jalali calendar date. Month is zero-based like
// the engine's month field.
type jalaliDate struct {
	Year  int
	Month int
	Day   int
}

// RunSync runs the fetch-parse-generate pipeline. It returns the ICS
// bytes, the contact entries, the number of anniversaries falling on
// today's Jalali date, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []AnniversaryEntry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, entries, count, err := g.generateCalendar(ctx, reader, cfg.ReminderTrigger)
	if err == nil {
		log.Debug("Sync finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, entries, count, err
}

// acquireStream opens the configured data source.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateCalendar decodes the vCard stream and assembles the
// iCalendar object plus the entry list.
func (g *Generator) generateCalendar(ctx context.Context, r io.Reader, reminderTrigger string) ([]byte, []AnniversaryEntry, int, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Anniversaries are wall-calendar dates: what matters is the Jalali
	// date where the user lives, so "today" derives from the local
	// clock date, not the UTC one.
	now := g.Clock.Now()
	today := localJalaliDate(now)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	decoder := vcard.NewDecoder(r)
	stats := struct{ processed, withBday, today int }{0, 0, 0}
	var entries []AnniversaryEntry

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going to recover as much of the address book as
			// possible.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, yearKnown, err := parseAnniversary(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.withBday++

		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		// Stable UID across refreshes.
		input := fmt.Sprintf(config.FormatHashInput, name, birth.String(), config.UIDSalt)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

		nextOcc, ageNext := nextOccurrence(today, birth, yearKnown)

		entries = append(entries, AnniversaryEntry{
			UID:            uidBase,
			Name:           name,
			BirthYear:      birth.Year,
			BirthMonth:     birth.Month,
			BirthDay:       birth.Day,
			YearKnown:      yearKnown,
			NextOccurrence: nextOcc,
			AgeNext:        ageNext,
		})

		events, isToday := g.createEvents(name, birth, yearKnown, reminderTrigger, today, uidBase)
		if isToday {
			stats.today++
			slog.Info(config.MsgAnnivToday,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyName, name,
				config.LogKeyDate, birth.String())
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		// Return a valid empty VCALENDAR so clients do not flag the
		// feed as broken.
		var buf bytes.Buffer
		buf.WriteString(config.StubVCalendar)
		g.logSuccess(stats)
		return buf.Bytes(), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), entries, stats.today, nil
}

func (g *Generator) logSuccess(stats struct{ processed, withBday, today int }) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompFeed,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// createEvents generates one event per target Jalali year (previous,
// current and next), skipping years before the person was born. The
// Jalali date is normalized through the engine, so an Esfand 30 birth
// observed in a common year lands on the following Farvardin 1.
func (g *Generator) createEvents(name string, birth jalaliDate, yearKnown bool, reminderTrigger string, today jalaliDate, uidBase string) ([]*ical.Event, bool) {
	targetYears := []int{today.Year - 1, today.Year, today.Year + 1}

	var events []*ical.Event
	isToday := false

	for _, y := range targetYears {
		if yearKnown && y < birth.Year {
			continue
		}

		age := 0
		if yearKnown {
			age = y - birth.Year
		}

		summary := fmt.Sprintf(config.FallbackSummary, name)
		if g.FormatSummary != nil {
			summary = g.FormatSummary(name, age, yearKnown)
		}

		c := jalali.NewDate(y, birth.Month, birth.Day)
		ms, err := c.Time()
		if err != nil {
			continue
		}
		eventDate := time.UnixMilli(ms).UTC()

		ny, _ := c.Get(jalali.FieldYear)
		nm, _ := c.Get(jalali.FieldMonth)
		nd, _ := c.Get(jalali.FieldDayOfMonth)
		if ny == today.Year && nm == today.Month && nd == today.Day {
			isToday = true
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" {
			addAlarm(event, reminderTrigger, summary)
		}

		events = append(events, event)
	}
	return events, isToday
}

// addAlarm appends a DISPLAY alarm to the event. The trigger value is
// set raw to avoid an unwanted VALUE=TEXT parameter.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// nextOccurrence finds the Gregorian instant of the upcoming
// anniversary relative to today, for sorting. The candidate in the
// current Jalali year is used unless it has already passed.
func nextOccurrence(today, birth jalaliDate, yearKnown bool) (time.Time, int) {
	todayStart := gregorianMidnight(today)

	year := today.Year
	candidate := gregorianMidnight(jalaliDate{year, birth.Month, birth.Day})
	if candidate.Before(todayStart) {
		year++
		candidate = gregorianMidnight(jalaliDate{year, birth.Month, birth.Day})
	}

	ageNext := 0
	if yearKnown {
		ageNext = year - birth.Year
	}
	return candidate, ageNext
}

// localJalaliDate converts the local clock date of an instant to its
// Jalali date.
func localJalaliDate(now time.Time) jalaliDate {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	c := jalali.NewFromMillis(midnight.UnixMilli())
	// Get cannot fail on an instant-backed calendar.
	jy, _ := c.Get(jalali.FieldYear)
	jm, _ := c.Get(jalali.FieldMonth)
	jd, _ := c.Get(jalali.FieldDayOfMonth)
	return jalaliDate{Year: jy, Month: jm, Day: jd}
}

// gregorianMidnight returns the UTC midnight instant of a Jalali date.
func gregorianMidnight(d jalaliDate) time.Time {
	c := jalali.NewDate(d.Year, d.Month, d.Day)
	ms, err := c.Time()
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (d jalaliDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month+1, d.Day)
}

// parseAnniversary reads a BDAY value. Slash dates are Jalali; dash,
// basic and RFC 3339 forms are Gregorian and converted through the
// engine. Truncated --MM-DD values are taken as a Jalali month and day
// with the year unknown.
func parseAnniversary(value string) (jalaliDate, bool, error) {
	v := strings.TrimSpace(persiantext.Unify(value))

	if strings.ContainsRune(v, '/') {
		d, err := parseSlashDate(v)
		return d, true, err
	}

	if strings.HasPrefix(v, "--") {
		d, err := parseNoYear(v[2:])
		return d, false, err
	}

	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formats {
		t, err := time.Parse(f, v)
		if err != nil {
			continue
		}
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return localJalaliDate(midnight), true, nil
	}

	return jalaliDate{}, false, errors.New(config.ErrDateParse)
}

func parseSlashDate(v string) (jalaliDate, error) {
	parts := strings.Split(v, "/")
	if len(parts) != 3 {
		return jalaliDate{}, errors.New(config.ErrDateParse)
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return jalaliDate{}, errors.New(config.ErrDateParse)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return jalaliDate{}, errors.New(config.ErrDateParse)
	}
	return jalaliDate{Year: year, Month: month - 1, Day: day}, nil
}

// parseNoYear reads the "MM-DD" or "MMDD" tail of a truncated BDAY.
// time.Parse is no use here: the digits are a Jalali month and day, and
// Gregorian month lengths would reject dates like Shahrivar 31.
func parseNoYear(v string) (jalaliDate, error) {
	v = strings.ReplaceAll(v, "-", "")
	if len(v) != 4 {
		return jalaliDate{}, errors.New(config.ErrDateParse)
	}
	month, err1 := strconv.Atoi(v[:2])
	day, err2 := strconv.Atoi(v[2:])
	if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return jalaliDate{}, errors.New(config.ErrDateParse)
	}
	return jalaliDate{Month: month - 1, Day: day}, nil
}
