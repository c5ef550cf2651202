package feed_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-jalali/internal/config"
	"github.com/tartampluch/go-jalali/internal/feed"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the feed.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Local_JalaliBirthdayToday(t *testing.T) {
	// Scenario: a local vCard with a Jalali BDAY falling on today's
	// Jalali date. 2015-07-23 is Mordad 1, 1394.
	vcardContent := `BEGIN:VCARD
VERSION:4.0
FN:Leila Hosseini
BDAY:1370/05/01
END:VCARD`

	tmpFile, err := os.CreateTemp("", "test_vcard_*.vcf")
	assert.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(vcardContent)
	assert.NoError(t, err)
	_ = tmpFile.Close()

	fixedTime := time.Date(2015, 7, 23, 10, 0, 0, 0, time.UTC)

	gen := &feed.Generator{
		Clock: MockClock{CurrentTime: fixedTime},
		// No fetcher needed for local mode
	}

	cfg := feed.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: tmpFile.Name(),
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), cfg)

	assert.NoError(t, err)
	assert.Equal(t, 1, count, "Should identify one anniversary today")

	assert.Len(t, entries, 1)
	assert.Equal(t, "Leila Hosseini", entries[0].Name)
	assert.Equal(t, 1370, entries[0].BirthYear)
	assert.Equal(t, 4, entries[0].BirthMonth)
	assert.Equal(t, 1, entries[0].BirthDay)
	assert.True(t, entries[0].YearKnown)
	assert.Equal(t, 24, entries[0].AgeNext) // Born 1370, today is 1394 -> 24
	assert.Equal(t, time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC), entries[0].NextOccurrence)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Anniversary: Leila Hosseini")
}

func TestRunSync_JalaliRecurrence_GregorianDrift(t *testing.T) {
	// Scenario: events recur on the same Jalali date, so the Gregorian
	// DTSTART shifts from year to year. Mordad 1 falls on 2014-07-23,
	// 2015-07-23 and 2016-07-22 (1396 starts a day earlier because
	// 1395 is a leap year).
	vcardContent := "BEGIN:VCARD\nVERSION:3.0\nFN:Drift Test\nBDAY:1370/05/01\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	cfg := feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}

	icsData, _, _, err := gen.RunSync(context.Background(), cfg)
	assert.NoError(t, err)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20140723", "Mordad 1, 1393")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20150723", "Mordad 1, 1394")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20160722", "Mordad 1, 1395")

	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"), "Should generate exactly 3 events (Prev, Curr, Next)")
}

func TestRunSync_Esfand30_Leapling(t *testing.T) {
	// Scenario: a contact born on Esfand 30, a day that only exists in
	// leap years. In common years the engine normalizes the date to
	// Farvardin 1 of the next year, mirroring how Feb 29 birthdays
	// surface on Mar 1. Today is Farvardin 1, 1394 (2015-03-21), the
	// observed date of the Esfand 30, 1393 anniversary.
	vcardContent := "BEGIN:VCARD\nVERSION:3.0\nFN:Leap Baby\nBDAY:1375/12/30\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "http://example.com", "", "").
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	fixedTime := time.Date(2015, 3, 21, 10, 0, 0, 0, time.UTC)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: fixedTime},
		Fetcher: mockFetcher,
	}

	cfg := feed.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://example.com",
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), cfg)

	assert.NoError(t, err)
	assert.Equal(t, 1, count, "Leapling observed on Farvardin 1 in a common year")

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20150321", "Esfand 30, 1393 -> Farvardin 1, 1394")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20160320", "Esfand 30, 1394 -> Farvardin 1, 1395")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20170320", "Esfand 30, 1395 exists: 1395 is a leap year")

	// NextOccurrence uses the raw Jalali birth date in the current
	// year, which normalizes into next spring.
	assert.Len(t, entries, 1)
	assert.Equal(t, time.Date(2016, 3, 20, 0, 0, 0, 0, time.UTC), entries[0].NextOccurrence)
	assert.Equal(t, 19, entries[0].AgeNext)

	mockFetcher.AssertExpectations(t)
}

func TestRunSync_GregorianBDAY_Converted(t *testing.T) {
	// Scenario: a dash-formatted BDAY is Gregorian and converted to
	// Jalali. 2015-07-23 is Mordad 1, 1394; the baby is born today.
	vcardContent := "BEGIN:VCARD\nVERSION:3.0\nFN:Baby\nBDAY:2015-07-23\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
		FormatSummary: func(name string, age int, yearKnown bool) string {
			if age == 0 {
				return fmt.Sprintf("Anniversary: %s (Birth)", name)
			}
			return fmt.Sprintf("Anniversary: %s (%d)", name, age)
		},
	}

	cfg := feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}

	icsData, entries, _, err := gen.RunSync(context.Background(), cfg)
	assert.NoError(t, err)

	assert.Len(t, entries, 1)
	assert.Equal(t, 1394, entries[0].BirthYear)
	assert.Equal(t, 4, entries[0].BirthMonth)
	assert.Equal(t, 1, entries[0].BirthDay)

	icsStr := string(icsData)

	// No event before birth (Mordad 1, 1393)
	assert.NotContains(t, icsStr, "DTSTART;VALUE=DATE:20140723", "Should NOT generate event before birth")

	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20150723")
	assert.Contains(t, icsStr, "SUMMARY:Anniversary: Baby (Birth)", "Should indicate birth event")

	// One Jalali year old, a Gregorian day earlier
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20160722")
	assert.Contains(t, icsStr, "SUMMARY:Anniversary: Baby (1)")

	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_TruncatedBDAY_NoYear(t *testing.T) {
	// Scenario: a truncated --MM-DD value carries a Jalali month and
	// day. Shahrivar 31 is a valid Jalali date that no Gregorian month
	// could hold past June.
	vcardContent := "BEGIN:VCARD\nVERSION:4.0\nFN:No Year\nBDAY:--06-31\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	cfg := feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}

	icsData, entries, _, err := gen.RunSync(context.Background(), cfg)
	assert.NoError(t, err)

	assert.Len(t, entries, 1)
	assert.False(t, entries[0].YearKnown)
	assert.Equal(t, 5, entries[0].BirthMonth)
	assert.Equal(t, 31, entries[0].BirthDay)
	// Shahrivar 31, 1394 is 2015-09-22
	assert.Equal(t, time.Date(2015, 9, 22, 0, 0, 0, 0, time.UTC), entries[0].NextOccurrence)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20150922")
	// No birth guard without a year: three events
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
}

func TestRunSync_WithReminders(t *testing.T) {
	vcardContent := "BEGIN:VCARD\nVERSION:3.0\nFN:Alarm Test\nBDAY:1370/01/01\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	cfg := feed.SyncConfig{
		Mode:            config.SourceModeWeb,
		WebURL:          "http://test.local",
		ReminderTrigger: "-P1D",
	}

	icsData, _, _, err := gen.RunSync(context.Background(), cfg)
	assert.NoError(t, err)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, icsStr, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, icsStr, "ACTION:DISPLAY", "Alarm action should be DISPLAY")
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	expectedErr := errors.New("network unreachable")

	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, expectedErr)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Now()},
		Fetcher: mockFetcher,
	}

	cfg := feed.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://bad-url.com",
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), cfg)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, expectedErr) || strings.Contains(err.Error(), expectedErr.Error()))
	assert.Nil(t, icsData)
	assert.Nil(t, entries)
	assert.Equal(t, 0, count)
}

func TestRunSync_DateFormats_TableDriven(t *testing.T) {
	// Various BDAY formats encountered in the wild. Slash dates and
	// truncated values are Jalali; dash, basic and RFC3339 are
	// Gregorian.
	tests := []struct {
		name      string
		bdayValue string
		expectEvt bool
	}{
		{"Jalali Slash", "1375/12/10", true},
		{"Jalali Slash Persian Digits", "۱۳۷۵/۱۲/۱۰", true},
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T00:00:00Z", true},
		{"Truncated (Month-Day)", "--06-31", true},
		{"Truncated Basic", "--0631", true},
		{"Truncated Beyond Jalali Range", "--13-01", false},
		{"Garbage Data", "not-a-date", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD"

			mockFetcher := new(MockFetcher)
			mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(io.NopCloser(strings.NewReader(content)), nil)

			gen := &feed.Generator{
				Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
				Fetcher: mockFetcher,
			}

			ics, _, _, _ := gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})

			icsStr := string(ics)
			if tt.expectEvt {
				assert.Contains(t, icsStr, "BEGIN:VEVENT", "Valid date should produce an event")
			} else {
				assert.NotContains(t, icsStr, "BEGIN:VEVENT", "Invalid date should be skipped silently")
			}
		})
	}
}

func TestRunSync_EmptyBook_StubCalendar(t *testing.T) {
	// Scenario: cards without anniversaries still yield a valid feed.
	vcardContent := "BEGIN:VCARD\nVERSION:3.0\nFN:No Birthday\nEND:VCARD"

	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(vcardContent)), nil)

	gen := &feed.Generator{
		Clock:   MockClock{CurrentTime: time.Date(2015, 7, 23, 0, 0, 0, 0, time.UTC)},
		Fetcher: mockFetcher,
	}

	icsData, entries, count, err := gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})

	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, count)
	assert.Equal(t, config.StubVCalendar, string(icsData))
}

func TestRunSync_ModeErrors(t *testing.T) {
	gen := &feed.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	_, _, _, err := gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeLocal})
	assert.Error(t, err, "Empty local path should fail")

	_, _, _, err = gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeWeb})
	assert.Error(t, err, "Empty web URL should fail")

	_, _, _, err = gen.RunSync(context.Background(), feed.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
	assert.Error(t, err, "Web mode without a fetcher should fail")

	_, _, _, err = gen.RunSync(context.Background(), feed.SyncConfig{Mode: "carrier-pigeon"})
	assert.Error(t, err, "Unknown mode should fail")
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	tmpFile, err := os.CreateTemp("", "cancel_test_*.vcf")
	assert.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()
	_ = tmpFile.Close()

	cancel() // Cancel immediately before processing starts

	gen := &feed.Generator{
		Clock: MockClock{CurrentTime: time.Now()},
	}

	_, _, _, err = gen.RunSync(ctx, feed.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: tmpFile.Name(),
	})

	assert.Error(t, err)
	assert.Equal(t, context.Canceled, err, "Should return context canceled error")
}
