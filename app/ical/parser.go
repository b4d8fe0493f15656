// Package ical fetches and decodes external booking calendars
// (Airbnb/Booking.com iCal exports) into discrete events.
package ical

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// DateFormat is the calendar-date form events are normalized to.
// Time-of-day from the feed is discarded.
const DateFormat = "2006-01-02"

const calendarMarker = "BEGIN:VCALENDAR"

// Event is one booking entry decoded from a feed. Start and End are
// ISO dates ("2006-01-02").
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       string
	End         string
}

// Parser downloads and decodes iCal feeds.
type Parser struct {
	httpClient *http.Client
	userAgent  string
}

func NewParser(timeout time.Duration, userAgent string) *Parser {
	return &Parser{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchAndParse performs an HTTP GET against url and decodes the body.
// Transport failures, non-success statuses and non-calendar responses
// yield a *FetchError; undecodable bodies yield a *FormatError.
func (p *Parser) FetchAndParse(ctx context.Context, url string) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/calendar, text/plain")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Reason: fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	// Some hosts omit the header entirely; only reject an explicit
	// non-calendar content type.
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "calendar") {
		return nil, &FetchError{
			URL:    url,
			Status: resp.StatusCode,
			Reason: fmt.Sprintf("unexpected content type %q", contentType),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	return p.Parse(url, body)
}

// Parse decodes an iCalendar document. Only VEVENT components are
// considered; an event missing its UID, start or end date is skipped
// as unusable input rather than failing the whole document.
func (p *Parser) Parse(url string, body []byte) ([]Event, error) {
	if !bytes.Contains(body, []byte(calendarMarker)) {
		return nil, &FormatError{URL: url, Err: fmt.Errorf("no %s marker", calendarMarker)}
	}

	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &FormatError{URL: url, Err: err}
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, ok := p.decodeEvent(ve)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func (p *Parser) decodeEvent(ve *ics.VEvent) (Event, bool) {
	var ev Event

	uid := ve.GetProperty(ics.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, false
	}
	ev.UID = uid.Value

	start := eventTime(ve.GetStartAt, ve.GetAllDayStartAt)
	end := eventTime(ve.GetEndAt, ve.GetAllDayEndAt)
	if start.IsZero() || end.IsZero() {
		return ev, false
	}
	ev.Start = start.Format(DateFormat)
	ev.End = end.Format(DateFormat)

	ev.Summary = "Guest"
	if s := ve.GetProperty(ics.ComponentPropertySummary); s != nil && s.Value != "" {
		ev.Summary = s.Value
	}
	if d := ve.GetProperty(ics.ComponentPropertyDescription); d != nil {
		ev.Description = d.Value
	}

	return ev, true
}

// eventTime tries the date-time accessor first and falls back to the
// all-day (VALUE=DATE) accessor, which Airbnb and Booking.com feeds use.
func eventTime(getters ...func() (time.Time, error)) time.Time {
	for _, get := range getters {
		if t, err := get(); err == nil && !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}
