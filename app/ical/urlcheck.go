package ical

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ProbeResult is the outcome of a live feed URL check.
type ProbeResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// IsValidURL reports whether value parses as an absolute http(s) URL.
// It never fails for malformed input; anything unparseable is false.
func IsValidURL(value string) bool {
	if value == "" {
		return false
	}

	u, err := url.Parse(value)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Probe checks that a feed URL is reachable and serves iCal data.
// It is used interactively before a URL is persisted against an
// apartment, and never propagates a failure to its caller.
func (p *Parser) Probe(ctx context.Context, value string) ProbeResult {
	if !IsValidURL(value) {
		return ProbeResult{Message: "Invalid URL format"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, value, nil)
	if err != nil {
		return ProbeResult{Message: fmt.Sprintf("Failed to fetch calendar: %v", err)}
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ProbeResult{Message: fmt.Sprintf("Failed to fetch calendar: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ProbeResult{Message: fmt.Sprintf("Failed to fetch calendar (%d: %s)",
			resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/calendar") {
		return ProbeResult{Message: "URL does not return iCal data"}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProbeResult{Message: fmt.Sprintf("Failed to fetch calendar: %v", err)}
	}

	if !strings.Contains(string(body), calendarMarker) {
		return ProbeResult{Message: "Invalid iCal format"}
	}

	return ProbeResult{OK: true, Message: "Calendar URL is valid"}
}

// SourceFromURL classifies a feed URL by its provider. Used once at
// configuration time when a feed is registered; the resulting tag is
// stored and sync never re-derives it.
func SourceFromURL(feedURL string) string {
	lower := strings.ToLower(feedURL)
	switch {
	case strings.Contains(lower, "airbnb"):
		return "airbnb"
	case strings.Contains(lower, "booking"):
		return "booking"
	default:
		return "manual"
	}
}
