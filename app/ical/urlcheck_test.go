package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"https://www.airbnb.com/calendar/ical/12345.ics?s=abc", true},
		{"http://example.com/cal.ics", true},
		{"ftp://example.com/cal.ics", false},
		{"not a url", false},
		{"https://", false},
		{"/relative/path.ics", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidURL(tt.value); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestSourceFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.airbnb.com/calendar/ical/12345.ics?s=abc", "airbnb"},
		{"https://ical.booking.com/v1/export?t=token", "booking"},
		{"https://www.Airbnb.COM/calendar/ical/9.ics", "airbnb"},
		{"https://example.com/my-calendar.ics", "manual"},
	}

	for _, tt := range tests {
		if got := SourceFromURL(tt.url); got != tt.want {
			t.Errorf("SourceFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestProbeInvalidFormat(t *testing.T) {
	parser := NewParser(5*time.Second, "test-agent")
	result := parser.Probe(context.Background(), "not a url")

	if result.OK {
		t.Error("Expected probe to fail for malformed URL")
	}
	if result.Message != "Invalid URL format" {
		t.Errorf("Expected 'Invalid URL format', got: %s", result.Message)
	}
}

func TestProbeUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	parser := NewParser(2*time.Second, "test-agent")
	result := parser.Probe(context.Background(), url)

	if result.OK {
		t.Error("Expected probe to fail for unreachable host")
	}
}

func TestProbeNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, "test-agent")
	result := parser.Probe(context.Background(), server.URL)

	if result.OK {
		t.Error("Expected probe to fail for 403 response")
	}
	if result.Message != "Failed to fetch calendar (403: Forbidden)" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestProbeWrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, "test-agent")
	result := parser.Probe(context.Background(), server.URL)

	if result.OK {
		t.Error("Expected probe to fail for html response")
	}
	if result.Message != "URL does not return iCal data" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestProbeBodyWithoutCalendarMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.Write([]byte("this is not actually a calendar"))
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, "test-agent")
	result := parser.Probe(context.Background(), server.URL)

	if result.OK {
		t.Error("Expected probe to fail for body without VCALENDAR marker")
	}
	if result.Message != "Invalid iCal format" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}

func TestProbeValidCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Write([]byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"))
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, "test-agent")
	result := parser.Probe(context.Background(), server.URL)

	if !result.OK {
		t.Fatalf("Expected probe to succeed, got: %s", result.Message)
	}
	if result.Message != "Calendar URL is valid" {
		t.Errorf("Unexpected message: %s", result.Message)
	}
}
