package ical

import "fmt"

// FetchError indicates a feed could not be retrieved: a transport
// failure, a non-success HTTP status, or a non-calendar response.
type FetchError struct {
	URL    string
	Status int    // HTTP status code, when one was received
	Reason string // set for non-transport causes (status, content type)
	Err    error  // underlying transport error, when any
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("failed to fetch calendar %s: %v", e.URL, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("failed to fetch calendar %s: %s", e.URL, e.Reason)
	default:
		return fmt.Sprintf("failed to fetch calendar %s", e.URL)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FormatError indicates a response body that is not a valid
// iCalendar document.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid calendar data from %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("invalid calendar data from %s", e.URL)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
