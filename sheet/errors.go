package sheet

import (
	"fmt"
)

// NetworkError reports a failed request or a non-2xx response from the feed.
type NetworkError struct {
	URL        string
	StatusCode int // zero when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a CSV body that produced no usable rows.
type ParseError struct {
	Skipped int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse csv: %v", e.Err)
	}
	return fmt.Sprintf("parse csv: no usable rows (%d skipped)", e.Skipped)
}

func (e *ParseError) Unwrap() error { return e.Err }
