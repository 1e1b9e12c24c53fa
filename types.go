package toolkit

import (
	"time"

	"github.com/eringen/toolkit/content"
)

// apiError is the JSON body of a failed API request.
type apiError struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type itemsResponse struct {
	Items    []content.Item `json:"items"`
	Count    int            `json:"count"`
	Total    int            `json:"total"`
	LoadedAt time.Time      `json:"loadedAt"`
	Source   string         `json:"source"`
}

type itemResponse struct {
	Item    content.Item   `json:"item"`
	Related []content.Item `json:"related"`
}

type loadResponse struct {
	Items      int       `json:"items"`
	Skipped    int       `json:"skipped"`
	Duplicates int       `json:"duplicates"`
	LoadedAt   time.Time `json:"loadedAt"`
	Source     string    `json:"source"`
}
