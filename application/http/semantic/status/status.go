// Package status holds the response statuses the server can produce.
package status

import "strconv"

type Status struct {
	Code         uint
	ReasonPhrase string
}

// Successful 2XX
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.3
var (
	OK = Status{200, "OK"}
)

// Client Error 4xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.5
var (
	BadRequest     = Status{400, "Bad Request"}
	NotFound       = Status{404, "Not Found"}
	RequestTimeout = Status{408, "Request Timeout"}
)

// Server Error 5xx
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15.6
var (
	InternalServerError = Status{500, "Internal Server Error"}
	ServiceUnavailable  = Status{503, "Service Unavailable"}
)

// Text returns status-code and reason-phrase separated by SP. e.g. "404 Not Found"
func (s Status) Text() string {
	return strconv.FormatUint(uint64(s.Code), 10) + " " + s.ReasonPhrase
}

// IsError reports whether the status is 4xx or 5xx.
func (s Status) IsError() bool { return s.Code >= 400 }
