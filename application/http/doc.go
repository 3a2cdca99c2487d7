// Package http parses HTTP/1.x requests.
//
// A request is parsed from a single buffer in one pass, without touching the
// buffer. Header lines must contain exactly one ": ", which is stricter than
// the RFC grammar.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
