package http

import (
	"bytes"

	"static-server/application/util/rule"
)

// lexer walks over an immutable buffer with its own cursor.
// Tokens it returns are subslices of the buffer and must be copied before being kept.
type lexer struct {
	buf []byte
	pos int
}

func newLexer(b []byte) *lexer { return &lexer{buf: b} }

func (l *lexer) done() bool { return l.pos >= len(l.buf) }

// line returns the next line without its terminator.
// LF terminates a line and a single CR preceding it is dropped.
// ok is false if there's no input left.
func (l *lexer) line() (line []byte, ok bool) {
	if l.done() {
		return nil, false
	}

	rest := l.buf[l.pos:]
	idx := bytes.IndexByte(rest, rule.LF)
	if idx < 0 {
		line, l.pos = rest, len(l.buf)
	} else {
		line, l.pos = rest[:idx], l.pos+idx+1
	}

	line = bytes.TrimSuffix(line, []byte{rule.CR})

	return line, true
}

// rest returns all bytes after the cursor and moves the cursor to the end.
func (l *lexer) rest() []byte {
	if l.done() {
		return nil
	}
	b := l.buf[l.pos:]
	l.pos = len(l.buf)
	return b
}

// fields splits line around runs of SP and HTAB.
func fields(line []byte) [][]byte {
	return bytes.FieldsFunc(line, func(r rune) bool {
		return r < 0x80 && rule.IsSpace(byte(r))
	})
}
