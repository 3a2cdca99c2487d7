// Package rule holds the character classes of the HTTP/1.x grammar.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc2616#section-2.2
package rule

func IsAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func IsDigit(c byte) bool { return '0' <= c && c <= '9' }

// IsSpace reports whether c is SP or HTAB.
func IsSpace(c byte) bool { return c == SP || c == HTAB }

// IsEOL reports whether c is CR or LF.
func IsEOL(c byte) bool { return c == CR || c == LF }

func IsHex(c byte) bool {
	return IsDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// IsControl reports whether c is a CTL: octets 0 - 31 and DEL (127).
func IsControl(c byte) bool { return c < 0x20 || c == DEL }

// Reference: https://datatracker.ietf.org/doc/html/rfc2616#section-2.2
func IsSeparator(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '@',
		',', ';', ':', '\\', '"',
		'/', '[', ']', '?', '=',
		'{', '}', SP, HTAB:
		return true
	}
	return false
}

// IsTokenChar reports whether c may appear in a token.
// Octets above US-ASCII are rejected as well.
func IsTokenChar(c byte) bool {
	return c < 0x80 && !IsSeparator(c) && !IsControl(c) && c != DEL
}

// IsURIChar reports whether c may appear in a request target.
// Only unreserved, sub-delims, ':', '@', '%' and '/' are allowed.
func IsURIChar(c byte) bool {
	if IsAlpha(c) || IsDigit(c) {
		return true
	}

	switch c {
	case '.', '-', '_', '~',
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=',
		':', '@', '%', '/':
		return true
	}
	return false
}
