package rule

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for idx := 0; idx < len(s); idx++ {
		if !IsTokenChar(s[idx]) {
			return false
		}
	}

	return true
}

// IsVisible reports whether s holds no control characters.
// Empty string is visible.
func IsVisible(s string) bool {
	for idx := 0; idx < len(s); idx++ {
		if IsControl(s[idx]) {
			return false
		}
	}
	return true
}
