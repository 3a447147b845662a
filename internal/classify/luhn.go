package classify

// LuhnOK reports whether digits passes the Luhn checksum. The input must be
// non-empty and consist only of ASCII digits; anything else fails.
func LuhnOK(digits string) bool {
	if digits == "" {
		return false
	}

	sum := 0
	double := false // every second digit, counting from the check digit
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		double = !double
		sum += d
	}
	return sum%10 == 0
}

// extractDigits returns only the ASCII digits of s, preserving order.
func extractDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
