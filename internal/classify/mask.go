package classify

// maskDigits is the fixed redaction prefix for masked card numbers.
const maskDigits = "############"

// MaskForDisplay redacts a value that looks like a primary account number
// before it is shown to a human. If the value's digits form a 13-19 digit
// Luhn-valid number it returns twelve '#' characters followed by the last
// four digits; anything else is returned unchanged.
//
// This is a display concern only: it never alters what is uploaded.
func MaskForDisplay(value string) string {
	digits := extractDigits(value)
	if len(digits) < 13 || len(digits) > 19 || !LuhnOK(digits) {
		return value
	}
	return maskDigits + digits[len(digits)-4:]
}
