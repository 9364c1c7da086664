package customer

import "unicode"

// MinPasswordLength is the length below which a password is reported as weak.
const MinPasswordLength = 8

// PasswordWarnings lists the reasons a password is weak. The bank only
// warns about weak passwords; it never refuses them.
func PasswordWarnings(password string) []string {
	var upper, lower, digit, symbol bool
	n := 0
	for _, r := range password {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	var warnings []string
	if n < MinPasswordLength {
		warnings = append(warnings, "shorter than 8 characters")
	}
	if !upper {
		warnings = append(warnings, "no upper-case letter")
	}
	if !lower {
		warnings = append(warnings, "no lower-case letter")
	}
	if !digit {
		warnings = append(warnings, "no digit")
	}
	if !symbol {
		warnings = append(warnings, "no symbol")
	}
	return warnings
}
