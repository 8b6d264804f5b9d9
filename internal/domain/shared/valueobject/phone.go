package valueobject

import "strings"

// MinDialableDigits is the shortest digit string accepted as a messaging recipient
const MinDialableDigits = 10

// Phone is a contact number reduced to its digits.
// It is immutable; the raw form is kept for display.
type Phone struct {
	raw    string
	digits string
}

// NewPhone builds a Phone from free-form input such as "+53 5 123-4567"
func NewPhone(raw string) Phone {
	return Phone{raw: strings.TrimSpace(raw), digits: DigitsOnly(raw)}
}

// DigitsOnly strips every character that is not an ASCII digit
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Raw returns the number as it was entered
func (p Phone) Raw() string {
	return p.raw
}

// Digits returns the normalized number
func (p Phone) Digits() string {
	return p.digits
}

// IsEmpty reports whether the number has no digits at all
func (p Phone) IsEmpty() bool {
	return p.digits == ""
}

// IsDialable reports whether the number has at least minDigits digits
func (p Phone) IsDialable(minDigits int) bool {
	if minDigits <= 0 {
		minDigits = MinDialableDigits
	}
	return len(p.digits) >= minDigits
}
