// Package validation holds the contact-field checks shared by the lead API and
// the server-rendered contact form. The API result is authoritative; the form
// only uses these for early feedback.
package validation

import (
	"regexp"
	"strings"
)

var (
	nonDigit     = regexp.MustCompile(`\D`)
	mobilePhone  = regexp.MustCompile(`^05\d{8}$`)
	emailAddress = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
)

// NormalizePhone strips every non-digit character.
func NormalizePhone(input string) string {
	return nonDigit.ReplaceAllString(input, "")
}

// IsValidPhone reports whether input, once normalized, is a local mobile
// number: "05" followed by exactly eight digits.
func IsValidPhone(input string) bool {
	return mobilePhone.MatchString(NormalizePhone(input))
}

// NormalizeEmail trims surrounding whitespace.
func NormalizeEmail(input string) string {
	return strings.TrimSpace(input)
}

// IsValidEmail is a syntactic local@domain.tld check. It does no DNS or
// deliverability lookups.
func IsValidEmail(input string) bool {
	return emailAddress.MatchString(NormalizeEmail(input))
}

// MaskPhone hides the middle of a phone number for logs: 0501234567 -> 05******67.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}
