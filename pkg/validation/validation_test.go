package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain mobile", "0501234567", true},
		{"dashes are stripped", "050-123-4567", true},
		{"spaces and parens are stripped", " (050) 123 4567 ", true},
		{"one digit short", "050123456", false},
		{"one digit long", "05012345678", false},
		{"international prefix", "15551234567", false},
		{"wrong leading digits", "0601234567", false},
		{"empty", "", false},
		{"letters only", "phone", false},
		{"too short", "123", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidPhone(tc.input))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"minimal", "a@b.co", true},
		{"surrounding whitespace is trimmed", "  test@example.com\n", true},
		{"subdomain", "sales@mail.example.co.il", true},
		{"missing tld", "a@b", false},
		{"one char tld", "a@b.c", false},
		{"space in local part", "a b@c.com", false},
		{"double at", "a@@b.com", false},
		{"missing local part", "@b.com", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValidEmail(tc.input))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0501234567", NormalizePhone("+050 123-45 67"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "05******67", MaskPhone("0501234567"))
	assert.Equal(t, "***", MaskPhone("123"))
}
