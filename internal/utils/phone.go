package utils

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrPhoneTooShort = errors.New("phone number is too short")
	ErrPhoneTooLong  = errors.New("phone number is too long")
)

const (
	minInputDigits = 9
	maxInputDigits = 15

	minFormattedLength = 11
	maxFormattedLength = 13

	localSubscriberLength = 9
)

// Country is an allow-listed dialing code
type Country struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// PhoneOptions configures a PhoneNormalizer
type PhoneOptions struct {
	// DefaultCountryCode is prepended to local numbers (leading 0 or bare 9 digits)
	DefaultCountryCode string
	// AllowedCountries is the allow-list, matched in order
	AllowedCountries []Country
}

// DefaultPhoneOptions returns the GCC allow-list with UAE as the default country
func DefaultPhoneOptions() PhoneOptions {
	return PhoneOptions{
		DefaultCountryCode: "971",
		AllowedCountries: []Country{
			{Code: "971", Name: "UAE"},
			{Code: "966", Name: "Saudi Arabia"},
			{Code: "965", Name: "Kuwait"},
			{Code: "973", Name: "Bahrain"},
			{Code: "968", Name: "Oman"},
			{Code: "974", Name: "Qatar"},
		},
	}
}

// PhoneNormalizer converts loosely typed phone input into the canonical
// CCCXXXXXXXXX digit form the backend expects.
// It holds no mutable state and is safe for concurrent use.
type PhoneNormalizer struct {
	defaultCode string
	countries   []Country
}

// NewPhoneNormalizer creates a normalizer, copying the option tables
func NewPhoneNormalizer(opts PhoneOptions) *PhoneNormalizer {
	countries := make([]Country, len(opts.AllowedCountries))
	for i, c := range opts.AllowedCountries {
		if c.Region == "" {
			c.Region = regionForCallingCode(c.Code)
		}
		countries[i] = c
	}

	return &PhoneNormalizer{
		defaultCode: opts.DefaultCountryCode,
		countries:   countries,
	}
}

// regionForCallingCode resolves the ISO region of a calling code, e.g. 971 -> AE
func regionForCallingCode(code string) string {
	n := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
		n = n*10 + int(r-'0')
	}
	region := phonenumbers.GetRegionCodeForCountryCode(n)
	if region == phonenumbers.UNKNOWN_REGION {
		return ""
	}
	return region
}

// Countries returns a copy of the allow-list
func (p *PhoneNormalizer) Countries() []Country {
	out := make([]Country, len(p.countries))
	copy(out, p.countries)
	return out
}

// DefaultCountryCode returns the code prepended to local numbers
func (p *PhoneNormalizer) DefaultCountryCode() string {
	return p.defaultCode
}

// Format normalizes raw input to the canonical digit string.
// Returns "" if the input cannot be normalized.
func (p *PhoneNormalizer) Format(raw string) string {
	digits := digitsOnly(raw)

	// International dialing prefix
	digits = strings.TrimPrefix(digits, "00")

	// Local trunk prefix, e.g. 0501234567
	if strings.HasPrefix(digits, "0") && len(digits) >= 10 && len(digits) <= 11 {
		digits = p.defaultCode + digits[1:]
	}

	// Bare subscriber number is assumed to be local to the default country
	if !p.hasAllowedPrefix(digits) && len(digits) == localSubscriberLength {
		digits = p.defaultCode + digits
	}

	if !p.IsValidFormatted(digits) {
		return ""
	}
	return digits
}

// IsValidFormatted reports whether phone is already in canonical form
func (p *PhoneNormalizer) IsValidFormatted(phone string) bool {
	if len(phone) < minFormattedLength || len(phone) > maxFormattedLength {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return p.hasAllowedPrefix(phone)
}

// Display renders a canonical phone for humans, e.g. +971 50 123 4567.
// Invalid input is returned unchanged.
func (p *PhoneNormalizer) Display(phone string) string {
	if !p.IsValidFormatted(phone) {
		return phone
	}

	code, rest := phone[:3], phone[3:]
	if len(rest) == localSubscriberLength {
		return "+" + code + " " + rest[:2] + " " + rest[2:5] + " " + rest[5:]
	}
	return "+" + code + " " + rest
}

// Country returns the first allow-listed country whose code prefixes phone
func (p *PhoneNormalizer) Country(phone string) (Country, bool) {
	digits := digitsOnly(phone)
	for _, c := range p.countries {
		if strings.HasPrefix(digits, c.Code) {
			return c, true
		}
	}
	return Country{}, false
}

func (p *PhoneNormalizer) hasAllowedPrefix(digits string) bool {
	for _, c := range p.countries {
		if strings.HasPrefix(digits, c.Code) {
			return true
		}
	}
	return false
}

// ValidatePhoneInput is a loose check used while the user is still typing.
// It only flags missing, clearly short or clearly long input.
func ValidatePhoneInput(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrPhoneRequired
	}

	n := len(digitsOnly(phone))
	if n < minInputDigits {
		return ErrPhoneTooShort
	}
	if n > maxInputDigits {
		return ErrPhoneTooLong
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var defaultNormalizer = NewPhoneNormalizer(DefaultPhoneOptions())

// FormatPhoneNumber normalizes with the default GCC options
func FormatPhoneNumber(raw string) string {
	return defaultNormalizer.Format(raw)
}

// IsValidFormattedPhone validates with the default GCC options
func IsValidFormattedPhone(phone string) bool {
	return defaultNormalizer.IsValidFormatted(phone)
}

// DisplayPhoneNumber renders with the default GCC options
func DisplayPhoneNumber(phone string) string {
	return defaultNormalizer.Display(phone)
}

// GetCountryFromPhone looks up the country with the default GCC options
func GetCountryFromPhone(phone string) (Country, bool) {
	return defaultNormalizer.Country(phone)
}
