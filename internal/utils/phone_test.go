package utils

import (
	"errors"
	"regexp"
	"testing"
)

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "UAE mobile with trunk prefix",
			input:    "0501234567",
			expected: "971501234567",
		},
		{
			name:     "UAE mobile international format with spaces",
			input:    "+971 50 123 4567",
			expected: "971501234567",
		},
		{
			name:     "already canonical",
			input:    "971501234567",
			expected: "971501234567",
		},
		{
			name:     "international dialing prefix",
			input:    "00971501234567",
			expected: "971501234567",
		},
		{
			name:     "dashes and parentheses",
			input:    "(050) 123-4567",
			expected: "971501234567",
		},
		{
			// Bare nine digits are assumed to be a UAE number.
			name:     "bare subscriber number defaults to UAE",
			input:    "501234567",
			expected: "971501234567",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  0501234567  ",
			expected: "971501234567",
		},
		{
			name:     "Saudi mobile",
			input:    "+966 55 123 4567",
			expected: "966551234567",
		},
		{
			name:     "Kuwait eleven digits",
			input:    "+965 5123 4567",
			expected: "96551234567",
		},
		{
			name:     "Qatar with 00 prefix",
			input:    "00974 3312 3456",
			expected: "97433123456",
		},
		{
			name:     "eleven digit trunk number",
			input:    "05012345678",
			expected: "9715012345678",
		},
		{
			name:     "country outside allow-list",
			input:    "+40721234567",
			expected: "",
		},
		{
			name:     "too short",
			input:    "123",
			expected: "",
		},
		{
			name:     "too long",
			input:    "+971 50 123 4567 890",
			expected: "",
		},
		{
			name:     "letters only",
			input:    "abcdefghij",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "nine digits already starting with allowed code",
			input:    "971234567",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatPhoneNumber(tt.input)
			if result != tt.expected {
				t.Errorf("For input %q, expected %q but got %q", tt.input, tt.expected, result)
			}
		})
	}
}

func TestFormatPhoneNumberIdempotent(t *testing.T) {
	inputs := []string{
		"0501234567",
		"+971 50 123 4567",
		"00966551234567",
		"501234567",
		"05012345678",
		"+965 5123 4567",
	}

	for _, input := range inputs {
		once := FormatPhoneNumber(input)
		if once == "" {
			t.Fatalf("Expected %q to normalize", input)
		}
		if twice := FormatPhoneNumber(once); twice != once {
			t.Errorf("Format not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestFormatPhoneNumberCustomDefaultCountry(t *testing.T) {
	opts := DefaultPhoneOptions()
	opts.DefaultCountryCode = "966"
	n := NewPhoneNormalizer(opts)

	if got := n.Format("0551234567"); got != "966551234567" {
		t.Errorf("Expected Saudi default, got %q", got)
	}
	if got := n.Format("551234567"); got != "966551234567" {
		t.Errorf("Expected Saudi default for bare number, got %q", got)
	}
}

func TestIsValidFormattedPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "10 digits", input: "9715012345", expected: false},
		{name: "11 digits", input: "97150123456", expected: true},
		{name: "12 digits", input: "971501234567", expected: true},
		{name: "13 digits", input: "9715012345678", expected: true},
		{name: "14 digits", input: "97150123456789", expected: false},
		{name: "non-digit character", input: "+97150123456", expected: false},
		{name: "space inside", input: "971 50123456", expected: false},
		{name: "unknown country", input: "401234567890", expected: false},
		{name: "empty", input: "", expected: false},
		{name: "Bahrain", input: "97336001234", expected: true},
		{name: "Oman", input: "96891234567", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsValidFormattedPhone(tt.input); result != tt.expected {
				t.Errorf("For input %q, expected %v but got %v", tt.input, tt.expected, result)
			}
		})
	}
}

func TestDisplayPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "nine digit subscriber", input: "971501234567", expected: "+971 50 123 4567"},
		{name: "eight digit subscriber", input: "97433123456", expected: "+974 33123456"},
		{name: "ten digit subscriber", input: "9715012345678", expected: "+971 5012345678"},
		{name: "invalid passes through", input: "0501234567", expected: "0501234567"},
		{name: "garbage passes through", input: "call me", expected: "call me"},
		{name: "empty passes through", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := DisplayPhoneNumber(tt.input); result != tt.expected {
				t.Errorf("For input %q, expected %q but got %q", tt.input, tt.expected, result)
			}
		})
	}
}

func TestDisplayPhoneNumberShape(t *testing.T) {
	shape := regexp.MustCompile(`^\+\d{3} \d{2} \d{3} \d{4}$`)
	for _, phone := range []string{"971501234567", "966551234567", "965512345678", "973360012345", "968912345678", "974331234567"} {
		if out := DisplayPhoneNumber(phone); !shape.MatchString(out) {
			t.Errorf("Display of %q has unexpected shape %q", phone, out)
		}
	}
}

func TestFormatThenDisplay(t *testing.T) {
	formatted := FormatPhoneNumber("0501234567")
	if formatted != "971501234567" {
		t.Fatalf("Expected 971501234567, got %q", formatted)
	}
	if display := DisplayPhoneNumber(formatted); display != "+971 50 123 4567" {
		t.Errorf("Expected +971 50 123 4567, got %q", display)
	}
}

func TestValidatePhoneInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{name: "empty", input: "", expected: ErrPhoneRequired},
		{name: "whitespace only", input: "   ", expected: ErrPhoneRequired},
		{name: "eight digits", input: "05012345", expected: ErrPhoneTooShort},
		{name: "symbols do not count", input: "+971-50", expected: ErrPhoneTooShort},
		{name: "nine digits", input: "501234567", expected: nil},
		{name: "partial but long enough", input: "+971 50 1234", expected: nil},
		{name: "fifteen digits", input: "971501234567890", expected: nil},
		{name: "sixteen digits", input: "9715012345678901", expected: ErrPhoneTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoneInput(tt.input)
			if !errors.Is(err, tt.expected) {
				t.Errorf("For input %q, expected %v but got %v", tt.input, tt.expected, err)
			}
		})
	}
}

func TestGetCountryFromPhone(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantName   string
		wantRegion string
	}{
		{name: "UAE", input: "+971 50 123 4567", wantOK: true, wantName: "UAE", wantRegion: "AE"},
		{name: "Saudi Arabia", input: "966551234567", wantOK: true, wantName: "Saudi Arabia", wantRegion: "SA"},
		{name: "Kuwait", input: "965", wantOK: true, wantName: "Kuwait", wantRegion: "KW"},
		{name: "Bahrain", input: "+973", wantOK: true, wantName: "Bahrain", wantRegion: "BH"},
		{name: "Oman", input: "968 9123", wantOK: true, wantName: "Oman", wantRegion: "OM"},
		{name: "Qatar", input: "97433123456", wantOK: true, wantName: "Qatar", wantRegion: "QA"},
		{name: "local format has no country", input: "0501234567", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			country, ok := GetCountryFromPhone(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("For input %q, expected ok=%v but got %v", tt.input, tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if country.Name != tt.wantName {
				t.Errorf("Expected country %q, got %q", tt.wantName, country.Name)
			}
			if country.Region != tt.wantRegion {
				t.Errorf("Expected region %q, got %q", tt.wantRegion, country.Region)
			}
		})
	}
}
