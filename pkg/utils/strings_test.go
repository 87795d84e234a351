package utils

import "testing"

func TestContainsAny(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected bool
	}{
		{
			name:     "contains first keyword",
			text:     "gunmen attack village overnight",
			keywords: []string{"attack", "kidnap"},
			expected: true,
		},
		{
			name:     "contains later keyword",
			text:     "three kidnapped on highway",
			keywords: []string{"attack", "kidnap"},
			expected: true,
		},
		{
			name:     "no match",
			text:     "community festival holds this weekend",
			keywords: []string{"attack", "kidnap"},
			expected: false,
		},
		{
			name:     "empty keyword list",
			text:     "anything",
			keywords: nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsAny(tt.text, tt.keywords); got != tt.expected {
				t.Errorf("ContainsAny(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		n        int
		expected string
	}{
		{"shorter than limit", "short", 10, "short"},
		{"exactly at limit", "exact", 5, "exact"},
		{"over limit", "this is a longer sentence", 7, "this is..."},
		{"zero limit", "anything", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.expected)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"leading zero replaced", "08031234567", "+2348031234567"},
		{"already international", "+2348031234567", "+2348031234567"},
		{"spaces and dashes stripped", "0803 123-4567", "+2348031234567"},
		{"bare national number", "8031234567", "+2348031234567"},
		{"empty", "  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.phone, "+234"); got != tt.expected {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.phone, got, tt.expected)
			}
		})
	}
}
