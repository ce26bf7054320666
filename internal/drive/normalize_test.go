package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Maria Rodriguez", "maria_rodriguez"},
		{"multiple spaces collapse", "Juan   Carlos  Perez", "juan_carlos_perez"},
		{"leading and trailing spaces", "  Ana Gomez  ", "ana_gomez"},
		{"already normalized", "pedro_lopez", "pedro_lopez"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"tabs and newlines", "Luis\tFernando\nDiaz", "luis_fernando_diaz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain digits", "1234567890", "1234567890"},
		{"with dots", "1.234.567.890", "1234567890"},
		{"with dashes and spaces", "12-34 56", "123456"},
		{"with letters", "CC1234567", "1234567"},
		{"empty", "", ""},
		{"no digits at all", "abc-def", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeID(tt.input))
		})
	}
}

func TestNormalizeIDIdempotent(t *testing.T) {
	inputs := []string{"1.234.567", "CC-98765", "1234567890", ""}
	for _, input := range inputs {
		once := NormalizeID(input)
		assert.Equal(t, once, NormalizeID(once))
	}
}
