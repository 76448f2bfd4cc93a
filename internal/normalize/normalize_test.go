package normalize

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain lowercase", "harina", "harina"},
		{"uppercase folded", "HARINA PASTELERA", "harina pastelera"},
		{"diacritics stripped", "Azúcar Glacé", "azucar glace"},
		{"enye preserved as n", "Ñoquis", "noquis"},
		{"leading and trailing space", "  mantequilla  ", "mantequilla"},
		{"internal whitespace collapsed", "leche \t entera   1L", "leche entera 1l"},
		{"mixed accents and case", "CAFÉ  Molido  Súper", "cafe molido super"},
		{"only whitespace", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.input); got != tt.expected {
				t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKeyStability(t *testing.T) {
	// The key feeds fingerprints; the same input must always produce the
	// same output, including when fed its own result.
	inputs := []string{"Harina Pastelera", "azúcar  GLACÉ", "café"}
	for _, in := range inputs {
		first := Key(in)
		second := Key(in)
		if first != second {
			t.Errorf("Key(%q) not stable: %q vs %q", in, first, second)
		}
		if Key(first) != first {
			t.Errorf("Key not idempotent for %q: Key(%q) = %q", in, first, Key(first))
		}
	}
}
