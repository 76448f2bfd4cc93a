package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseQuantity(t *testing.T) {
	def := decimal.RequireFromString("7")

	tests := []struct {
		name   string
		cell   string
		want   string
		wantOK bool
	}{
		{"plain integer", "12", "12", true},
		{"dot decimal", "12.5", "12.5", true},
		{"dot without comma reads as decimal", "1.234", "1.234", true},
		{"comma decimal", "12,5", "12.5", true},
		{"thousands with comma decimal", "1.234,56", "1234.56", true},
		{"internal space", "1 234,5", "1234.5", true},
		{"empty", "", "7", false},
		{"garbage", "aprox. dos", "7", false},
		{"negative floored to default", "-3", "7", false},
		{"zero", "0", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.cell, def)
			if ok != tt.wantOK {
				t.Errorf("ParseQuantity(%q) ok = %v, want %v", tt.cell, ok, tt.wantOK)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseQuantity(%q) = %s, want %s", tt.cell, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		cell   string
		want   time.Time
		wantOK bool
	}{
		{"day first slash", "02/03/2026", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"day first with time", "02/03/2026 14:30", time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC), true},
		{"iso", "2026-03-02", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"short year", "2/3/26", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"empty falls back", "", fallback, false},
		{"garbage falls back", "ayer", fallback, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.cell, fallback)
			if ok != tt.wantOK {
				t.Errorf("ParseDate(%q) ok = %v, want %v", tt.cell, ok, tt.wantOK)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.cell, got, tt.want)
			}
		})
	}
}

func TestParseLeadDays(t *testing.T) {
	if days, ok := ParseLeadDays("5"); !ok || days != 5 {
		t.Errorf("ParseLeadDays(\"5\") = %d, %v", days, ok)
	}
	if days, ok := ParseLeadDays("no se"); ok || days != 0 {
		t.Errorf("ParseLeadDays garbage = %d, %v, want 0, false", days, ok)
	}
}
