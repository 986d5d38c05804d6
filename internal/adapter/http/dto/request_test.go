package dto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/domain"
)

func TestRupeesToPaisa(t *testing.T) {
	tests := []struct {
		name        string
		rupees      string
		want        int64
		expectError bool
	}{
		{name: "whole rupees", rupees: "500", want: 50_000},
		{name: "rupees and paisa", rupees: "12.34", want: 1234},
		{name: "single paisa digit", rupees: "0.5", want: 50},
		{name: "zero", rupees: "0", want: 0},
		{name: "sub-paisa precision", rupees: "10.005", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RupeesToPaisa(decimal.RequireFromString(tt.rupees))

			if tt.expectError {
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Fatalf("RupeesToPaisa(%s) err = %v, want ErrInvalidAmount", tt.rupees, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("RupeesToPaisa(%s) = %d, want %d", tt.rupees, got, tt.want)
			}
		})
	}
}

func TestPaisaToRupees(t *testing.T) {
	if got := PaisaToRupees(1234); !got.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("PaisaToRupees(1234) = %s, want 12.34", got)
	}
	if got := PaisaToRupees(0); !got.IsZero() {
		t.Fatalf("PaisaToRupees(0) = %s, want 0", got)
	}
}

func TestRupeesRoundTrip(t *testing.T) {
	paisa, err := RupeesToPaisa(PaisaToRupees(99_999))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paisa != 99_999 {
		t.Fatalf("round trip = %d, want 99999", paisa)
	}
}
