package unit

import (
	"testing"

	"github.com/elnosh/gonuts-wallet-core/cashu"
)

func TestFormatSat(t *testing.T) {
	if got := Format(12345, cashu.Sat); got != "12345" {
		t.Fatalf("expected '12345' but got %q", got)
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount   uint64
		expected string
	}{
		{100, "1.00"},
		{150, "1.50"},
		{9, "0.09"},
		{0, "0.00"},
	}
	for _, test := range tests {
		if got := Format(test.amount, cashu.USD); got != test.expected {
			t.Errorf("Format(%d, USD) = %q, expected %q", test.amount, got, test.expected)
		}
	}
}

func TestParseUSDRoundTrip(t *testing.T) {
	tests := []uint64{0, 9, 100, 150, 999, 123456}
	for _, amount := range tests {
		display := Format(amount, cashu.USD)
		parsed, err := Parse(display, cashu.USD)
		if err != nil {
			t.Fatalf("unexpected error parsing %q: %v", display, err)
		}
		if parsed != amount {
			t.Errorf("round-trip mismatch: %d -> %q -> %d", amount, display, parsed)
		}
	}
}

func TestParseSat(t *testing.T) {
	amt, err := Parse("42", cashu.Sat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amt != 42 {
		t.Fatalf("expected 42 but got %d", amt)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not a number", cashu.Sat); err == nil {
		t.Fatal("expected an error parsing a non-numeric amount")
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		unit     cashu.Unit
		expected string
	}{
		{cashu.Sat, "sat"},
		{cashu.Msat, "msat"},
		{cashu.USD, "$"},
		{cashu.EUR, "€"},
	}
	for _, test := range tests {
		if got := Symbol(test.unit); got != test.expected {
			t.Errorf("Symbol(%q) = %q, expected %q", test.unit, got, test.expected)
		}
	}
}
