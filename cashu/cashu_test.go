package cashu

import "testing"

func TestAmountSplit(t *testing.T) {
	tests := []struct {
		amount   uint64
		expected []uint64
	}{
		{0, nil},
		{1, []uint64{1}},
		{13, []uint64{1, 4, 8}},
		{78, []uint64{2, 4, 8, 64}},
		{100, []uint64{4, 32, 64}},
	}

	for _, test := range tests {
		got := AmountSplit(test.amount)
		if len(got) != len(test.expected) {
			t.Fatalf("AmountSplit(%d) = %v, expected %v", test.amount, got, test.expected)
		}
		for i, v := range got {
			if v != test.expected[i] {
				t.Fatalf("AmountSplit(%d) = %v, expected %v", test.amount, got, test.expected)
			}
		}
	}
}

func TestProofsAmount(t *testing.T) {
	proofs := Proofs{
		{Amount: 2},
		{Amount: 8},
		{Amount: 64},
	}
	if got := proofs.Amount(); got != 74 {
		t.Fatalf("expected amount 74 but got %d", got)
	}
}

func TestProofsSecrets(t *testing.T) {
	proofs := Proofs{
		{Secret: "a"},
		{Secret: "b"},
	}
	secrets := proofs.Secrets()
	if len(secrets) != 2 || secrets[0] != "a" || secrets[1] != "b" {
		t.Fatalf("unexpected secrets: %v", secrets)
	}
}

func TestCheckDuplicateProofs(t *testing.T) {
	unique := Proofs{
		{Amount: 1, Id: "00a", Secret: "s1", C: "c1"},
		{Amount: 2, Id: "00a", Secret: "s2", C: "c2"},
	}
	if CheckDuplicateProofs(unique) {
		t.Fatal("expected no duplicates")
	}

	withDup := Proofs{
		{Amount: 1, Id: "00a", Secret: "s1", C: "c1"},
		{Amount: 1, Id: "00a", Secret: "s1", C: "c1"},
	}
	if !CheckDuplicateProofs(withDup) {
		t.Fatal("expected a duplicate to be detected")
	}
}

func TestDeriveKeysetId(t *testing.T) {
	keys := map[uint64]string{
		1: "03c7d0e0aa0e2f7f4b1d8bf5c6e2c3c6f9d5b4de8f2a1b0c9d8e7f6a5b4c3d2e1f",
		2: "03a7d0e0aa0e2f7f4b1d8bf5c6e2c3c6f9d5b4de8f2a1b0c9d8e7f6a5b4c3d2e1f",
	}
	id, err := DeriveKeysetId(keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(id) != 16 || id[:2] != "00" {
		t.Fatalf("expected a 16-char id prefixed with 00, got %q", id)
	}

	idAgain, err := DeriveKeysetId(keys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != idAgain {
		t.Fatal("DeriveKeysetId is not deterministic")
	}
}

func TestUnitString(t *testing.T) {
	if Unit("").String() != "sat" {
		t.Fatal("empty unit should default to sat")
	}
	if Unit("usd").String() != "usd" {
		t.Fatal("non-empty unit should round-trip unchanged")
	}
}

func TestGenerateRandomQuoteId(t *testing.T) {
	a, err := GenerateRandomQuoteId()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateRandomQuoteId()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected a 64-char hex string, got %q", a)
	}
	if a == b {
		t.Fatal("two calls produced the same quote id")
	}
}
