package nut13

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/elnosh/gonuts-wallet-core/seed"
)

const testMnemonic = "half depth obey offer rate outdoor hover sentence unveil chimney house hazard"

func testMasterKey(t *testing.T) *hdkeychain.ExtendedKey {
	t.Helper()
	master, err := seed.MasterKey(seed.Seed(testMnemonic, ""))
	if err != nil {
		t.Fatalf("unexpected error building master key: %v", err)
	}
	return master
}

func TestKeysetIntModulus(t *testing.T) {
	id, err := KeysetInt("00ad268c4d1f5826")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id >= (1 << 31) {
		t.Fatalf("KeysetInt returned an index outside the 31-bit hardened range: %d", id)
	}

	idAgain, err := KeysetInt("00ad268c4d1f5826")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != idAgain {
		t.Fatal("KeysetInt is not deterministic")
	}
}

func TestDeriveDeterministicAndUnique(t *testing.T) {
	master := testMasterKey(t)

	keysetPath, err := KeysetPath(master, "00ad268c4d1f5826")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d1, err := Derive(keysetPath, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := Derive(keysetPath, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1.Secret != d2.Secret {
		t.Fatal("Derive is not deterministic for the same counter")
	}

	d3, err := Derive(keysetPath, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1.Secret == d3.Secret {
		t.Fatal("two different counters derived the same secret")
	}
	if bytes.Equal(d1.BlindingFactor.Bytes(), d3.BlindingFactor.Bytes()) {
		t.Fatal("two different counters derived the same blinding factor")
	}
}

func TestDeriveDifferentKeysetsDiverge(t *testing.T) {
	master := testMasterKey(t)

	pathA, err := KeysetPath(master, "00ad268c4d1f5826")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pathB, err := KeysetPath(master, "00ffd48b8f5ecf80")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dA, err := Derive(pathA, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dB, err := Derive(pathB, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dA.Secret == dB.Secret {
		t.Fatal("the same counter under two different keysets derived the same secret")
	}
}
