// Package nut13 implements deterministic secret derivation (NUT-13):
// mapping a (keyset, counter) pair to the secret bytes and blinding
// scalar a wallet must use, so that no secret is ever produced twice
// for a given seed.
package nut13

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/elnosh/gonuts-wallet-core/bdhke"
	"github.com/elnosh/gonuts-wallet-core/seed"
)

const (
	purpose  = 129372
	coinType = 0
	// keysetIntModulus reduces the keyset id integer into the 31-bit
	// hardened-index range, matching the 2^31-1 (0x7fffffff) modulus every
	// conforming wallet must use so two wallets sharing a seed derive
	// the same path for the same keyset.
	keysetIntModulus = (1 << 31) - 1
)

// KeysetInt reduces a keyset id to the 31-bit integer used as the
// hardened index in the derivation path. It accepts both the modern
// hex-encoded form ("00" + 14 hex chars) and the legacy base64url
// form, per spec.md's Open Question — both decode to raw bytes that
// are read big-endian and reduced modulo 2^31-1.
func KeysetInt(keysetId string) (uint32, error) {
	raw, err := decodeKeysetId(keysetId)
	if err != nil {
		return 0, err
	}

	// interpret as a big-endian integer; pad/truncate to the trailing
	// 8 bytes since the reference derivation reads a uint64 window of
	// the id before reducing.
	var padded [8]byte
	if len(raw) >= 8 {
		copy(padded[:], raw[len(raw)-8:])
	} else {
		copy(padded[8-len(raw):], raw)
	}
	asUint64 := binary.BigEndian.Uint64(padded[:])

	return uint32(asUint64 % keysetIntModulus), nil
}

func decodeKeysetId(keysetId string) ([]byte, error) {
	if raw, err := hex.DecodeString(keysetId); err == nil {
		return raw, nil
	}
	if raw, err := base64.URLEncoding.DecodeString(keysetId); err == nil {
		return raw, nil
	}
	if raw, err := base64.RawURLEncoding.DecodeString(keysetId); err == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("nut13: keyset id %q is neither valid hex nor base64url", keysetId)
}

// KeysetPath derives m/129372'/0'/{keysetInt}' from the wallet's
// master key, the shared prefix for every counter under one keyset.
func KeysetPath(master *hdkeychain.ExtendedKey, keysetId string) (*hdkeychain.ExtendedKey, error) {
	k, err := KeysetInt(keysetId)
	if err != nil {
		return nil, err
	}
	return seed.DeriveHardened(master, purpose, coinType, k)
}

// Secret derives m/129372'/0'/{k}'/{counter}'/0 and returns its 32-byte
// private key hex-encoded — the hex ASCII bytes are the proof's secret
// field, not the raw bytes.
func Secret(keysetPath *hdkeychain.ExtendedKey, counter uint32) (string, error) {
	counterKey, err := seed.DeriveHardened(keysetPath, counter)
	if err != nil {
		return "", err
	}
	leaf, err := seed.Derive(counterKey, 0)
	if err != nil {
		return "", err
	}
	priv, err := leaf.ECPrivKey()
	if err != nil {
		return "", fmt.Errorf("nut13: deriving secret key: %w", err)
	}
	return hex.EncodeToString(priv.Serialize()), nil
}

// BlindingFactor derives m/129372'/0'/{k}'/{counter}'/1 and returns it
// reduced as a bdhke.Scalar, used as r in blind/unblind.
func BlindingFactor(keysetPath *hdkeychain.ExtendedKey, counter uint32) (bdhke.Scalar, error) {
	counterKey, err := seed.DeriveHardened(keysetPath, counter)
	if err != nil {
		return bdhke.Scalar{}, err
	}
	leaf, err := seed.Derive(counterKey, 1)
	if err != nil {
		return bdhke.Scalar{}, err
	}
	priv, err := leaf.ECPrivKey()
	if err != nil {
		return bdhke.Scalar{}, fmt.Errorf("nut13: deriving blinding factor: %w", err)
	}
	return bdhke.ParsePrivateKey(priv.Serialize()), nil
}

// Derived bundles the two values a (keyset, counter) pair produces.
type Derived struct {
	Secret         string
	BlindingFactor bdhke.Scalar
}

// Derive computes both the secret and blinding factor for one counter
// value under a keyset's derivation path.
func Derive(keysetPath *hdkeychain.ExtendedKey, counter uint32) (Derived, error) {
	secretHex, err := Secret(keysetPath, counter)
	if err != nil {
		return Derived{}, err
	}
	r, err := BlindingFactor(keysetPath, counter)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Secret: secretHex, BlindingFactor: r}, nil
}
