// Package seed turns a BIP-39 mnemonic into a BIP-32 master extended
// key, the root of all deterministic secret derivation (NUT-13).
package seed

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
)

// GenerateMnemonic returns a fresh BIP-39 mnemonic with the requested
// entropy size in bits (one of 128, 160, 192, 224, 256).
func GenerateMnemonic(entropyBits int) (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("seed: generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("seed: building mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks the checksum embedded in the mnemonic's last
// word, per BIP-39.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// Seed derives the 64-byte BIP-39 seed from a mnemonic and optional
// passphrase via PBKDF2-HMAC-SHA512 (2048 iterations, salt =
// "mnemonic" || passphrase). go-bip39 NFKD-normalizes and lowercases
// internally to match the reference algorithm.
func Seed(mnemonic, passphrase string) []byte {
	return bip39.NewSeed(mnemonic, passphrase)
}

// MasterKey builds a BIP-32 master extended key from a 64-byte seed.
// secp256k1 network parameters only affect the exported WIF/Base58
// prefix, never the underlying key material, so MainNetParams is used
// unconditionally — this module never encodes an extended key as a
// string.
func MasterKey(seedBytes []byte) (*hdkeychain.ExtendedKey, error) {
	master, err := hdkeychain.NewMaster(seedBytes, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("seed: invalid master key: %w", err)
	}
	return master, nil
}
