package seed

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DeriveHardened walks a sequence of child indices from parent,
// treating every index as hardened (index + 2^31), used for every
// NUT-13 path element except the final /0 or /1 leaf (see Derive).
func DeriveHardened(parent *hdkeychain.ExtendedKey, indices ...uint32) (*hdkeychain.ExtendedKey, error) {
	key := parent
	for _, idx := range indices {
		child, err := key.Derive(hdkeychain.HardenedKeyStart + idx)
		if err != nil {
			return nil, fmt.Errorf("seed: deriving hardened child %d: %w", idx, err)
		}
		key = child
	}
	return key, nil
}

// Derive walks a sequence of child indices from parent without
// hardening, used for the final, non-hardened leaf in a NUT-13 path
// (the /0 and /1 suffixes).
func Derive(parent *hdkeychain.ExtendedKey, indices ...uint32) (*hdkeychain.ExtendedKey, error) {
	key := parent
	for _, idx := range indices {
		child, err := key.Derive(idx)
		if err != nil {
			return nil, fmt.Errorf("seed: deriving child %d: %w", idx, err)
		}
		key = child
	}
	return key, nil
}
