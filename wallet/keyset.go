package wallet

import (
	"context"
	"sort"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// KeysetRegistry tracks the keysets a WalletCore has seen for its one
// mint: which are active, their current input_fee_ppk, and their
// public keys, so operations read them without re-fetching on every
// call. Each WalletCore creates and owns its own registry; registries
// are not shared between instances.
type KeysetRegistry struct {
	keysets map[string]cashu.Keyset // keyset id -> keyset
	active  string                  // id of the currently active keyset for this wallet's unit
}

func newKeysetRegistry() *KeysetRegistry {
	return &KeysetRegistry{keysets: make(map[string]cashu.Keyset)}
}

// Keyset returns a previously loaded keyset by id.
func (r *KeysetRegistry) Keyset(id string) (cashu.Keyset, bool) {
	ks, ok := r.keysets[id]
	return ks, ok
}

// Active returns the wallet's currently active keyset.
func (r *KeysetRegistry) Active() (cashu.Keyset, bool) {
	if r.active == "" {
		return cashu.Keyset{}, false
	}
	return r.Keyset(r.active)
}

// fetchAllKeysets fetches every keyset the mint offers, across every
// unit, and verifies each keyset id against its own keys (spec.md
// 4.7.1's integrity check, supplementing the teacher's
// GetKeysetKeys). Keysets that fail the round-trip are dropped rather
// than trusted.
func (w *WalletCore) fetchAllKeysets(ctx context.Context) (map[string]cashu.Keyset, error) {
	keysetsResp, err := w.client.Keysets(ctx)
	if err != nil {
		return nil, err
	}

	feeByID := make(map[string]uint, len(keysetsResp.Keysets))
	activeByID := make(map[string]bool, len(keysetsResp.Keysets))
	unitByID := make(map[string]cashu.Unit, len(keysetsResp.Keysets))
	for _, ks := range keysetsResp.Keysets {
		feeByID[ks.Id] = ks.InputFee
		activeByID[ks.Id] = ks.Active
		unitByID[ks.Id] = cashu.Unit(ks.Unit)
	}

	keysResp, err := w.client.Keys(ctx)
	if err != nil {
		return nil, err
	}

	// GET /v1/keys only carries active keysets; fetch the keys of every
	// other keyset listed by /v1/keysets individually.
	keysets := keysResp.Keysets
	listed := make(map[string]bool, len(keysets))
	for _, k := range keysets {
		listed[k.Id] = true
	}
	for _, ks := range keysetsResp.Keysets {
		if listed[ks.Id] {
			continue
		}
		resp, err := w.client.KeysForKeyset(ctx, ks.Id)
		if err != nil {
			return nil, err
		}
		keysets = append(keysets, resp.Keysets...)
	}

	found := make(map[string]cashu.Keyset)
	for _, k := range keysets {
		keys := make(map[uint64]string, len(k.Keys))
		for amt, pub := range k.Keys {
			// amounts overflowing the host's native width are silently
			// dropped, per spec.md 4.7.1 — map keys already decoded as
			// uint64 here so there is nothing further to drop on this
			// platform.
			keys[amt] = pub
		}

		derivedId, err := cashu.DeriveKeysetId(keys)
		if err != nil || derivedId != k.Id {
			// keyset fails the integrity round-trip; skip rather than
			// trust a keyset whose id does not match its own keys.
			continue
		}

		unit := unitByID[k.Id]
		if unit == "" {
			unit = cashu.Unit(k.Unit)
		}
		found[k.Id] = cashu.Keyset{
			Id:       k.Id,
			Unit:     unit,
			Active:   activeByID[k.Id],
			InputFee: feeByID[k.Id],
			Keys:     keys,
		}
	}

	return found, nil
}

// LoadMint fetches the mint's keysets and keys, filters to this
// wallet's unit, and selects the active keyset deterministically by
// id when more than one is active.
func (w *WalletCore) LoadMint(ctx context.Context) error {
	all, err := w.fetchAllKeysets(ctx)
	if err != nil {
		return err
	}

	found := make(map[string]cashu.Keyset)
	for id, ks := range all {
		if ks.Unit == w.unit {
			found[id] = ks
		}
	}

	if len(found) == 0 {
		return walleterr.New(walleterr.KindUnknownKeyset, "NoActiveKeyset: no keyset for this unit passed the id integrity check")
	}

	var activeIds []string
	for id, ks := range found {
		if ks.Active {
			activeIds = append(activeIds, id)
		}
	}
	if len(activeIds) == 0 {
		return walleterr.New(walleterr.KindInactiveKeyset, "NoActiveKeyset: mint has no active keyset for this unit")
	}
	sort.Strings(activeIds)

	for id, ks := range found {
		w.keysets.keysets[id] = ks
	}
	w.keysets.active = activeIds[0]

	w.logDebugf("loaded %d keyset(s) for %s, active=%s", len(found), w.mintURL, w.keysets.active)
	return nil
}

// publicKeyFor returns the hex public key a keyset uses to sign a
// given amount.
func (w *WalletCore) publicKeyFor(keysetId string, amount uint64) (string, error) {
	ks, ok := w.keysets.Keyset(keysetId)
	if !ok {
		return "", walleterr.New(walleterr.KindUnknownKeyset, "unknown keyset: "+keysetId)
	}
	pub, ok := ks.Keys[amount]
	if !ok {
		return "", walleterr.New(walleterr.KindAmountMismatch, "keyset has no key for this amount")
	}
	return pub, nil
}

// inputFeePPK returns a keyset's current input_fee_ppk, re-synced on
// every LoadMint call so fee calculation never uses a stale value.
func (w *WalletCore) inputFeePPK(keysetId string) uint {
	ks, ok := w.keysets.Keyset(keysetId)
	if !ok {
		return 0
	}
	return ks.InputFee
}

// fee computes ceil(sum(input_fee_ppk) / 1000) for a set of proofs.
func (w *WalletCore) fee(proofs cashu.Proofs) uint64 {
	var totalPPK uint64
	for _, p := range proofs {
		totalPPK += uint64(w.inputFeePPK(p.Id))
	}
	return (totalPPK + 999) / 1000
}
