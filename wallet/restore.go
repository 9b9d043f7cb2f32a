package wallet

import (
	"context"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

const (
	restoreBatchSize    = 25
	restoreEmptyBatches = 3
)

// RestoreResult summarizes a completed restore pass over one keyset.
type RestoreResult struct {
	KeysetId string
	Proofs   cashu.Proofs
	Scanned  uint32
}

// Restore recovers proofs from a mnemonic by replaying the NUT-13
// derivation for every keyset the mint offers — across all units it
// supports, not just this wallet's own, since melt fee-reserve change
// may have been returned in a unit the wallet never explicitly loaded
// and restoring only one unit risks reusing its counter — and asking
// the mint, via /restore, which of the resulting blinded messages it
// once signed. Scans in batches of 25, stopping after 3 consecutive
// empty batches, and fast-forwards each keyset's stored counter past
// the highest index it found a signature for so future derivation
// never reuses a scanned secret. Recovered signatures are checked
// against /v1/checkstate and only proofs still UNSPENT are kept, so
// an already-spent recovered proof never inflates the balance.
func (w *WalletCore) Restore(ctx context.Context) ([]RestoreResult, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	all, err := w.fetchAllKeysets(ctx)
	if err != nil {
		return nil, err
	}
	for id, ks := range all {
		w.keysets.keysets[id] = ks
	}

	var results []RestoreResult
	for keysetId := range all {
		result, highest, err := w.restoreKeyset(ctx, keysetId)
		if err != nil {
			return nil, err
		}
		if highest >= 0 {
			if err := w.store.Set(w.walletId, keysetId, uint32(highest)+1); err != nil {
				return nil, walleterr.Wrap(walleterr.KindStorage, "fast-forwarding counter after restore", err)
			}
		}
		if len(result.Proofs) > 0 {
			if err := w.insertUnspentProofs(result.Proofs); err != nil {
				return nil, err
			}
		}
		w.logInfof("restore scanned keyset %s: %d scanned, %d sats recovered", keysetId, result.Scanned, result.Proofs.Amount())
		results = append(results, result)
	}

	return results, nil
}

func (w *WalletCore) restoreKeyset(ctx context.Context, keysetId string) (RestoreResult, int64, error) {
	result := RestoreResult{KeysetId: keysetId}
	highest := int64(-1)

	counter := uint32(0)
	emptyBatches := 0
	for emptyBatches < restoreEmptyBatches {
		outputs, err := w.deriveOutputsAt(keysetId, counter, restoreBatchSize)
		if err != nil {
			return result, highest, err
		}

		messages := make(cashu.BlindedMessages, len(outputs))
		for i, o := range outputs {
			messages[i] = o.Message
		}

		resp, err := w.client.Restore(ctx, mintclient.PostRestoreRequest{Outputs: messages})
		if err != nil {
			return result, highest, err
		}
		result.Scanned += restoreBatchSize

		if len(resp.Signatures) == 0 {
			emptyBatches++
			counter += restoreBatchSize
			continue
		}
		emptyBatches = 0

		indexByB := make(map[string]uint32, len(outputs))
		for i, o := range outputs {
			indexByB[o.Message.B_] = counter + uint32(i)
		}

		matched := make([]pendingOutput, 0, len(resp.Outputs))
		matchedSigs := make(cashu.BlindedSignatures, 0, len(resp.Outputs))
		for i, msg := range resp.Outputs {
			if i >= len(resp.Signatures) {
				break
			}
			idx, ok := indexByB[msg.B_]
			if !ok {
				continue
			}
			matched = append(matched, outputs[idx-counter])
			matchedSigs = append(matchedSigs, resp.Signatures[i])
			if int64(idx) > highest {
				highest = int64(idx)
			}
		}

		proofs, err := w.unblindSignatures(matched, matchedSigs)
		if err != nil {
			return result, highest, err
		}

		unspent, err := w.filterUnspent(ctx, proofs)
		if err != nil {
			return result, highest, err
		}
		result.Proofs = append(result.Proofs, unspent...)

		counter += restoreBatchSize
	}

	return result, highest, nil
}

// filterUnspent checks recovered proofs against /v1/checkstate via
// CheckProofState and keeps only the ones the mint still reports
// UNSPENT. A proof reported PENDING or SPENT is dropped rather than
// risk inflating the balance with an already-spent recovery.
func (w *WalletCore) filterUnspent(ctx context.Context, proofs cashu.Proofs) (cashu.Proofs, error) {
	if len(proofs) == 0 {
		return nil, nil
	}

	states, err := w.CheckProofState(ctx, proofs)
	if err != nil {
		return nil, err
	}

	kept := make(cashu.Proofs, 0, len(proofs))
	for i, s := range states {
		if s.State == mintclient.StateUnspent {
			kept = append(kept, proofs[i])
		}
	}
	return kept, nil
}
