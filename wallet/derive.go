package wallet

import (
	"encoding/hex"

	"github.com/elnosh/gonuts-wallet-core/bdhke"
	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/nut13"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// pendingOutput bundles everything produced while deriving one output,
// kept alongside the blinded message so a later unblind can use it.
type pendingOutput struct {
	Amount  uint64
	Secret  string
	R       bdhke.Scalar
	Y       bdhke.Point
	Message cashu.BlindedMessage
}

// deriveOutputs atomically reserves `len(amounts)` counter values for
// keysetId, derives a secret and blinding factor for each, and returns
// the resulting blinded messages in the same order as amounts. Counter
// values are burned even if the caller never submits the outputs —
// this is deliberate (spec.md 4.7.4): a failed or lost round must
// never reuse a secret.
func (w *WalletCore) deriveOutputs(keysetId string, amounts []uint64) ([]pendingOutput, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	keysetPath, err := nut13.KeysetPath(w.masterKey, keysetId)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "deriving keyset path", err)
	}

	start, err := w.store.Advance(w.walletId, keysetId, uint32(len(amounts)))
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindStorage, "advancing counter", err)
	}

	outputs := make([]pendingOutput, len(amounts))
	for i, amount := range amounts {
		derived, err := nut13.Derive(keysetPath, start+uint32(i))
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "deriving secret", err)
		}

		secretBytes := []byte(derived.Secret)
		y, err := bdhke.HashToCurve(secretBytes)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "hashing secret to curve", err)
		}
		blinded := bdhke.BlindDeterministic(secretBytes, derived.BlindingFactor, y)

		outputs[i] = pendingOutput{
			Amount: amount,
			Secret: derived.Secret,
			R:      derived.BlindingFactor,
			Y:      y,
			Message: cashu.BlindedMessage{
				Amount: amount,
				Id:     keysetId,
				B_:     blinded.Hex(),
			},
		}
	}

	return outputs, nil
}

// deriveOutputsAt derives outputs for an explicit counter range without
// touching the stored counter, for scanning during restore where the
// range must be replayed deterministically rather than reserved fresh.
func (w *WalletCore) deriveOutputsAt(keysetId string, start, count uint32) ([]pendingOutput, error) {
	keysetPath, err := nut13.KeysetPath(w.masterKey, keysetId)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "deriving keyset path", err)
	}

	outputs := make([]pendingOutput, count)
	for i := uint32(0); i < count; i++ {
		derived, err := nut13.Derive(keysetPath, start+i)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "deriving secret", err)
		}

		secretBytes := []byte(derived.Secret)
		y, err := bdhke.HashToCurve(secretBytes)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "hashing secret to curve", err)
		}
		blinded := bdhke.BlindDeterministic(secretBytes, derived.BlindingFactor, y)

		outputs[i] = pendingOutput{
			Secret: derived.Secret,
			R:      derived.BlindingFactor,
			Y:      y,
			Message: cashu.BlindedMessage{
				Id: keysetId,
				B_: blinded.Hex(),
			},
		}
	}

	return outputs, nil
}

// unblindSignatures turns the mint's returned signatures into proofs,
// matching each signature to the pendingOutput at the same index (the
// mint is contractually required to preserve output order).
func (w *WalletCore) unblindSignatures(outputs []pendingOutput, signatures cashu.BlindedSignatures) (cashu.Proofs, error) {
	if len(outputs) != len(signatures) {
		return nil, walleterr.New(walleterr.KindProtocol, "mint returned a different number of signatures than outputs submitted")
	}

	proofs := make(cashu.Proofs, len(outputs))
	for i, sig := range signatures {
		out := outputs[i]

		pubHex, err := w.publicKeyFor(sig.Id, sig.Amount)
		if err != nil {
			return nil, err
		}
		pubBytes, err := hex.DecodeString(pubHex)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidPoint, "decoding mint public key", err)
		}
		mintPub, err := bdhke.Decompress(pubBytes)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidPoint, "decoding mint public key", err)
		}

		cBlindedBytes, err := hex.DecodeString(sig.C_)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidPoint, "decoding blind signature", err)
		}
		cBlinded, err := bdhke.Decompress(cBlindedBytes)
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidPoint, "decoding blind signature", err)
		}

		c := bdhke.Unblind(cBlinded, out.R, mintPub)

		proof := cashu.Proof{
			Amount: sig.Amount,
			Id:     sig.Id,
			Secret: out.Secret,
			C:      c.Hex(),
		}
		if sig.DLEQ != nil {
			proof.DLEQ = &cashu.DLEQProof{E: sig.DLEQ.E, S: sig.DLEQ.S, R: hex.EncodeToString(out.R.Bytes())}
		}
		proofs[i] = proof
	}

	return proofs, nil
}
