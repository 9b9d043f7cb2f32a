package wallet

import (
	"context"

	"github.com/elnosh/gonuts-wallet-core/bdhke"
	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// ProofState reports a proof's spend status as seen by the mint.
type ProofState struct {
	Secret string
	State  mintclient.ProofState
}

// CheckProofState computes each proof's Y = HashToCurve(secret) and
// asks the mint for its spend status via /checkstate, in the same
// order the proofs were given.
func (w *WalletCore) CheckProofState(ctx context.Context, proofs cashu.Proofs) ([]ProofState, error) {
	ys := make([]string, len(proofs))
	for i, p := range proofs {
		y, err := bdhke.HashToCurve([]byte(p.Secret))
		if err != nil {
			return nil, walleterr.Wrap(walleterr.KindInvalidSecret, "hashing secret to curve", err)
		}
		ys[i] = y.Hex()
	}

	resp, err := w.client.CheckState(ctx, mintclient.PostCheckStateRequest{Ys: ys})
	if err != nil {
		return nil, err
	}

	byY := make(map[string]mintclient.ProofState, len(resp.States))
	for _, s := range resp.States {
		byY[s.Y] = s.State
	}

	states := make([]ProofState, len(proofs))
	for i, p := range proofs {
		states[i] = ProofState{Secret: p.Secret, State: byY[ys[i]]}
	}
	return states, nil
}

// SyncProofStates checks every UNSPENT proof held for this wallet and
// writes SPENT back to the store for any the mint now considers
// spent, recovering from a crash between a swap's network call and its
// local commit. PENDING proofs (the inputs of a melt in flight) are not
// checked.
func (w *WalletCore) SyncProofStates(ctx context.Context) (int, error) {
	unspent, err := w.store.List(w.walletId, walletdb.ProofUnspent)
	if err != nil {
		return 0, walleterr.Wrap(walleterr.KindStorage, "listing unspent proofs", err)
	}
	if len(unspent) == 0 {
		return 0, nil
	}

	proofs := make(cashu.Proofs, len(unspent))
	for i, p := range unspent {
		proofs[i] = p.Proof
	}

	states, err := w.CheckProofState(ctx, proofs)
	if err != nil {
		return 0, err
	}

	var spentSecrets []string
	for _, s := range states {
		if s.State == mintclient.StateSpent {
			spentSecrets = append(spentSecrets, s.Secret)
		}
	}
	if len(spentSecrets) == 0 {
		return 0, nil
	}

	if err := w.store.UpdateState(w.walletId, spentSecrets, walletdb.ProofSpent, ""); err != nil {
		return 0, walleterr.Wrap(walleterr.KindStorage, "marking proofs spent", err)
	}
	return len(spentSecrets), nil
}
