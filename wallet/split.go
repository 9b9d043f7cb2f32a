package wallet

import (
	"context"
	"sort"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// splitAmount decomposes amount into ascending powers of two, e.g.
// splitAmount(100) = [4, 32, 64]. Delegates to cashu.AmountSplit,
// which produces the same denominations in bit order; this wrapper
// exists to keep the wallet package's vocabulary matching spec.md's
// operation name.
func splitAmount(amount uint64) []uint64 {
	return cashu.AmountSplit(amount)
}

// selectProofs greedily picks proofs largest-first until their sum
// reaches target, returning the selected subset. Fails with
// InsufficientBalance if the full set is exhausted first.
func selectProofs(proofs cashu.Proofs, target uint64) (cashu.Proofs, error) {
	sorted := make(cashu.Proofs, len(proofs))
	copy(sorted, proofs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	var selected cashu.Proofs
	var sum uint64
	for _, p := range sorted {
		if sum >= target {
			break
		}
		selected = append(selected, p)
		sum += p.Amount
	}

	if sum < target {
		return nil, walleterr.New(walleterr.KindInsufficientFunds, "InsufficientBalance")
	}
	return selected, nil
}

// Swap exchanges inputs for new proofs denominated as targetAmounts.
// Preconditions: sum(inputs) - fee(inputs) == sum(targetAmounts).
// Counters for every output are advanced before the network call;
// inputs are deleted from the store and new proofs inserted in a
// single transaction once the mint responds.
func (w *WalletCore) Swap(ctx context.Context, inputs cashu.Proofs, targetAmounts []uint64) (cashu.Proofs, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	var targetSum uint64
	for _, a := range targetAmounts {
		targetSum += a
	}
	fee := w.fee(inputs)
	if inputs.Amount() != targetSum+fee {
		return nil, walleterr.New(walleterr.KindAmountMismatch,
			"AmountMismatch: sum(inputs) - fee(inputs) must equal sum(target_amounts)")
	}

	activeKeyset, ok := w.keysets.Active()
	if !ok {
		return nil, walleterr.New(walleterr.KindUnknownKeyset, "NoActiveKeyset")
	}

	outputs, err := w.deriveOutputs(activeKeyset.Id, targetAmounts)
	if err != nil {
		return nil, err
	}

	messages := make(cashu.BlindedMessages, len(outputs))
	for i, o := range outputs {
		messages[i] = o.Message
	}

	resp, err := w.client.Swap(ctx, mintclient.PostSwapRequest{Inputs: inputs, Outputs: messages})
	if err != nil {
		return nil, err
	}

	proofs, err := w.unblindSignatures(outputs, resp.Signatures)
	if err != nil {
		return nil, err
	}

	if err := w.commitSwap(inputs, proofs); err != nil {
		return nil, err
	}

	return proofs, nil
}

// commitSwap deletes spent inputs and inserts new proofs as one logical
// unit: CommitSwap bounds both writes inside a single store
// transaction, so a crash never leaves fresh outputs unrecorded while
// the inputs that produced them are already gone.
func (w *WalletCore) commitSwap(spent cashu.Proofs, fresh cashu.Proofs) error {
	stored := make([]walletdb.StoredProof, len(fresh))
	for i, p := range fresh {
		stored[i] = walletdb.StoredProof{Proof: p, WalletId: w.walletId, State: walletdb.ProofUnspent}
	}
	if err := w.store.CommitSwap(w.walletId, spent.Secrets(), stored); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "committing swap", err)
	}
	return nil
}

// Split chooses a powers-of-two decomposition of sendAmount to send
// and of the remainder to keep, then performs one swap producing both
// in a single round. Returns (send, keep).
func (w *WalletCore) Split(ctx context.Context, inputs cashu.Proofs, sendAmount uint64) (send cashu.Proofs, keep cashu.Proofs, err error) {
	fee := w.fee(inputs)
	total := inputs.Amount()
	if sendAmount+fee > total {
		return nil, nil, walleterr.New(walleterr.KindInsufficientFunds, "InsufficientBalance")
	}

	sendAmounts := splitAmount(sendAmount)
	keepAmounts := splitAmount(total - sendAmount - fee)

	allAmounts := append(append([]uint64{}, sendAmounts...), keepAmounts...)
	proofs, err := w.Swap(ctx, inputs, allAmounts)
	if err != nil {
		return nil, nil, err
	}

	send, keep = partitionByDenomination(proofs, sendAmounts)
	return send, keep, nil
}

// partitionByDenomination separates proofs into a "send" group
// matching the wanted denominations (consuming one copy of each as
// encountered) and a "keep" group holding everything else.
func partitionByDenomination(proofs cashu.Proofs, wanted []uint64) (matched, rest cashu.Proofs) {
	remaining := make(map[uint64]int, len(wanted))
	for _, a := range wanted {
		remaining[a]++
	}

	for _, p := range proofs {
		if remaining[p.Amount] > 0 {
			matched = append(matched, p)
			remaining[p.Amount]--
		} else {
			rest = append(rest, p)
		}
	}
	return matched, rest
}
