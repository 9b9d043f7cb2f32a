package wallet

import (
	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// insertUnspentProofs persists freshly unblinded proofs as UNSPENT.
func (w *WalletCore) insertUnspentProofs(proofs cashu.Proofs) error {
	if len(proofs) == 0 {
		return nil
	}
	stored := make([]walletdb.StoredProof, len(proofs))
	for i, p := range proofs {
		stored[i] = walletdb.StoredProof{Proof: p, WalletId: w.walletId, State: walletdb.ProofUnspent}
	}
	if err := w.store.Insert(stored); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "inserting proofs", err)
	}
	return nil
}

// insertProofsTaggedWithQuote persists freshly unblinded proofs as
// UNSPENT but tagged with the mint quote that produced them, so a
// crashed run can find them again via find_by_quote.
func (w *WalletCore) insertProofsTaggedWithQuote(proofs cashu.Proofs, quoteId string) error {
	if len(proofs) == 0 {
		return nil
	}
	stored := make([]walletdb.StoredProof, len(proofs))
	for i, p := range proofs {
		stored[i] = walletdb.StoredProof{Proof: p, WalletId: w.walletId, State: walletdb.ProofUnspent, QuoteId: quoteId}
	}
	if err := w.store.Insert(stored); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "inserting proofs", err)
	}
	return nil
}
