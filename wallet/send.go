package wallet

import (
	"context"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/token"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// spendableProofs lists this wallet's unspent proofs from the store.
func (w *WalletCore) spendableProofs() (cashu.Proofs, error) {
	stored, err := w.store.List(w.walletId, walletdb.ProofUnspent)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindStorage, "listing unspent proofs", err)
	}
	proofs := make(cashu.Proofs, len(stored))
	for i, sp := range stored {
		proofs[i] = sp.Proof
	}
	return proofs, nil
}

// Send selects unspent proofs covering amount plus its swap fee,
// splits off exactly amount into proofs fit to hand to someone else,
// and returns them serialized as a V4 token. The sent proofs leave
// local storage; anything split off to keep is inserted as new
// unspent proofs by Split itself.
func (w *WalletCore) Send(ctx context.Context, amount uint64) (string, error) {
	if err := w.safeState(); err != nil {
		return "", err
	}

	available, err := w.spendableProofs()
	if err != nil {
		return "", err
	}

	// selectProofs doesn't know the swap fee up front, so select against
	// the raw amount first, then re-select against amount plus that
	// selection's fee if it falls short; Split's own fee-aware check
	// fails fast if the final selection still does not cover its fee.
	selected, err := selectProofs(available, amount)
	if err != nil {
		return "", err
	}
	fee := w.fee(selected)
	if selected.Amount() < amount+fee {
		selected, err = selectProofs(available, amount+fee)
		if err != nil {
			return "", err
		}
	}

	send, _, err := w.Split(ctx, selected, amount)
	if err != nil {
		return "", err
	}

	if err := w.store.Delete(w.walletId, send.Secrets()); err != nil {
		return "", walleterr.Wrap(walleterr.KindStorage, "removing sent proofs from local storage", err)
	}

	tok, err := token.NewV4(send, w.mintURL, w.unit, "", true)
	if err != nil {
		return "", walleterr.Wrap(walleterr.KindInvalidToken, "encoding token", err)
	}
	return tok.Serialize()
}

// PayInvoice selects unspent proofs covering a melt quote's amount and
// fee reserve, then melts them to pay invoice.
func (w *WalletCore) PayInvoice(ctx context.Context, invoice string) (*MeltResult, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	quote, err := w.RequestMeltQuote(ctx, invoice)
	if err != nil {
		return nil, err
	}

	available, err := w.spendableProofs()
	if err != nil {
		return nil, err
	}

	selected, err := selectProofs(available, quote.Amount+quote.FeeReserve)
	if err != nil {
		return nil, err
	}

	return w.Melt(ctx, quote.QuoteId, selected)
}
