package wallet

import (
	"context"
	"time"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// MeltQuote is the caller-facing view of a melt quote.
type MeltQuote struct {
	QuoteId    string
	Amount     uint64
	FeeReserve uint64
	State      string
	Expiry     time.Time
}

// RequestMeltQuote asks the mint what it would charge to pay request
// (a bolt11 invoice) on the wallet's behalf.
func (w *WalletCore) RequestMeltQuote(ctx context.Context, request string) (*MeltQuote, error) {
	resp, err := w.client.MeltQuote(ctx, mintclient.PostMeltQuoteBolt11Request{
		Request: request,
		Unit:    w.unit.String(),
	})
	if err != nil {
		return nil, err
	}

	if w.store != nil {
		quote := walletdb.MeltQuote{
			WalletId:       w.walletId,
			QuoteId:        resp.Quote,
			Mint:           w.mintURL,
			Unit:           w.unit.String(),
			State:          resp.State,
			PaymentRequest: request,
			Amount:         resp.Amount,
			FeeReserve:     resp.FeeReserve,
			CreatedAt:      time.Now().Unix(),
			Expiry:         resp.Expiry,
		}
		if err := w.store.SaveMeltQuote(quote); err != nil {
			return nil, walleterr.Wrap(walleterr.KindStorage, "persisting melt quote", err)
		}
	}

	return &MeltQuote{
		QuoteId:    resp.Quote,
		Amount:     resp.Amount,
		FeeReserve: resp.FeeReserve,
		State:      resp.State,
		Expiry:     time.Unix(resp.Expiry, 0),
	}, nil
}

// MeltResult reports the outcome of a melt: whether the invoice was
// paid, the payment preimage, and any change proofs produced.
type MeltResult struct {
	Paid     bool
	Preimage string
	Change   cashu.Proofs
}

// Melt spends inputs to pay a previously requested melt quote.
// Computes change = sum(inputs) - (amount + fee_reserve); if positive,
// produces change outputs (counters advanced before the network
// call). On a paid response, inputs are deleted from the store and any
// change proofs inserted in one transaction.
func (w *WalletCore) Melt(ctx context.Context, quoteId string, inputs cashu.Proofs) (*MeltResult, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	quote, err := w.client.MeltQuoteState(ctx, quoteId)
	if err != nil {
		return nil, err
	}

	totalNeeded := quote.Amount + quote.FeeReserve
	inputTotal := inputs.Amount()
	if inputTotal < totalNeeded {
		return nil, walleterr.New(walleterr.KindInsufficientFunds, "InsufficientBalance: inputs do not cover amount + fee_reserve")
	}
	changeAmount := inputTotal - totalNeeded

	var outputs []pendingOutput
	var messages cashu.BlindedMessages
	if changeAmount > 0 {
		activeKeyset, ok := w.keysets.Active()
		if !ok {
			return nil, walleterr.New(walleterr.KindUnknownKeyset, "NoActiveKeyset")
		}
		outputs, err = w.deriveOutputs(activeKeyset.Id, splitAmount(changeAmount))
		if err != nil {
			return nil, err
		}
		messages = make(cashu.BlindedMessages, len(outputs))
		for i, o := range outputs {
			messages[i] = o.Message
		}
	}

	if err := w.markPending(inputs, quoteId); err != nil {
		return nil, err
	}

	resp, err := w.client.Melt(ctx, mintclient.PostMeltBolt11Request{Quote: quoteId, Inputs: inputs, Outputs: messages})
	if err != nil {
		w.logErrorf("melt quote %s failed after marking inputs pending: %v", quoteId, err)
		return nil, err
	}

	result := &MeltResult{Paid: resp.State == "PAID", Preimage: resp.Preimage}

	if result.Paid {
		var change cashu.Proofs
		if len(outputs) > 0 && len(resp.Change) > 0 {
			change, err = w.unblindSignatures(outputs, resp.Change)
			if err != nil {
				return nil, err
			}
		}
		if err := w.commitMelt(inputs, change); err != nil {
			return nil, err
		}
		result.Change = change
	}

	w.logInfof("melt quote %s settled, paid=%v change=%d sats", quoteId, result.Paid, result.Change.Amount())
	return result, nil
}

func (w *WalletCore) markPending(inputs cashu.Proofs, quoteId string) error {
	if err := w.store.UpdateState(w.walletId, inputs.Secrets(), walletdb.ProofPending, quoteId); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "marking inputs pending", err)
	}
	return nil
}

// commitMelt deletes spent inputs and inserts change proofs as one
// logical unit via CommitSwap, so a crash never deletes the spent
// inputs without recording the change that replaced them.
func (w *WalletCore) commitMelt(spent cashu.Proofs, change cashu.Proofs) error {
	stored := make([]walletdb.StoredProof, len(change))
	for i, p := range change {
		stored[i] = walletdb.StoredProof{Proof: p, WalletId: w.walletId, State: walletdb.ProofUnspent}
	}
	if err := w.store.CommitSwap(w.walletId, spent.Secrets(), stored); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "committing melt", err)
	}
	return nil
}
