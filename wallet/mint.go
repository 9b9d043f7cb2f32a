package wallet

import (
	"context"
	"time"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// MintQuote is the caller-facing view of a mint quote: enough to show
// an invoice and later redeem it.
type MintQuote struct {
	QuoteId string
	Request string
	State   string
	Amount  uint64
	Expiry  time.Time
}

// RequestMintQuote asks the mint for a bolt11 invoice of the given
// amount. Thin pass-through: no state mutation beyond persisting the
// quote so a later run can find it by id.
func (w *WalletCore) RequestMintQuote(ctx context.Context, amount uint64) (*MintQuote, error) {
	resp, err := w.client.MintQuote(ctx, mintclient.PostMintQuoteBolt11Request{
		Amount: amount,
		Unit:   w.unit.String(),
		Pubkey: w.mintQuotePubkey(),
	})
	if err != nil {
		return nil, err
	}

	quote := walletdb.MintQuote{
		WalletId:       w.walletId,
		QuoteId:        resp.Quote,
		Mint:           w.mintURL,
		Unit:           w.unit.String(),
		State:          resp.State,
		PaymentRequest: resp.Request,
		Amount:         amount,
		CreatedAt:      time.Now().Unix(),
		Expiry:         resp.Expiry,
	}
	if w.store != nil {
		if err := w.store.SaveMintQuote(quote); err != nil {
			return nil, walleterr.Wrap(walleterr.KindStorage, "persisting mint quote", err)
		}
	}

	return &MintQuote{
		QuoteId: resp.Quote,
		Request: resp.Request,
		State:   resp.State,
		Amount:  amount,
		Expiry:  time.Unix(resp.Expiry, 0),
	}, nil
}

// CheckMintQuote polls a previously requested quote's state. Amount is
// taken from the quote persisted by RequestMintQuote (0 if none is
// stored), since the mint's state response does not carry it.
func (w *WalletCore) CheckMintQuote(ctx context.Context, quoteId string) (*MintQuote, error) {
	resp, err := w.client.MintQuoteState(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	var amount uint64
	if w.store != nil {
		if stored, err := w.store.MintQuote(w.walletId, quoteId); err == nil && stored != nil {
			amount = stored.Amount
		}
	}
	return &MintQuote{
		QuoteId: resp.Quote,
		Request: resp.Request,
		State:   resp.State,
		Amount:  amount,
		Expiry:  time.Unix(resp.Expiry, 0),
	}, nil
}

// Mint exchanges a paid quote for new proofs of the given amount.
// Counters are advanced before the network call: if the call fails or
// the response is lost, those counter values are burned, never
// reused. Proofs are persisted tagged with quoteId so a crashed run
// can find them via find_by_quote.
func (w *WalletCore) Mint(ctx context.Context, quoteId string, amount uint64) (cashu.Proofs, error) {
	if err := w.safeState(); err != nil {
		return nil, err
	}

	activeKeyset, ok := w.keysets.Active()
	if !ok {
		return nil, walleterr.New(walleterr.KindUnknownKeyset, "NoActiveKeyset")
	}

	amounts := splitAmount(amount)
	outputs, err := w.deriveOutputs(activeKeyset.Id, amounts)
	if err != nil {
		return nil, err
	}

	messages := make(cashu.BlindedMessages, len(outputs))
	for i, o := range outputs {
		messages[i] = o.Message
	}

	signature, err := w.signMintQuote(quoteId, messages)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Mint(ctx, mintclient.PostMintBolt11Request{Quote: quoteId, Outputs: messages, Signature: signature})
	if err != nil {
		return nil, err
	}

	proofs, err := w.unblindSignatures(outputs, resp.Signatures)
	if err != nil {
		return nil, err
	}

	if err := w.insertProofsTaggedWithQuote(proofs, quoteId); err != nil {
		return nil, err
	}

	w.logInfof("minted %d sats from quote %s", proofs.Amount(), quoteId)
	return proofs, nil
}
