package wallet

import (
	"context"
	"strings"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/token"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// Receive decodes a serialized token and swaps its proofs for fresh
// ones under this wallet, leaving the sender's proofs SPENT in the
// mint's view. Fails if the token names a different mint.
func (w *WalletCore) Receive(ctx context.Context, tokenStr string) (cashu.Proofs, error) {
	decoded, err := token.Decode(tokenStr)
	if err != nil {
		return nil, walleterr.Wrap(walleterr.KindInvalidToken, "decoding token", err)
	}

	if normalizeMintURL(decoded.Mint()) != normalizeMintURL(w.mintURL) {
		return nil, walleterr.New(walleterr.KindMintMismatch, "token belongs to a different mint")
	}

	proofs := decoded.Proofs()
	amount := proofs.Amount()
	fee := w.fee(proofs)
	if amount <= fee {
		return nil, walleterr.New(walleterr.KindAmountMismatch, "token amount does not cover the swap fee")
	}

	return w.Swap(ctx, proofs, splitAmount(amount-fee))
}

func normalizeMintURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
