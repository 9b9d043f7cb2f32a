package wallet

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/seed"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// mintQuotePurpose/mintQuoteAccount place the NUT-20 locking key under
// the same BIP-32 purpose NUT-13 uses, but a distinct account index,
// so it never shares a derivation path with a keyset's
// secret/blinding-factor outputs.
const (
	mintQuotePurpose = 129372
	mintQuoteAccount = 1
)

// mintQuoteKey derives the wallet's single NUT-20 locking keypair at
// m/129372'/1'/0', deterministic from the mnemonic so it never needs
// its own storage.
func (w *WalletCore) mintQuoteKey() (*hdkeychain.ExtendedKey, error) {
	if w.masterKey == nil {
		return nil, walleterr.New(walleterr.KindUnsafeState, "NoSeed: wallet has no mnemonic loaded")
	}
	return seed.DeriveHardened(w.masterKey, mintQuotePurpose, mintQuoteAccount, 0)
}

func mintQuoteSigningMessage(quoteId string, outputs cashu.BlindedMessages) []byte {
	msg := quoteId
	for _, bm := range outputs {
		msg += bm.B_
	}
	hash := sha256.Sum256([]byte(msg))
	return hash[:]
}

// mintQuotePubkey returns the hex-encoded compressed public key to
// lock a mint quote to, or "" if the wallet has no seed loaded (in
// which case the quote is requested unlocked).
func (w *WalletCore) mintQuotePubkey() string {
	if w.masterKey == nil {
		return ""
	}
	key, err := w.mintQuoteKey()
	if err != nil {
		return ""
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return ""
	}
	return hex.EncodeToString(pub.SerializeCompressed())
}

// signMintQuote produces the NUT-20 schnorr signature over a quote id
// and its mint outputs, hex-encoded for the wire.
func (w *WalletCore) signMintQuote(quoteId string, outputs cashu.BlindedMessages) (string, error) {
	key, err := w.mintQuoteKey()
	if err != nil {
		return "", err
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return "", walleterr.Wrap(walleterr.KindInvalidSecret, "deriving mint quote signing key", err)
	}
	sig, err := schnorr.Sign(priv, mintQuoteSigningMessage(quoteId, outputs))
	if err != nil {
		return "", walleterr.Wrap(walleterr.KindProtocol, "signing mint quote", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}
