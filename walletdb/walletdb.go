// Package walletdb persists wallet state: counters, proofs and quotes,
// partitioned per wallet (one mint + unit pair), with atomic counter
// advances so two concurrent operations never reuse a NUT-13 secret.
package walletdb

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/elnosh/gonuts-wallet-core/cashu"
)

// WalletId identifies one (mint URL, unit) pair: the first 16 hex
// characters of SHA-256(mintURL + ":" + unit). All stored rows are
// partitioned by this id so one bbolt file can back a multi-mint
// wallet without proofs from different mints colliding.
func WalletId(mintURL string, unit cashu.Unit) string {
	sum := sha256.Sum256([]byte(mintURL + ":" + unit.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// ProofState is the local lifecycle state of a stored proof, distinct
// from mintclient.ProofState which reflects the mint's view.
type ProofState int

const (
	ProofUnspent ProofState = iota
	ProofPending
	ProofSpent
)

// StoredProof is a Proof plus the bookkeeping fields the wallet needs
// that never go out on the wire.
type StoredProof struct {
	cashu.Proof
	WalletId string
	State    ProofState
	QuoteId  string // the mint or melt quote this proof is tied to, set while pending or minted
}

// QuoteType distinguishes a mint quote (receiving) from a melt quote
// (paying out).
type QuoteType int

const (
	MintQuoteType QuoteType = iota + 1
	MeltQuoteType
)

// MintQuote is a pending or settled invoice the wallet is waiting on
// to mint new proofs.
type MintQuote struct {
	WalletId       string
	QuoteId        string
	Mint           string
	Unit           string
	State          string
	PaymentRequest string
	Amount         uint64
	PrivateKey     []byte // NUT-20 quote signing key, when present
	CreatedAt      int64
	SettledAt      int64
	Expiry         int64
}

// MeltQuote is a pending or settled payment the wallet has requested
// the mint make on its behalf.
type MeltQuote struct {
	WalletId       string
	QuoteId        string
	Mint           string
	Unit           string
	State          string
	PaymentRequest string
	Amount         uint64
	FeeReserve     uint64
	Preimage       string
	CreatedAt      int64
	SettledAt      int64
	Expiry         int64
}

// CounterStore tracks the next-unused NUT-13 derivation counter per
// keyset, the invariant that guarantees secret uniqueness (spec
// property: no two derivations for the same keyset ever share a
// counter).
type CounterStore interface {
	// Get returns the next unused counter for a keyset (0 if never
	// advanced).
	Get(walletId, keysetId string) (uint32, error)
	// Advance atomically reserves the next `count` counter values and
	// returns the first one the caller may use.
	Advance(walletId, keysetId string, count uint32) (uint32, error)
	// Set forces the counter to an exact value, used by restore to fast
	// forward past recovered outputs.
	Set(walletId, keysetId string, value uint32) error
	// All returns every keyset's counter for a wallet.
	All(walletId string) (map[string]uint32, error)
}

// ProofStore persists a wallet's proofs across all lifecycle states.
type ProofStore interface {
	Insert(proofs []StoredProof) error
	List(walletId string, state ProofState) ([]StoredProof, error)
	ListByKeyset(walletId, keysetId string) ([]StoredProof, error)
	UpdateState(walletId string, secrets []string, state ProofState, quoteId string) error
	Delete(walletId string, secrets []string) error
	FindByQuote(walletId, quoteId string) ([]StoredProof, error)
	// CommitSwap inserts fresh in the same underlying transaction that
	// removes spentSecrets, so a crash between the two never leaves
	// unblinded outputs unrecorded while their inputs are already gone.
	CommitSwap(walletId string, spentSecrets []string, fresh []StoredProof) error
}

// QuoteStore persists mint and melt quotes.
type QuoteStore interface {
	SaveMintQuote(MintQuote) error
	MintQuote(walletId, quoteId string) (*MintQuote, error)
	MintQuotes(walletId string) ([]MintQuote, error)

	SaveMeltQuote(MeltQuote) error
	MeltQuote(walletId, quoteId string) (*MeltQuote, error)
	MeltQuotes(walletId string) ([]MeltQuote, error)
}

// SeedStore persists the wallet's BIP-39 mnemonic and derived seed.
type SeedStore interface {
	SaveMnemonic(mnemonic string, seed []byte) error
	Mnemonic() (string, error)
	Seed() ([]byte, error)
}

// Store is the full storage surface WalletCore depends on.
type Store interface {
	CounterStore
	ProofStore
	QuoteStore
	SeedStore
	Close() error
}
