// Package wallet implements WalletCore: the orchestration layer that
// turns a mnemonic, a mint's keysets and a durable store into mint,
// swap, melt, receive and restore operations over Cashu proofs.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/seed"
	"github.com/elnosh/gonuts-wallet-core/walleterr"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// Config configures one WalletCore instance. A WalletCore is bound to
// exactly one (mint, unit) pair, matching the wallet_id partitioning
// scheme; a caller juggling several mints holds one WalletCore per
// pair, sharing the same Store.
type Config struct {
	MintURL    string
	Unit       cashu.Unit
	Store      walletdb.Store
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// WalletCore is the orchestration surface of the wallet: it never
// speaks HTTP or touches disk directly, delegating to MintClient and
// Store respectively.
type WalletCore struct {
	mintURL  string
	unit     cashu.Unit
	walletId string

	store  walletdb.Store
	client *mintclient.Client
	logger *slog.Logger

	masterKey *hdkeychain.ExtendedKey
	keysets   *KeysetRegistry
}

// New constructs a WalletCore for one mint/unit pair. It does not
// contact the mint or load a seed; call LoadMint and InitFromMnemonic
// (with a phrase from GenerateMnemonic for a new wallet) before any
// operation that needs keys.
func New(cfg Config) (*WalletCore, error) {
	if cfg.MintURL == "" {
		return nil, walleterr.New(walleterr.KindProtocol, "mint URL is required")
	}
	if cfg.Store == nil {
		return nil, walleterr.New(walleterr.KindStorage, "store is required")
	}
	unit := cfg.Unit
	if unit == "" {
		unit = cashu.Sat
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	mintURL := strings.TrimSuffix(cfg.MintURL, "/")

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WalletCore{
		mintURL:  mintURL,
		unit:     unit,
		walletId: walletdb.WalletId(mintURL, unit),
		store:    cfg.Store,
		client:   mintclient.New(mintURL, httpClient),
		logger:   logger,
		keysets:  newKeysetRegistry(),
	}, nil
}

// logInfof/logErrorf/logDebugf log through w.logger while preserving
// the caller's source position, the way the teacher's mint does, so a
// wallet's log lines point at the operation that emitted them rather
// than these helpers.
func (w *WalletCore) logInfof(format string, args ...any) {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	r := slog.NewRecord(time.Now(), slog.LevelInfo, fmt.Sprintf(format, args...), pcs[0])
	_ = w.logger.Handler().Handle(context.Background(), r)
}

func (w *WalletCore) logErrorf(format string, args ...any) {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	r := slog.NewRecord(time.Now(), slog.LevelError, fmt.Sprintf(format, args...), pcs[0])
	_ = w.logger.Handler().Handle(context.Background(), r)
}

func (w *WalletCore) logDebugf(format string, args ...any) {
	if !w.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	r := slog.NewRecord(time.Now(), slog.LevelDebug, fmt.Sprintf(format, args...), pcs[0])
	_ = w.logger.Handler().Handle(context.Background(), r)
}

// MintURL returns the mint this wallet is bound to.
func (w *WalletCore) MintURL() string { return w.mintURL }

// Unit returns the unit this wallet is bound to.
func (w *WalletCore) Unit() cashu.Unit { return w.unit }

// WalletId returns the partition key this wallet's rows are stored
// under (first 16 hex chars of SHA-256(mintURL + ":" + unit)).
func (w *WalletCore) WalletId() string { return w.walletId }

// GenerateMnemonic creates a fresh 12-word mnemonic, refusing unless a
// durable Store is configured — an ephemeral seed would make derived
// counters meaningless across runs.
func GenerateMnemonic(store walletdb.Store) (string, error) {
	if store == nil {
		return "", walleterr.New(walleterr.KindStorage, "StorageRequired: generating a mnemonic without durable storage would burn counters on every run")
	}
	return seed.GenerateMnemonic(128)
}

// InitFromMnemonic validates phrase, derives the seed and BIP-32
// master key, and persists the phrase and seed to the store.
func (w *WalletCore) InitFromMnemonic(ctx context.Context, phrase, passphrase string) error {
	if !seed.ValidateMnemonic(phrase) {
		return walleterr.New(walleterr.KindInvalidSecret, "InvalidMnemonic")
	}

	seedBytes := seed.Seed(phrase, passphrase)
	master, err := seed.MasterKey(seedBytes)
	if err != nil {
		return walleterr.Wrap(walleterr.KindInvalidSecret, "InvalidMnemonic", err)
	}
	w.masterKey = master

	if err := w.store.SaveMnemonic(phrase, seedBytes); err != nil {
		return walleterr.Wrap(walleterr.KindStorage, "persisting mnemonic", err)
	}
	return nil
}

// HasSeed reports whether InitFromMnemonic has succeeded.
func (w *WalletCore) HasSeed() bool {
	return w.masterKey != nil
}

// Mnemonic returns the phrase backing this wallet's seed, as persisted
// by InitFromMnemonic.
func (w *WalletCore) Mnemonic() (string, error) {
	phrase, err := w.store.Mnemonic()
	if err != nil {
		return "", walleterr.Wrap(walleterr.KindStorage, "reading mnemonic", err)
	}
	return phrase, nil
}

// safeState is the gate every operation that advances a counter must
// pass: spec.md 4.7.11 — seed present, storage configured.
func (w *WalletCore) safeState() error {
	if w.masterKey == nil {
		return walleterr.New(walleterr.KindUnsafeState, "NoSeed")
	}
	if w.store == nil {
		return walleterr.New(walleterr.KindUnsafeState, "UnsafeState: no storage configured")
	}
	return nil
}

// Balance returns the sum of unspent proofs in this wallet.
func (w *WalletCore) Balance() (uint64, error) {
	proofs, err := w.store.List(w.walletId, walletdb.ProofUnspent)
	if err != nil {
		return 0, walleterr.Wrap(walleterr.KindStorage, "listing proofs", err)
	}
	var total uint64
	for _, p := range proofs {
		total += p.Amount
	}
	return total, nil
}
