package walletdb

import (
	"testing"

	"github.com/elnosh/gonuts-wallet-core/cashu"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestWalletIdDeterministic(t *testing.T) {
	a := WalletId("https://mint.example.com", cashu.Sat)
	b := WalletId("https://mint.example.com", cashu.Sat)
	if a != b {
		t.Fatal("WalletId is not deterministic")
	}
	if len(a) != 16 {
		t.Fatalf("expected a 16-character id, got %d", len(a))
	}

	c := WalletId("https://mint.example.com", cashu.USD)
	if a == c {
		t.Fatal("expected different units to produce different wallet ids")
	}
}

func TestCounterAdvanceReservesDisjointRanges(t *testing.T) {
	store := openTestStore(t)
	const walletId, keysetId = "wallet1", "keyset1"

	first, err := store.Advance(walletId, keysetId, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 0 {
		t.Fatalf("expected the first reservation to start at 0, got %d", first)
	}

	second, err := store.Advance(walletId, keysetId, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != 5 {
		t.Fatalf("expected the second reservation to start at 5, got %d", second)
	}

	current, err := store.Get(walletId, keysetId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current != 8 {
		t.Fatalf("expected counter to be 8 after reserving 5+3, got %d", current)
	}
}

func TestCounterSetAndAll(t *testing.T) {
	store := openTestStore(t)
	const walletId = "wallet1"

	if err := store.Set(walletId, "keysetA", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Set(walletId, "keysetB", 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := store.All(walletId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if all["keysetA"] != 10 || all["keysetB"] != 20 {
		t.Fatalf("unexpected counters: %+v", all)
	}
}

func TestProofLifecycle(t *testing.T) {
	store := openTestStore(t)
	const walletId = "wallet1"

	proof := StoredProof{
		Proof:    cashu.Proof{Amount: 4, Id: "keysetA", Secret: "secret-1", C: "c1"},
		WalletId: walletId,
		State:    ProofUnspent,
	}
	if err := store.Insert([]StoredProof{proof}); err != nil {
		t.Fatalf("unexpected error inserting: %v", err)
	}

	unspent, err := store.List(walletId, ProofUnspent)
	if err != nil {
		t.Fatalf("unexpected error listing: %v", err)
	}
	if len(unspent) != 1 || unspent[0].Secret != "secret-1" {
		t.Fatalf("expected to find the inserted proof, got %+v", unspent)
	}

	byKeyset, err := store.ListByKeyset(walletId, "keysetA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byKeyset) != 1 {
		t.Fatalf("expected 1 proof for keysetA, got %d", len(byKeyset))
	}

	if err := store.UpdateState(walletId, []string{"secret-1"}, ProofPending, "quote-1"); err != nil {
		t.Fatalf("unexpected error updating state: %v", err)
	}

	pending, err := store.FindByQuote(walletId, "quote-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 proof pending on quote-1, got %d", len(pending))
	}

	if err := store.Delete(walletId, []string{"secret-1"}); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}
	remaining, err := store.FindByQuote(walletId, "quote-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected the proof to be gone after delete, got %+v", remaining)
	}
}

// TestFindByQuoteMatchesUnspentProofs covers the crash-recovery path a
// completed Mint leaves behind: proofs tagged with a mint quote stay
// UNSPENT (never PENDING), so FindByQuote must match on QuoteId alone.
func TestFindByQuoteMatchesUnspentProofs(t *testing.T) {
	store := openTestStore(t)
	const walletId = "wallet1"

	proof := StoredProof{
		Proof:    cashu.Proof{Amount: 8, Id: "keysetA", Secret: "secret-minted", C: "c1"},
		WalletId: walletId,
		State:    ProofUnspent,
		QuoteId:  "mint-quote-1",
	}
	if err := store.Insert([]StoredProof{proof}); err != nil {
		t.Fatalf("unexpected error inserting: %v", err)
	}

	found, err := store.FindByQuote(walletId, "mint-quote-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[0].Secret != "secret-minted" {
		t.Fatalf("expected to find the minted proof by quote id, got %+v", found)
	}
}

func TestCommitSwapAtomicity(t *testing.T) {
	store := openTestStore(t)
	const walletId = "wallet1"

	spent := StoredProof{
		Proof:    cashu.Proof{Amount: 4, Id: "keysetA", Secret: "secret-spent", C: "c1"},
		WalletId: walletId,
		State:    ProofUnspent,
	}
	if err := store.Insert([]StoredProof{spent}); err != nil {
		t.Fatalf("unexpected error inserting: %v", err)
	}

	fresh := StoredProof{
		Proof:    cashu.Proof{Amount: 4, Id: "keysetA", Secret: "secret-fresh", C: "c2"},
		WalletId: walletId,
		State:    ProofUnspent,
	}
	if err := store.CommitSwap(walletId, []string{"secret-spent"}, []StoredProof{fresh}); err != nil {
		t.Fatalf("unexpected error committing swap: %v", err)
	}

	unspent, err := store.List(walletId, ProofUnspent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unspent) != 1 || unspent[0].Secret != "secret-fresh" {
		t.Fatalf("expected only the fresh proof to remain after CommitSwap, got %+v", unspent)
	}
}

func TestMintQuoteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	q := MintQuote{WalletId: "wallet1", QuoteId: "q1", Mint: "https://mint.example.com", Amount: 100}

	if err := store.SaveMintQuote(q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.MintQuote("wallet1", "q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.Amount != 100 {
		t.Fatalf("expected to find the saved quote, got %+v", found)
	}

	all, err := store.MintQuotes("wallet1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 mint quote, got %d", len(all))
	}
}

func TestMeltQuoteRoundTrip(t *testing.T) {
	store := openTestStore(t)
	q := MeltQuote{WalletId: "wallet1", QuoteId: "m1", Amount: 50, FeeReserve: 2}

	if err := store.SaveMeltQuote(q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := store.MeltQuote("wallet1", "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.FeeReserve != 2 {
		t.Fatalf("expected to find the saved quote, got %+v", found)
	}
}

func TestSeedRoundTrip(t *testing.T) {
	store := openTestStore(t)
	seed := []byte{1, 2, 3, 4}

	if err := store.SaveMnemonic("test mnemonic", seed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mnemonic, err := store.Mnemonic()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mnemonic != "test mnemonic" {
		t.Fatalf("expected 'test mnemonic', got %q", mnemonic)
	}

	got, err := store.Seed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(seed) {
		t.Fatalf("expected a %d-byte seed, got %d", len(seed), len(got))
	}
}
