package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elnosh/gonuts-wallet-core/bdhke"
	"github.com/elnosh/gonuts-wallet-core/cashu"
	"github.com/elnosh/gonuts-wallet-core/mintclient"
	"github.com/elnosh/gonuts-wallet-core/walletdb"
)

// multiUnitMint serves two keysets for two different units, so tests
// can assert that fetchAllKeysets sees both while LoadMint still
// filters to the wallet's own unit.
func multiUnitMint(t *testing.T) (srv *httptest.Server, satId, usdId string) {
	t.Helper()

	satPriv, err := bdhke.RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	satPub := map[uint64]string{1: bdhke.PublicFromScalar(satPriv).Hex()}
	satId, err = cashu.DeriveKeysetId(satPub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	usdPriv, err := bdhke.RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	usdPub := map[uint64]string{1: bdhke.PublicFromScalar(usdPriv).Hex()}
	usdId, err = cashu.DeriveKeysetId(usdPub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/keysets", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(mintclient.GetKeysetsResponse{
			Keysets: []mintclient.KeysetInfo{
				{Id: satId, Unit: "sat", Active: true},
				{Id: usdId, Unit: "usd", Active: true},
			},
		})
	})
	mux.HandleFunc("/v1/keys", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(mintclient.GetKeysResponse{
			Keysets: []mintclient.KeysResponseKeyset{
				{Id: satId, Unit: "sat", Keys: satPub},
				{Id: usdId, Unit: "usd", Keys: usdPub},
			},
		})
	})

	return httptest.NewServer(mux), satId, usdId
}

func TestFetchAllKeysetsSeesEveryUnit(t *testing.T) {
	srv, satId, usdId := multiUnitMint(t)
	defer srv.Close()

	store, err := walletdb.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	w, err := New(Config{MintURL: srv.URL, Unit: cashu.Sat, Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := w.fetchAllKeysets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := all[satId]; !ok {
		t.Fatalf("expected the sat keyset to be present, got %+v", all)
	}
	if _, ok := all[usdId]; !ok {
		t.Fatalf("expected the usd keyset to be present even though the wallet's unit is sat, got %+v", all)
	}
}

func TestLoadMintFiltersToWalletUnit(t *testing.T) {
	srv, satId, usdId := multiUnitMint(t)
	defer srv.Close()

	store, err := walletdb.OpenBolt(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	w, err := New(Config{MintURL: srv.URL, Unit: cashu.Sat, Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.LoadMint(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := w.keysets.Keyset(satId); !ok {
		t.Fatalf("expected the sat keyset to be loaded")
	}
	if _, ok := w.keysets.Keyset(usdId); ok {
		t.Fatal("expected LoadMint to leave the usd keyset out of the registry")
	}
}
