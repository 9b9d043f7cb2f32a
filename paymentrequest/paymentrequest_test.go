package paymentrequest

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := PaymentRequest{
		Id:          "abc123",
		Amount:      100,
		Unit:        "sat",
		SingleUse:   true,
		Mints:       []string{"https://mint.example.com"},
		Description: "coffee",
		Transports: []Transport{
			{Type: "post", Target: "https://example.com/pay"},
		},
	}

	encoded, err := req.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded[:len(prefix)+len(version)] != prefix+version {
		t.Fatalf("expected %q prefix, got %q", prefix+version, encoded[:len(prefix)+len(version)])
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error decoding: %v", err)
	}
	if decoded.Id != req.Id || decoded.Amount != req.Amount || decoded.Unit != req.Unit {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", decoded, req)
	}
	if len(decoded.Transports) != 1 || decoded.Transports[0].Target != req.Transports[0].Target {
		t.Fatalf("transports did not round-trip: %+v", decoded.Transports)
	}
}

func TestDecodeRejectsWrongPrefix(t *testing.T) {
	if _, err := Decode("notarequest"); err != ErrInvalidPaymentRequest {
		t.Fatalf("expected ErrInvalidPaymentRequest, got %v", err)
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	if _, err := Decode("creqZsomethingelse"); err == nil {
		t.Fatal("expected an error for an unsupported version")
	}
}

func TestAcceptsMintEmptyListAcceptsAny(t *testing.T) {
	req := PaymentRequest{}
	if !req.AcceptsMint("https://anything.example.com") {
		t.Fatal("expected an empty Mints list to accept any mint")
	}
}

func TestAcceptsMintRejectsUnlisted(t *testing.T) {
	req := PaymentRequest{Mints: []string{"https://a.example.com"}}
	if req.AcceptsMint("https://b.example.com") {
		t.Fatal("expected AcceptsMint to reject a mint not in the list")
	}
	if !req.AcceptsMint("https://a.example.com") {
		t.Fatal("expected AcceptsMint to accept a listed mint")
	}
}
