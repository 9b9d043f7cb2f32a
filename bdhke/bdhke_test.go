package bdhke

import "testing"

func TestHashToCurveDeterministic(t *testing.T) {
	secret := []byte("test_message")
	y1, err := HashToCurve(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y2, err := HashToCurve(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(y1, y2) {
		t.Fatal("HashToCurve is not deterministic for the same secret")
	}
}

func TestHashToCurveDistinctSecrets(t *testing.T) {
	y1, err := HashToCurve([]byte("secret one"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y2, err := HashToCurve([]byte("secret two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Equal(y1, y2) {
		t.Fatal("two different secrets hashed to the same point")
	}
}

func TestHashToCurveResultCompressesAndDecompresses(t *testing.T) {
	y, err := HashToCurve([]byte("round trip me"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	compressed := y.Compress()
	if len(compressed) != 33 {
		t.Fatalf("expected a 33-byte compressed point, got %d bytes", len(compressed))
	}
	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("unexpected error decompressing: %v", err)
	}
	if !Equal(y, decompressed) {
		t.Fatal("point did not round-trip through compress/decompress")
	}
}

// TestBDHKECorrectness exercises the wallet<->mint handshake end to end:
// the mint signs a blinded message with its private key, and the
// wallet's unblind recovers a signature that independently verifies
// against the same secret and the mint's public key.
func TestBDHKECorrectness(t *testing.T) {
	secret := []byte("a unique per-output secret")

	blindedMessage, r, _, err := Blind(secret)
	if err != nil {
		t.Fatalf("unexpected error blinding: %v", err)
	}

	mintPriv, err := RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mintPub := PublicFromScalar(mintPriv)

	cBlinded := Sign(blindedMessage, mintPriv)
	c := Unblind(cBlinded, r, mintPub)

	ok, err := Verify(secret, mintPriv, c)
	if err != nil {
		t.Fatalf("unexpected error verifying: %v", err)
	}
	if !ok {
		t.Fatal("unblinded signature did not verify against the mint's private key")
	}
}

func TestBDHKERejectsWrongKey(t *testing.T) {
	secret := []byte("another secret")
	blindedMessage, r, _, err := Blind(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mintPriv, err := RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wrongPriv, err := RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mintPub := PublicFromScalar(mintPriv)

	cBlinded := Sign(blindedMessage, mintPriv)
	c := Unblind(cBlinded, r, mintPub)

	ok, err := Verify(secret, wrongPriv, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("signature verified against the wrong private key")
	}
}

func TestBlindDeterministicReproducible(t *testing.T) {
	secret := []byte("deterministic secret")
	y, err := HashToCurve(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewScalar([]byte("0123456789abcdef0123456789abcdef"))

	b1 := BlindDeterministic(secret, r, y)
	b2 := BlindDeterministic(secret, r, y)
	if !Equal(b1, b2) {
		t.Fatal("BlindDeterministic produced different outputs for the same inputs")
	}
}

func TestScalarNegateRoundTrip(t *testing.T) {
	s, err := RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := PublicFromScalar(s)
	negP := PublicFromScalar(s.Negate())

	sum := Add(p, negP)
	if !sum.IsInfinity() {
		t.Fatal("P + (-P) did not reduce to the point at infinity")
	}
}

func TestDecompressRejectsWrongLength(t *testing.T) {
	if _, err := Decompress([]byte{0x02, 0x01}); err != ErrInvalidCompressedLength {
		t.Fatalf("expected ErrInvalidCompressedLength but got %v", err)
	}
}

func TestDLEQRoundTrip(t *testing.T) {
	secret := []byte("dleq secret")
	blindedMessage, r, y, err := Blind(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mintPriv, err := RandomScalar()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mintPub := PublicFromScalar(mintPriv)
	cBlinded := Sign(blindedMessage, mintPriv)

	proof, err := GenerateDLEQ(mintPriv, blindedMessage, cBlinded)
	if err != nil {
		t.Fatalf("unexpected error generating DLEQ: %v", err)
	}
	if !VerifyBlindSignatureDLEQ(proof, mintPub, blindedMessage, cBlinded) {
		t.Fatal("DLEQ proof failed to verify over the blind signature")
	}

	c := Unblind(cBlinded, r, mintPub)
	proofWithR := DLEQ{E: proof.E, S: proof.S, R: r}
	if !VerifyProofDLEQ(secret, c, proofWithR, mintPub) {
		t.Fatal("DLEQ proof failed to verify over the unblinded proof")
	}
	_ = y
}
