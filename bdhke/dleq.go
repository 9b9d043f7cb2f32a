package bdhke

import (
	"bytes"
	"crypto/sha256"
)

// DLEQ is a wallet-side Discrete-Log-Equality proof: (e, s) proves the
// mint signed with the same private key it uses for A, and r is kept
// alongside (carried in a proof's DLEQ, not in a blind signature's) so
// the wallet can reconstruct C_ = C + r*A for verification after
// unblinding.
type DLEQ struct {
	E Scalar
	S Scalar
	R Scalar // zero value when absent (blind-signature DLEQ omits r)
}

// challenge computes e = SHA256(R1 || R2 || A || B_ || C_), the
// Fiat-Shamir challenge used by both mint-side signing and wallet-side
// verification of a DLEQ proof.
func challenge(points ...Point) Scalar {
	h := sha256.New()
	for _, p := range points {
		h.Write(p.Compress())
	}
	return NewScalar(h.Sum(nil))
}

// GenerateDLEQ produces the mint-side DLEQ proof over a blind signature
// cBlinded = mintPriv*blindedMessage, binding it to the mint's public
// key A = mintPriv*G via a Fiat-Shamir challenge. Kept alongside the
// verify functions so the DLEQ correctness property can be exercised
// in-process without a second package.
func GenerateDLEQ(mintPriv Scalar, blindedMessage, cBlinded Point) (DLEQ, error) {
	k, err := RandomScalar()
	if err != nil {
		return DLEQ{}, err
	}

	A := PublicFromScalar(mintPriv)
	r1 := ScalarMul(k, BasePoint())
	r2 := ScalarMul(k, blindedMessage)

	e := challenge(r1, r2, A, blindedMessage, cBlinded)
	s := k.Add(e.Mul(mintPriv))
	return DLEQ{E: e, S: s}, nil
}

// VerifyBlindSignatureDLEQ verifies a mint's DLEQ proof over a blind
// signature: that C_ = k*B_ for the same k with public key A.
//
//	R1 = s*G - e*A
//	R2 = s*B_ - e*C_
//	e' = SHA256(R1 || R2 || A || B_ || C_)
//	valid iff e' == e
func VerifyBlindSignatureDLEQ(proof DLEQ, A, blindedMessage, cBlinded Point) bool {
	sG := ScalarMul(proof.S, BasePoint())
	r1 := Add(sG, ScalarMul(proof.E.Negate(), A))

	sB := ScalarMul(proof.S, blindedMessage)
	r2 := Add(sB, ScalarMul(proof.E.Negate(), cBlinded))

	expected := challenge(r1, r2, A, blindedMessage, cBlinded)
	return bytes.Equal(expected.Bytes(), proof.E.Bytes())
}

// VerifyProofDLEQ verifies a proof's carried DLEQ by reconstructing
// C_ = C + r*A and delegating to VerifyBlindSignatureDLEQ.
func VerifyProofDLEQ(secret []byte, c Point, proof DLEQ, A Point) bool {
	rA := ScalarMul(proof.R, A)
	cBlinded := Add(c, rA)

	y, err := HashToCurve(secret)
	if err != nil {
		return false
	}
	blindedMessage := BlindDeterministic(secret, proof.R, y)

	return VerifyBlindSignatureDLEQ(DLEQ{E: proof.E, S: proof.S}, A, blindedMessage, cBlinded)
}
