package bdhke

// Blind computes the blinded message B_ = Y + r*G for a freshly
// sampled blinding factor r, where Y = HashToCurve(secret).
func Blind(secret []byte) (blindedMessage Point, blindingFactor Scalar, y Point, err error) {
	y, err = HashToCurve(secret)
	if err != nil {
		return Point{}, Scalar{}, Point{}, err
	}

	r, err := RandomScalar()
	if err != nil {
		return Point{}, Scalar{}, Point{}, err
	}

	return BlindDeterministic(secret, r, y), r, y, nil
}

// BlindDeterministic computes B_ = Y + r*G for a caller-supplied
// blinding factor, used by the NUT-13 deterministic secret deriver so
// every (keyset, counter) pair produces a reproducible B_.
func BlindDeterministic(secret []byte, r Scalar, y Point) Point {
	rG := ScalarMul(r, BasePoint())
	return Add(y, rG)
}

// ComputeY returns HashToCurve(secret), the point used as a proof's
// lookup key when querying spend-state from the mint.
func ComputeY(secret []byte) (Point, error) {
	return HashToCurve(secret)
}

// Unblind computes C = C_ - r*A, recovering the mint's signature on Y
// from its blind signature C_ over B_, given the mint's public key A
// for the relevant (keyset, amount).
func Unblind(cBlinded Point, r Scalar, mintPubKey Point) Point {
	negRA := ScalarMul(r.Negate(), mintPubKey)
	return Add(cBlinded, negRA)
}

// Sign computes C_ = k*B_, the mint-side half of the handshake, kept
// here so the BDHKE correctness property (§8, property 1) can be
// exercised against an in-process test mint without a second package.
func Sign(blindedMessage Point, mintPrivKey Scalar) Point {
	return ScalarMul(mintPrivKey, blindedMessage)
}

// Verify reports whether k*HashToCurve(secret) == C, i.e. whether C is
// the mint's signature over secret under private key k. Used by tests.
func Verify(secret []byte, mintPrivKey Scalar, c Point) (bool, error) {
	y, err := HashToCurve(secret)
	if err != nil {
		return false, err
	}
	expected := ScalarMul(mintPrivKey, y)
	return Equal(expected, c), nil
}
