package bdhke

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// domainSeparator is part of the wire contract: every wallet sharing a
// seed must derive the same Y for a given secret.
const domainSeparator = "Secp256k1_HashToCurve_Cashu_"

// maxCounter bounds the try-and-increment loop. Exhausting it is not
// observed in practice for a 256-bit hash function.
const maxCounter = 65536

var ErrHashToCurveExhausted = errors.New("bdhke: hash-to-curve exhausted all counters")

// HashToCurve deterministically maps msg to a point on secp256k1 using
// domain-separated try-and-increment, per NUT-00.
//
//  1. h = SHA256("Secp256k1_HashToCurve_Cashu_" || msg)
//  2. for counter in 0..65535: t = SHA256(h || counter_le32);
//     try decompress(0x02 || t); return on success.
func HashToCurve(msg []byte) (Point, error) {
	prefixed := make([]byte, 0, len(domainSeparator)+len(msg))
	prefixed = append(prefixed, domainSeparator...)
	prefixed = append(prefixed, msg...)
	h := sha256.Sum256(prefixed)

	var counterBytes [4]byte
	buf := make([]byte, 0, len(h)+4)
	for counter := uint32(0); counter < maxCounter; counter++ {
		binary.LittleEndian.PutUint32(counterBytes[:], counter)
		buf = buf[:0]
		buf = append(buf, h[:]...)
		buf = append(buf, counterBytes[:]...)
		t := sha256.Sum256(buf)

		candidate := make([]byte, 33)
		candidate[0] = 0x02
		copy(candidate[1:], t[:])

		if p, err := Decompress(candidate); err == nil {
			return p, nil
		}
	}
	return Point{}, ErrHashToCurveExhausted
}
