// Package cashu contains the core wire-level structs of the Cashu
// protocol shared by every other package in this module: proofs,
// blinded messages/signatures, DLEQ proofs and keysets.
package cashu

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Unit is a Cashu monetary unit. Only "sat" is required by the spec;
// additional units round-trip through Unit as opaque strings.
type Unit string

const (
	Sat  Unit = "sat"
	Msat Unit = "msat"
	USD  Unit = "usd"
	EUR  Unit = "eur"
)

func (u Unit) String() string {
	if u == "" {
		return string(Sat)
	}
	return string(u)
}

// BlindedMessage is a wallet's output sent to the mint for signing.
// See https://github.com/cashubtc/nuts/blob/main/00.md#blindedmessage
type BlindedMessage struct {
	Amount  uint64 `json:"amount"`
	Id      string `json:"id"`
	B_      string `json:"B_"`
	Witness string `json:"witness,omitempty"`
}

type BlindedMessages []BlindedMessage

func (bm BlindedMessages) Amount() uint64 {
	var total uint64
	for _, m := range bm {
		total += m.Amount
	}
	return total
}

// BlindedSignature is the mint's signature over a BlindedMessage.
// See https://github.com/cashubtc/nuts/blob/main/00.md#blindsignature
type BlindedSignature struct {
	Amount uint64     `json:"amount"`
	Id     string     `json:"id"`
	C_     string     `json:"C_"`
	DLEQ   *DLEQProof `json:"dleq,omitempty"`
}

type BlindedSignatures []BlindedSignature

func (bs BlindedSignatures) Amount() uint64 {
	var total uint64
	for _, s := range bs {
		total += s.Amount
	}
	return total
}

// DLEQProof is the wire encoding of a bdhke.DLEQ value (hex-encoded
// scalars), carried on both blind signatures and proofs.
type DLEQProof struct {
	E string `json:"e"`
	S string `json:"s"`
	R string `json:"r,omitempty"`
}

// Proof is an unspent token the wallet holds: an unblinded signature C
// over a secret, under keyset Id.
// See https://github.com/cashubtc/nuts/blob/main/00.md#proof
type Proof struct {
	Amount  uint64     `json:"amount"`
	Id      string     `json:"id"`
	Secret  string     `json:"secret"`
	C       string     `json:"C"`
	Witness string     `json:"witness,omitempty"`
	DLEQ    *DLEQProof `json:"dleq,omitempty"`
}

type Proofs []Proof

// Amount returns the total amount across all proofs.
func (proofs Proofs) Amount() uint64 {
	var total uint64
	for _, p := range proofs {
		total += p.Amount
	}
	return total
}

// Secrets returns each proof's secret, used to compute Y =
// HashToCurve(secret) for mint spend-state lookups.
func (proofs Proofs) Secrets() []string {
	secrets := make([]string, len(proofs))
	for i, p := range proofs {
		secrets[i] = p.Secret
	}
	return secrets
}

// CheckDuplicateProofs reports whether any two proofs in the slice are
// identical (same amount, id, secret and C).
func CheckDuplicateProofs(proofs Proofs) bool {
	type proofKey struct {
		amount    uint64
		id        string
		secret, c string
	}
	seen := make(map[proofKey]bool, len(proofs))
	for _, p := range proofs {
		k := proofKey{amount: p.Amount, id: p.Id, secret: p.Secret, c: p.C}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}

// AmountSplit decomposes an amount into its powers-of-two
// denominations, e.g. 13 -> [1, 4, 8].
func AmountSplit(amount uint64) []uint64 {
	var out []uint64
	for pos := 0; amount > 0; pos++ {
		if amount&1 == 1 {
			out = append(out, 1<<pos)
		}
		amount >>= 1
	}
	return out
}

// GenerateRandomQuoteId returns a random 32-byte value, hex-encoded,
// suitable as a client-generated idempotency key where the protocol
// allows one.
func GenerateRandomQuoteId() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:]), nil
}

// Keyset is a mint's signing keyset for one unit: an id and its
// amount -> public key map, as returned by GET /v1/keys.
type Keyset struct {
	Id       string
	Unit     Unit
	Active   bool
	InputFee uint // input_fee_ppk, parts-per-thousand fee per proof spent
	Keys     map[uint64]string
}

// DeriveKeysetId computes the modern (hex, "00"-prefixed) keyset id
// from a keyset's public keys: sort by amount ascending, concatenate
// the compressed pubkey bytes, SHA256, take the first 14 hex chars
// and prefix "00".
func DeriveKeysetId(keys map[uint64]string) (string, error) {
	amounts := make([]uint64, 0, len(keys))
	for amt := range keys {
		amounts = append(amounts, amt)
	}
	for i := 0; i < len(amounts); i++ {
		for j := i + 1; j < len(amounts); j++ {
			if amounts[i] > amounts[j] {
				amounts[i], amounts[j] = amounts[j], amounts[i]
			}
		}
	}

	h := sha256.New()
	for _, amt := range amounts {
		raw, err := hex.DecodeString(keys[amt])
		if err != nil {
			return "", err
		}
		h.Write(raw)
	}
	sum := h.Sum(nil)
	return "00" + hex.EncodeToString(sum[:7]), nil
}
