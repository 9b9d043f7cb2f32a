// Package token implements the Cashu token wire formats: V3 (cashuA,
// base64url JSON) and V4 (cashuB, base64url CBOR).
package token

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/elnosh/gonuts-wallet-core/cashu"
)

var (
	ErrInvalidTokenV3 = errors.New("token: invalid V3 token")
	ErrInvalidTokenV4 = errors.New("token: invalid V4 token")
	ErrUnknownPrefix  = errors.New("token: unrecognized token prefix")
)

// Token is the common surface both wire versions expose, so callers
// that only need to inspect or spend a token never care which version
// it was received as.
type Token interface {
	Proofs() cashu.Proofs
	Mint() string
	Unit() cashu.Unit
	Amount() uint64
	Serialize() (string, error)
}

// Decode parses a serialized token in either wire format, trying V4
// first since it is the current default encoding.
func Decode(tokenStr string) (Token, error) {
	if len(tokenStr) < 6 {
		return nil, ErrUnknownPrefix
	}
	switch tokenStr[:6] {
	case "cashuB":
		return DecodeV4(tokenStr)
	case "cashuA":
		return DecodeV3(tokenStr)
	default:
		return nil, ErrUnknownPrefix
	}
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// --- V3: cashuA + base64url(JSON) ---

type V3 struct {
	Entries []V3Entry  `json:"token"`
	UnitStr string     `json:"unit,omitempty"`
	Memo    string     `json:"memo,omitempty"`
}

type V3Entry struct {
	Mint   string       `json:"mint"`
	Proofs cashu.Proofs `json:"proofs"`
}

// NewV3 bundles proofs from a single mint into a V3 token. Cashu V3
// predates multi-unit tokens cleanly, so unit is carried at the
// top level and assumed uniform across all proofs.
func NewV3(proofs cashu.Proofs, mintURL string, unit cashu.Unit, memo string) V3 {
	return V3{
		Entries: []V3Entry{{Mint: mintURL, Proofs: proofs}},
		UnitStr: unit.String(),
		Memo:    memo,
	}
}

func DecodeV3(tokenStr string) (*V3, error) {
	if len(tokenStr) < 6 || tokenStr[:6] != "cashuA" {
		return nil, ErrInvalidTokenV3
	}
	raw, err := decodeBase64(tokenStr[6:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenV3, err)
	}

	var t V3
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenV3, err)
	}
	if len(t.Entries) == 0 {
		return nil, ErrInvalidTokenV3
	}
	return &t, nil
}

func (t V3) Proofs() cashu.Proofs {
	var proofs cashu.Proofs
	for _, e := range t.Entries {
		proofs = append(proofs, e.Proofs...)
	}
	return proofs
}

func (t V3) Mint() string {
	return t.Entries[0].Mint
}

func (t V3) Unit() cashu.Unit {
	if t.UnitStr == "" {
		return cashu.Sat
	}
	return cashu.Unit(t.UnitStr)
}

func (t V3) Amount() uint64 {
	return t.Proofs().Amount()
}

func (t V3) Serialize() (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return "cashuA" + base64.RawURLEncoding.EncodeToString(raw), nil
}

// --- V4: cashuB + base64url(raw, no padding)(CBOR) ---

type V4 struct {
	MintURL     string      `cbor:"m"`
	UnitStr     string      `cbor:"u"`
	Memo        string      `cbor:"d,omitempty"`
	TokenProofs []V4KeysetProofs `cbor:"t"`
}

type V4KeysetProofs struct {
	Id     []byte    `cbor:"i"`
	Proofs []V4Proof `cbor:"p"`
}

type V4Proof struct {
	Amount  uint64  `cbor:"a"`
	Secret  string  `cbor:"s"`
	C       []byte  `cbor:"c"`
	Witness string  `cbor:"w,omitempty"`
	DLEQ    *V4DLEQ `cbor:"d,omitempty"`
}

type V4DLEQ struct {
	E []byte `cbor:"e"`
	S []byte `cbor:"s"`
	R []byte `cbor:"r"`
}

// NewV4 bundles proofs from a single mint into a V4 token, grouping
// proofs by keyset id the way the CBOR wire layout requires.
func NewV4(proofs cashu.Proofs, mintURL string, unit cashu.Unit, memo string, includeDLEQ bool) (V4, error) {
	byKeyset := make(map[string][]V4Proof)
	var order []string

	for _, p := range proofs {
		c, err := hex.DecodeString(p.C)
		if err != nil {
			return V4{}, fmt.Errorf("%w: invalid C: %v", ErrInvalidTokenV4, err)
		}
		v4p := V4Proof{Amount: p.Amount, Secret: p.Secret, C: c, Witness: p.Witness}
		if includeDLEQ && p.DLEQ != nil {
			e, err := hex.DecodeString(p.DLEQ.E)
			if err != nil {
				return V4{}, fmt.Errorf("%w: invalid dleq.e: %v", ErrInvalidTokenV4, err)
			}
			s, err := hex.DecodeString(p.DLEQ.S)
			if err != nil {
				return V4{}, fmt.Errorf("%w: invalid dleq.s: %v", ErrInvalidTokenV4, err)
			}
			r, err := hex.DecodeString(p.DLEQ.R)
			if err != nil {
				return V4{}, fmt.Errorf("%w: invalid dleq.r: %v", ErrInvalidTokenV4, err)
			}
			v4p.DLEQ = &V4DLEQ{E: e, S: s, R: r}
		}

		if _, ok := byKeyset[p.Id]; !ok {
			order = append(order, p.Id)
		}
		byKeyset[p.Id] = append(byKeyset[p.Id], v4p)
	}

	entries := make([]V4KeysetProofs, 0, len(order))
	for _, id := range order {
		idBytes, err := hex.DecodeString(id)
		if err != nil {
			return V4{}, fmt.Errorf("%w: invalid keyset id: %v", ErrInvalidTokenV4, err)
		}
		entries = append(entries, V4KeysetProofs{Id: idBytes, Proofs: byKeyset[id]})
	}

	return V4{MintURL: mintURL, UnitStr: unit.String(), Memo: memo, TokenProofs: entries}, nil
}

func DecodeV4(tokenStr string) (*V4, error) {
	if len(tokenStr) < 6 || tokenStr[:6] != "cashuB" {
		return nil, ErrInvalidTokenV4
	}
	raw, err := decodeBase64(tokenStr[6:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenV4, err)
	}

	var t V4
	if err := cbor.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenV4, err)
	}
	return &t, nil
}

func (t V4) Proofs() cashu.Proofs {
	var proofs cashu.Proofs
	for _, entry := range t.TokenProofs {
		keysetId := hex.EncodeToString(entry.Id)
		for _, p := range entry.Proofs {
			proof := cashu.Proof{
				Amount:  p.Amount,
				Id:      keysetId,
				Secret:  p.Secret,
				C:       hex.EncodeToString(p.C),
				Witness: p.Witness,
			}
			if p.DLEQ != nil {
				proof.DLEQ = &cashu.DLEQProof{
					E: hex.EncodeToString(p.DLEQ.E),
					S: hex.EncodeToString(p.DLEQ.S),
					R: hex.EncodeToString(p.DLEQ.R),
				}
			}
			proofs = append(proofs, proof)
		}
	}
	return proofs
}

func (t V4) Mint() string {
	return t.MintURL
}

func (t V4) Unit() cashu.Unit {
	if t.UnitStr == "" {
		return cashu.Sat
	}
	return cashu.Unit(t.UnitStr)
}

func (t V4) Amount() uint64 {
	return t.Proofs().Amount()
}

func (t V4) Serialize() (string, error) {
	raw, err := cbor.Marshal(t)
	if err != nil {
		return "", err
	}
	return "cashuB" + base64.RawURLEncoding.EncodeToString(raw), nil
}
