// Package mintclient is the typed HTTP client for the mint's NUT-04
// through NUT-09 REST API: request/response DTOs and the functions
// that round-trip them over /v1/*.
package mintclient

import (
	"github.com/elnosh/gonuts-wallet-core/cashu"
)

// GetKeysResponse is the body of GET /v1/keys and /v1/keys/{id}.
type GetKeysResponse struct {
	Keysets []KeysResponseKeyset `json:"keysets"`
}

type KeysResponseKeyset struct {
	Id   string            `json:"id"`
	Unit string            `json:"unit"`
	Keys map[uint64]string `json:"keys"`
}

// GetKeysetsResponse is the body of GET /v1/keysets.
type GetKeysetsResponse struct {
	Keysets []KeysetInfo `json:"keysets"`
}

type KeysetInfo struct {
	Id       string `json:"id"`
	Unit     string `json:"unit"`
	Active   bool   `json:"active"`
	InputFee uint   `json:"input_fee_ppk,omitempty"`
}

// MintInfo is the body of GET /v1/info.
type MintInfo struct {
	Name        string        `json:"name"`
	Pubkey      string        `json:"pubkey"`
	Version     string        `json:"version"`
	Description string        `json:"description"`
	Contact     []ContactInfo `json:"contact,omitempty"`
	Nuts        map[int]any   `json:"nuts"`
}

type ContactInfo struct {
	Method string `json:"method"`
	Info   string `json:"info"`
}

// PostMintQuoteBolt11Request is the body of POST /v1/mint/quote/bolt11.
// Pubkey is NUT-20's optional locking key: when set, the mint refuses
// to pay out this quote's mint request unless it carries a valid
// signature over the quote id and outputs under this key.
type PostMintQuoteBolt11Request struct {
	Amount uint64 `json:"amount"`
	Unit   string `json:"unit"`
	Pubkey string `json:"pubkey,omitempty"`
}

type PostMintQuoteBolt11Response struct {
	Quote   string `json:"quote"`
	Request string `json:"request"`
	State   string `json:"state"`
	Expiry  int64  `json:"expiry"`
}

// PostMintBolt11Request is the body of POST /v1/mint/bolt11. Signature
// is present only for quotes requested with a NUT-20 locking pubkey.
type PostMintBolt11Request struct {
	Quote     string                `json:"quote"`
	Outputs   cashu.BlindedMessages `json:"outputs"`
	Signature string                `json:"signature,omitempty"`
}

type PostMintBolt11Response struct {
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// PostSwapRequest is the body of POST /v1/swap.
type PostSwapRequest struct {
	Inputs  cashu.Proofs          `json:"inputs"`
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostSwapResponse struct {
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// PostMeltQuoteBolt11Request is the body of POST /v1/melt/quote/bolt11.
type PostMeltQuoteBolt11Request struct {
	Request string `json:"request"`
	Unit    string `json:"unit"`
}

type PostMeltQuoteBolt11Response struct {
	Quote      string                  `json:"quote"`
	Amount     uint64                  `json:"amount"`
	FeeReserve uint64                  `json:"fee_reserve"`
	State      string                  `json:"state"`
	Expiry     int64                   `json:"expiry"`
	Preimage   string                  `json:"payment_preimage,omitempty"`
	Change     cashu.BlindedSignatures `json:"change,omitempty"`
}

// PostMeltBolt11Request is the body of POST /v1/melt/bolt11. Outputs
// carries blinded messages for change, per NUT-08; a mint that does
// not support overpaid-fee change ignores them.
type PostMeltBolt11Request struct {
	Quote   string                `json:"quote"`
	Inputs  cashu.Proofs          `json:"inputs"`
	Outputs cashu.BlindedMessages `json:"outputs,omitempty"`
}

// ProofState mirrors NUT-07's three-state spend status.
type ProofState string

const (
	StateUnspent ProofState = "UNSPENT"
	StatePending ProofState = "PENDING"
	StateSpent   ProofState = "SPENT"
)

// PostCheckStateRequest is the body of POST /v1/checkstate.
type PostCheckStateRequest struct {
	Ys []string `json:"Ys"`
}

type PostCheckStateResponse struct {
	States []ProofStateEntry `json:"states"`
}

type ProofStateEntry struct {
	Y     string     `json:"Y"`
	State ProofState `json:"state"`
}

// PostRestoreRequest is the body of POST /v1/restore.
type PostRestoreRequest struct {
	Outputs cashu.BlindedMessages `json:"outputs"`
}

type PostRestoreResponse struct {
	Outputs    cashu.BlindedMessages   `json:"outputs"`
	Signatures cashu.BlindedSignatures `json:"signatures"`
}

// MintError is the JSON body the mint sends back with HTTP 400 for a
// protocol-level rejection (NUT-00's error format).
type MintError struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

func (e MintError) Error() string {
	return e.Detail
}
