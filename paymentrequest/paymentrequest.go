// Package paymentrequest implements NUT-18 Cashu payment requests: a
// receiver-generated "creqA..." blob naming how and where to send a
// token, resolved to CBOR per this module's Open Question decision
// (see DESIGN.md).
package paymentrequest

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

const (
	prefix  = "creq"
	version = "A"
)

var ErrInvalidPaymentRequest = errors.New("paymentrequest: invalid payment request")

// Transport describes one channel the payer can use to deliver the
// resulting token back to the receiver (e.g. nostr, a POST endpoint).
type Transport struct {
	Type   string     `cbor:"t"`
	Target string     `cbor:"a"`
	Tags   [][]string `cbor:"g,omitempty"`
}

// PaymentRequest is a receiver's ask: an optional amount/unit, the
// mints it will accept payment from, and the transports it can be
// reached on.
type PaymentRequest struct {
	Id          string      `cbor:"i,omitempty"`
	Amount      uint64      `cbor:"a,omitempty"`
	Unit        string      `cbor:"u,omitempty"`
	SingleUse   bool        `cbor:"s,omitempty"`
	Mints       []string    `cbor:"m,omitempty"`
	Description string      `cbor:"d,omitempty"`
	Transports  []Transport `cbor:"t"`
}

// Encode serializes a PaymentRequest as "creqA" + base64url(CBOR).
func (p PaymentRequest) Encode() (string, error) {
	raw, err := cbor.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("paymentrequest: marshaling: %w", err)
	}
	return prefix + version + base64.URLEncoding.EncodeToString(raw), nil
}

// Decode parses a "creqA..." string back into a PaymentRequest.
func Decode(encoded string) (*PaymentRequest, error) {
	if len(encoded) < len(prefix)+len(version) || encoded[:len(prefix)] != prefix {
		return nil, ErrInvalidPaymentRequest
	}
	if encoded[len(prefix):len(prefix)+len(version)] != version {
		return nil, fmt.Errorf("%w: unsupported version", ErrInvalidPaymentRequest)
	}

	body := encoded[len(prefix)+len(version):]
	raw, err := base64.URLEncoding.DecodeString(body)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPaymentRequest, err)
		}
	}

	var req PaymentRequest
	if err := cbor.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPaymentRequest, err)
	}
	return &req, nil
}

// AcceptsMint reports whether mintURL is one of the receiver's
// accepted mints (an empty Mints list accepts any mint).
func (p PaymentRequest) AcceptsMint(mintURL string) bool {
	if len(p.Mints) == 0 {
		return true
	}
	for _, m := range p.Mints {
		if m == mintURL {
			return true
		}
	}
	return false
}
