// Package lnurl resolves a lightning address ("user@domain") to a
// bolt11 invoice via LUD-16 (the .well-known/lnurlp flow), so a melt
// can target an address instead of a pasted invoice.
package lnurl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	decodepay "github.com/nbd-wtf/ln-decodepay"

	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// payResponse is the body of GET /.well-known/lnurlp/{user}.
type payResponse struct {
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"`
	MaxSendable int64  `json:"maxSendable"`
	Tag         string `json:"tag"`
}

type invoiceResponse struct {
	PR     string `json:"pr"`
	Reason string `json:"reason"`
}

// ResolveAddress turns a lightning address into a bolt11 invoice for
// amountMsat, round-tripping through the LUD-16 pay flow.
func ResolveAddress(ctx context.Context, httpClient *http.Client, address string, amountMsat int64) (string, error) {
	user, domain, ok := strings.Cut(address, "@")
	if !ok {
		return "", walleterr.New(walleterr.KindInvalidToken, "lightning address must be user@domain")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	wellKnownURL := fmt.Sprintf("https://%s/.well-known/lnurlp/%s", domain, url.PathEscape(user))
	var meta payResponse
	if err := getJSON(ctx, httpClient, wellKnownURL, &meta); err != nil {
		return "", err
	}
	if meta.Tag != "payRequest" {
		return "", walleterr.New(walleterr.KindProtocol, "lnurl endpoint is not a payRequest")
	}
	if amountMsat < meta.MinSendable || amountMsat > meta.MaxSendable {
		return "", walleterr.New(walleterr.KindAmountMismatch, fmt.Sprintf(
			"amount %d msat outside lnurl bounds [%d, %d]", amountMsat, meta.MinSendable, meta.MaxSendable))
	}

	callbackURL := fmt.Sprintf("%s?amount=%d", meta.Callback, amountMsat)
	var invoice invoiceResponse
	if err := getJSON(ctx, httpClient, callbackURL, &invoice); err != nil {
		return "", err
	}
	if invoice.PR == "" {
		return "", walleterr.New(walleterr.KindProtocol, "lnurl callback did not return an invoice: "+invoice.Reason)
	}

	if _, err := decodepay.Decodepay(invoice.PR); err != nil {
		return "", walleterr.Wrap(walleterr.KindInvalidToken, "lnurl returned an undecodable invoice", err)
	}

	return invoice.PR, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "building lnurl request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "contacting lnurl endpoint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "reading lnurl response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return walleterr.New(walleterr.KindProtocol, fmt.Sprintf("lnurl endpoint returned %d: %s", resp.StatusCode, body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return walleterr.Wrap(walleterr.KindProtocol, "decoding lnurl response", err)
	}
	return nil
}

// DecodeInvoice parses a bolt11 invoice and returns its amount in
// millisatoshis and payment hash, for melt-quote validation.
func DecodeInvoice(invoice string) (amountMsat int64, paymentHash string, err error) {
	decoded, err := decodepay.Decodepay(invoice)
	if err != nil {
		return 0, "", walleterr.Wrap(walleterr.KindInvalidToken, "decoding invoice", err)
	}
	return int64(decoded.MSatoshi), decoded.PaymentHash, nil
}
