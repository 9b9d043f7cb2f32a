package mintclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elnosh/gonuts-wallet-core/walleterr"
)

// Client is a typed HTTP client bound to one mint's base URL.
type Client struct {
	mintURL string
	http    *http.Client
	auth    *macaroonAuth
}

// New returns a Client for a mint reachable at mintURL (no trailing
// slash expected, e.g. "https://mint.example.com").
func New(mintURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{mintURL: mintURL, http: httpClient}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mintURL+path, nil)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "building request", err)
	}
	c.applyAuth(req)
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return walleterr.Wrap(walleterr.KindProtocol, "marshaling request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mintURL+path, bytes.NewReader(body))
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "contacting mint", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return walleterr.Wrap(walleterr.KindNetwork, "reading mint response", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		var mintErr MintError
		if err := json.Unmarshal(body, &mintErr); err != nil {
			return walleterr.Wrap(walleterr.KindProtocol, "decoding mint error body", err)
		}
		return walleterr.Wrap(walleterr.KindProtocol, mintErr.Detail, mintErr)
	}
	if resp.StatusCode != http.StatusOK {
		return walleterr.New(walleterr.KindProtocol, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return walleterr.Wrap(walleterr.KindProtocol, "decoding mint response", err)
	}
	return nil
}

// Info fetches GET /v1/info.
func (c *Client) Info(ctx context.Context) (*MintInfo, error) {
	var out MintInfo
	if err := c.get(ctx, "/v1/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Keys fetches GET /v1/keys, the mint's currently active keysets.
func (c *Client) Keys(ctx context.Context) (*GetKeysResponse, error) {
	var out GetKeysResponse
	if err := c.get(ctx, "/v1/keys", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// KeysForKeyset fetches GET /v1/keys/{id}, a specific keyset's keys
// even if no longer active.
func (c *Client) KeysForKeyset(ctx context.Context, keysetId string) (*GetKeysResponse, error) {
	var out GetKeysResponse
	if err := c.get(ctx, "/v1/keys/"+keysetId, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Keysets fetches GET /v1/keysets, the mint's full keyset directory.
func (c *Client) Keysets(ctx context.Context) (*GetKeysetsResponse, error) {
	var out GetKeysetsResponse
	if err := c.get(ctx, "/v1/keysets", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MintQuote requests a new bolt11 mint quote.
func (c *Client) MintQuote(ctx context.Context, req PostMintQuoteBolt11Request) (*PostMintQuoteBolt11Response, error) {
	var out PostMintQuoteBolt11Response
	if err := c.post(ctx, "/v1/mint/quote/bolt11", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MintQuoteState polls GET /v1/mint/quote/bolt11/{id}.
func (c *Client) MintQuoteState(ctx context.Context, quoteId string) (*PostMintQuoteBolt11Response, error) {
	var out PostMintQuoteBolt11Response
	if err := c.get(ctx, "/v1/mint/quote/bolt11/"+quoteId, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mint exchanges a paid quote for blind signatures over the supplied
// outputs via POST /v1/mint/bolt11.
func (c *Client) Mint(ctx context.Context, req PostMintBolt11Request) (*PostMintBolt11Response, error) {
	var out PostMintBolt11Response
	if err := c.post(ctx, "/v1/mint/bolt11", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Swap exchanges inputs for new blind signatures via POST /v1/swap.
func (c *Client) Swap(ctx context.Context, req PostSwapRequest) (*PostSwapResponse, error) {
	var out PostSwapResponse
	if err := c.post(ctx, "/v1/swap", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MeltQuote requests a bolt11 melt quote (how much the mint will pay
// out an invoice for, and its fee reserve).
func (c *Client) MeltQuote(ctx context.Context, req PostMeltQuoteBolt11Request) (*PostMeltQuoteBolt11Response, error) {
	var out PostMeltQuoteBolt11Response
	if err := c.post(ctx, "/v1/melt/quote/bolt11", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MeltQuoteState polls GET /v1/melt/quote/bolt11/{id}.
func (c *Client) MeltQuoteState(ctx context.Context, quoteId string) (*PostMeltQuoteBolt11Response, error) {
	var out PostMeltQuoteBolt11Response
	if err := c.get(ctx, "/v1/melt/quote/bolt11/"+quoteId, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Melt spends inputs to pay a melt quote's invoice via POST
// /v1/melt/bolt11.
func (c *Client) Melt(ctx context.Context, req PostMeltBolt11Request) (*PostMeltQuoteBolt11Response, error) {
	var out PostMeltQuoteBolt11Response
	if err := c.post(ctx, "/v1/melt/bolt11", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckState queries spend status for a batch of Y points via POST
// /v1/checkstate.
func (c *Client) CheckState(ctx context.Context, req PostCheckStateRequest) (*PostCheckStateResponse, error) {
	var out PostCheckStateResponse
	if err := c.post(ctx, "/v1/checkstate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Restore replays a batch of deterministic outputs via POST
// /v1/restore, returning only the ones the mint recognizes as signed.
func (c *Client) Restore(ctx context.Context, req PostRestoreRequest) (*PostRestoreResponse, error) {
	var out PostRestoreResponse
	if err := c.post(ctx, "/v1/restore", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
