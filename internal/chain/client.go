package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// RPC method names exposed by the node.
const (
	methodCurrentBlock   = "chain_currentBlock"
	methodSubnets        = "subnets_list"
	methodStakeHolders   = "subnets_stakeHoldersAt"
	methodSubnetEmission = "subnets_emission"
	methodDelegates      = "delegates_list"
)

// RPCClient talks JSON-RPC 2.0 to a chain node over HTTP. Safe for
// concurrent use; the underlying connection pool is shared across
// queries within a sweep.
type RPCClient struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	nextID     atomic.Uint64
}

// NewRPCClient creates a chain client for the given node endpoint. Each
// call is bounded by timeout independently of the caller's context.
func NewRPCClient(endpoint string, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RPCClient{
		endpoint:   endpoint,
		httpClient: StandardClient(newRetryClient()),
		timeout:    timeout,
	}
}

// newRetryClient creates a new HTTP client with retry capabilities.
func newRetryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c
}

// StandardClient converts a retryablehttp.Client to a standard http.Client.
func StandardClient(retryClient *retryablehttp.Client) *http.Client {
	return retryClient.StandardClient()
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call issues one JSON-RPC request and returns the raw result.
func (c *RPCClient) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logrus.Debugf("Chain RPC %s -> %s", method, c.endpoint)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chain node error on %s: status %d, body: %s", method, resp.StatusCode, string(body))
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("error decoding %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("%s failed: %w", method, decoded.Error)
	}
	return decoded.Result, nil
}

// CurrentBlock returns the chain's current block height.
func (c *RPCClient) CurrentBlock(ctx context.Context) (int64, error) {
	raw, err := c.call(ctx, methodCurrentBlock)
	if err != nil {
		return 0, err
	}
	block, err := normalizeAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("error decoding block height: %w", err)
	}
	return block, nil
}

// Subnets enumerates the network's subnet identifiers.
func (c *RPCClient) Subnets(ctx context.Context) ([]int, error) {
	raw, err := c.call(ctx, methodSubnets)
	if err != nil {
		return nil, err
	}
	ids, err := normalizeSubnetList(raw)
	if err != nil {
		return nil, fmt.Errorf("error decoding subnet list: %w", err)
	}
	return ids, nil
}

// StakeHolders lists every participant with stake in a subnet at the
// given block height.
func (c *RPCClient) StakeHolders(ctx context.Context, netuid int, block int64) ([]StakeEntry, error) {
	raw, err := c.call(ctx, methodStakeHolders, netuid, block)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Hotkey string          `json:"hotkey"`
		Stake  json.RawMessage `json:"stake"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("error decoding stake holders for subnet %d at block %d: %w", netuid, block, err)
	}

	entries := make([]StakeEntry, 0, len(rows))
	for _, row := range rows {
		stake, err := normalizeAmount(row.Stake)
		if err != nil {
			// One undecodable row does not invalidate the listing.
			logrus.Warnf("Skipping stake entry for %s on subnet %d: %v", row.Hotkey, netuid, err)
			continue
		}
		entries = append(entries, StakeEntry{Hotkey: row.Hotkey, Stake: stake})
	}
	return entries, nil
}

// SubnetEmission returns a subnet's per-block emission in rao.
func (c *RPCClient) SubnetEmission(ctx context.Context, netuid int) (int64, error) {
	raw, err := c.call(ctx, methodSubnetEmission, netuid)
	if err != nil {
		return 0, err
	}
	emission, err := normalizeAmount(raw)
	if err != nil {
		return 0, fmt.Errorf("error decoding emission for subnet %d: %w", netuid, err)
	}
	return emission, nil
}

// Delegates returns the delegate registry with identities merged in.
func (c *RPCClient) Delegates(ctx context.Context) ([]Delegate, error) {
	raw, err := c.call(ctx, methodDelegates)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Hotkey   string  `json:"hotkey"`
		Coldkey  string  `json:"coldkey"`
		Take     float64 `json:"take"`
		Identity *struct {
			Display string `json:"display"`
			Web     string `json:"web"`
			Image   string `json:"image"`
			Twitter string `json:"twitter"`
		} `json:"identity"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("error decoding delegate list: %w", err)
	}

	delegates := make([]Delegate, 0, len(rows))
	for _, row := range rows {
		d := Delegate{Hotkey: row.Hotkey, Coldkey: row.Coldkey, Take: row.Take}
		if row.Identity != nil {
			d.Identity = Identity{
				Display: row.Identity.Display,
				Web:     row.Identity.Web,
				Image:   row.Identity.Image,
				Twitter: row.Identity.Twitter,
			}
		}
		delegates = append(delegates, d)
	}
	return delegates, nil
}
