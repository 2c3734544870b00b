package sol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"golang.org/x/time/rate"

	"github.com/rentclaim/rentclaim/internal/config"
)

// SignatureStatus represents the status of a Solana transaction signature.
type SignatureStatus struct {
	Slot               uint64      `json:"slot"`
	Confirmations      *uint64     `json:"confirmations"`
	ConfirmationStatus *string     `json:"confirmationStatus"`
	Err                interface{} `json:"err"`
}

// TokenAccount is one SPL token account owned by a wallet, as returned by
// getTokenAccountsByOwner with jsonParsed encoding.
type TokenAccount struct {
	Address  string // the token account itself
	Mint     string
	Owner    string // the wallet
	Lamports uint64 // rent deposit held by the account
	Amount   string // raw token amount as a decimal string
	Program  string // owning token program ID
}

// RPCClient defines the Solana RPC surface needed by the scan and close pipeline.
type RPCClient interface {
	GetLatestBlockhash(ctx context.Context) (blockhash [32]byte, lastValidBlockHeight uint64, err error)
	SendTransaction(ctx context.Context, txBase64 string) (signature string, err error)
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]SignatureStatus, error)
	GetAccountInfo(ctx context.Context, address string) (exists bool, lamports uint64, err error)
	GetBalance(ctx context.Context, address string) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error)
}

// Client implements RPCClient using Solana JSON-RPC over HTTP with
// round-robin URL selection and request rate limiting.
type Client struct {
	httpClient *http.Client
	rpcURLs    []string
	currentIdx int
	mu         sync.Mutex
	limiter    *rate.Limiter
}

// NewClient creates a JSON-RPC client over the given endpoint URLs.
func NewClient(httpClient *http.Client, rpcURLs []string) *Client {
	slog.Info("solana rpc client created",
		"urlCount", len(rpcURLs),
		"urls", rpcURLs,
	)
	return &Client{
		httpClient: httpClient,
		rpcURLs:    rpcURLs,
		// Burst(1) ensures requests are spread evenly across the second,
		// preventing bursty traffic that can trigger provider rate limiting
		// even when the average rate is within limits.
		limiter: rate.NewLimiter(rate.Limit(config.RateLimitSolanaRPC), 1),
	}
}

// rpcRequest is a Solana JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse is a generic JSON-RPC response with json.RawMessage result.
type rpcResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// nextURL returns the next RPC URL in round-robin order.
func (c *Client) nextURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	url := c.rpcURLs[c.currentIdx%len(c.rpcURLs)]
	c.currentIdx++
	return url
}

// doRPC sends a JSON-RPC request and returns the raw result.
func (c *Client) doRPC(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	url := c.nextURL()

	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal RPC request: %w", err)
	}

	slog.Debug("solana rpc request",
		"method", method,
		"url", url,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create RPC request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute RPC request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", config.ErrProviderUnavailable, resp.StatusCode, url)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode RPC response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return rpcResp.Result, nil
}

// GetLatestBlockhash fetches a recent blockhash for transaction building.
func (c *Client) GetLatestBlockhash(ctx context.Context) ([32]byte, uint64, error) {
	result, err := c.doRPC(ctx, "getLatestBlockhash", []interface{}{
		map[string]string{"commitment": "confirmed"},
	})
	if err != nil {
		return [32]byte{}, 0, fmt.Errorf("getLatestBlockhash: %w", err)
	}

	var parsed struct {
		Value struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return [32]byte{}, 0, fmt.Errorf("parse getLatestBlockhash: %w", err)
	}

	hashBytes, err := base58.Decode(parsed.Value.Blockhash)
	if err != nil {
		return [32]byte{}, 0, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(hashBytes) != 32 {
		return [32]byte{}, 0, fmt.Errorf("invalid blockhash length: %d", len(hashBytes))
	}

	var blockhash [32]byte
	copy(blockhash[:], hashBytes)

	slog.Debug("fetched blockhash",
		"blockhash", parsed.Value.Blockhash,
		"lastValidBlockHeight", parsed.Value.LastValidBlockHeight,
	)

	return blockhash, parsed.Value.LastValidBlockHeight, nil
}

// SendTransaction broadcasts a base64-encoded signed transaction.
func (c *Client) SendTransaction(ctx context.Context, txBase64 string) (string, error) {
	result, err := c.doRPC(ctx, "sendTransaction", []interface{}{
		txBase64,
		map[string]interface{}{
			"encoding":            "base64",
			"preflightCommitment": "confirmed",
		},
	})
	if err != nil {
		return "", fmt.Errorf("sendTransaction: %w", err)
	}

	var signature string
	if err := json.Unmarshal(result, &signature); err != nil {
		return "", fmt.Errorf("parse sendTransaction result: %w", err)
	}

	slog.Info("transaction sent", "signature", signature)
	return signature, nil
}

// GetSignatureStatuses fetches the status of one or more transaction signatures.
func (c *Client) GetSignatureStatuses(ctx context.Context, signatures []string) ([]SignatureStatus, error) {
	result, err := c.doRPC(ctx, "getSignatureStatuses", []interface{}{
		signatures,
		map[string]bool{"searchTransactionHistory": true},
	})
	if err != nil {
		return nil, fmt.Errorf("getSignatureStatuses: %w", err)
	}

	var parsed struct {
		Value []*SignatureStatus `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("parse getSignatureStatuses: %w", err)
	}

	statuses := make([]SignatureStatus, len(parsed.Value))
	for i, s := range parsed.Value {
		if s != nil {
			statuses[i] = *s
		}
	}

	return statuses, nil
}

// GetAccountInfo checks if an account exists and returns its lamport balance.
func (c *Client) GetAccountInfo(ctx context.Context, address string) (bool, uint64, error) {
	result, err := c.doRPC(ctx, "getAccountInfo", []interface{}{
		address,
		map[string]string{"encoding": "base64"},
	})
	if err != nil {
		return false, 0, fmt.Errorf("getAccountInfo for %s: %w", address, err)
	}

	var parsed struct {
		Value *struct {
			Lamports uint64 `json:"lamports"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return false, 0, fmt.Errorf("parse getAccountInfo: %w", err)
	}

	if parsed.Value == nil {
		return false, 0, nil
	}

	return true, parsed.Value.Lamports, nil
}

// GetBalance fetches the SOL balance (lamports) for an address.
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	result, err := c.doRPC(ctx, "getBalance", []interface{}{
		address,
		map[string]string{"commitment": "confirmed"},
	})
	if err != nil {
		return 0, fmt.Errorf("getBalance for %s: %w", address, err)
	}

	var parsed struct {
		Value uint64 `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return 0, fmt.Errorf("parse getBalance: %w", err)
	}

	slog.Debug("balance fetched",
		"address", address,
		"lamports", parsed.Value,
	)

	return parsed.Value, nil
}

// GetTokenAccountsByOwner lists all token accounts of a wallet under one
// token program, using jsonParsed encoding so mint and amount come decoded.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccount, error) {
	result, err := c.doRPC(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]string{"programId": programID},
		map[string]string{"encoding": "jsonParsed", "commitment": "confirmed"},
	})
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner for %s: %w", owner, err)
	}

	var parsed struct {
		Value []struct {
			Pubkey  string `json:"pubkey"`
			Account struct {
				Lamports uint64 `json:"lamports"`
				Owner    string `json:"owner"`
				Data     struct {
					Parsed struct {
						Info struct {
							Mint        string `json:"mint"`
							Owner       string `json:"owner"`
							TokenAmount struct {
								Amount   string `json:"amount"`
								Decimals int    `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("parse getTokenAccountsByOwner: %w", err)
	}

	accounts := make([]TokenAccount, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		accounts = append(accounts, TokenAccount{
			Address:  v.Pubkey,
			Mint:     v.Account.Data.Parsed.Info.Mint,
			Owner:    v.Account.Data.Parsed.Info.Owner,
			Lamports: v.Account.Lamports,
			Amount:   v.Account.Data.Parsed.Info.TokenAmount.Amount,
			Program:  v.Account.Owner,
		})
	}

	slog.Debug("token accounts fetched",
		"owner", owner,
		"program", programID,
		"count", len(accounts),
	)

	return accounts, nil
}

// WaitForConfirmation polls getSignatureStatuses until the transaction is confirmed or fails.
func WaitForConfirmation(ctx context.Context, client RPCClient, signature string) (uint64, error) {
	slog.Debug("waiting for confirmation", "signature", signature)

	pollCtx, cancel := context.WithTimeout(ctx, config.ConfirmationTimeout)
	defer cancel()

	for {
		statuses, err := client.GetSignatureStatuses(pollCtx, []string{signature})
		if err != nil {
			slog.Warn("confirmation poll error", "signature", signature, "error", err)
			// Transient RPC error — wait and retry.
		} else if len(statuses) > 0 {
			status := statuses[0]

			// Check for on-chain error.
			if status.Err != nil {
				slog.Error("transaction failed on-chain",
					"signature", signature,
					"error", status.Err,
				)
				return 0, fmt.Errorf("%w: %v", config.ErrTxFailed, status.Err)
			}

			// Check confirmation status.
			if status.ConfirmationStatus != nil {
				cs := *status.ConfirmationStatus
				if cs == "confirmed" || cs == "finalized" {
					slog.Info("transaction confirmed",
						"signature", signature,
						"slot", status.Slot,
						"confirmationStatus", cs,
					)
					return status.Slot, nil
				}
			}
		}

		// Not confirmed yet — wait and retry.
		select {
		case <-pollCtx.Done():
			return 0, fmt.Errorf("%w: signature %s", config.ErrConfirmationTimeout, signature)
		case <-time.After(config.ConfirmationPollInterval):
			slog.Debug("confirmation not ready, polling again", "signature", signature)
		}
	}
}
