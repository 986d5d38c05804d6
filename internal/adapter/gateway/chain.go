package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// tokenDecimals is the on-chain precision of the eco token.
const tokenDecimals = 18

// ChainClient submits mint requests to the chain relay service. It
// implements usecase.ChainMinter.
type ChainClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// ChainClientConfig holds ChainClient dependencies.
type ChainClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// NewChainClient creates a new ChainClient.
func NewChainClient(cfg ChainClientConfig) *ChainClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &ChainClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "chain_minter").Logger(),
	}
}

type mintRequest struct {
	AccountID      string `json:"account_id"`
	AmountWei      string `json:"amount_wei"`
	IdempotencyKey string `json:"idempotency_key"`
}

type mintResponse struct {
	TxHash string `json:"tx_hash"`
}

// Mint asks the relay to mint tokens for an account. The token amount is
// shifted to the chain's smallest unit before submission. The relay
// deduplicates on the idempotency key, so a retried request returns the
// original transaction hash.
func (c *ChainClient) Mint(ctx context.Context, accountID string, tokens decimal.Decimal, idempotencyKey string) (usecase.MintResult, error) {
	reqBody := mintRequest{
		AccountID:      accountID,
		AmountWei:      tokens.Shift(tokenDecimals).String(),
		IdempotencyKey: idempotencyKey,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		c.metrics.MinterCalls.WithLabelValues("error").Inc()
		return usecase.MintResult{}, fmt.Errorf("marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/mint", bytes.NewReader(payload))
	if err != nil {
		c.metrics.MinterCalls.WithLabelValues("error").Inc()
		return usecase.MintResult{}, fmt.Errorf("build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.MinterCalls.WithLabelValues("error").Inc()
		return usecase.MintResult{}, fmt.Errorf("chain relay mint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.MinterCalls.WithLabelValues("error").Inc()
		return usecase.MintResult{}, fmt.Errorf("chain relay returned status %d", resp.StatusCode)
	}

	var respBody mintResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		c.metrics.MinterCalls.WithLabelValues("error").Inc()
		return usecase.MintResult{}, fmt.Errorf("decode mint response: %w", err)
	}

	c.metrics.MinterCalls.WithLabelValues("ok").Inc()
	c.logger.Info().
		Str("account_id", accountID).
		Str("tokens", tokens.String()).
		Str("tx_hash", respBody.TxHash).
		Msg("mint submitted")

	return usecase.MintResult{TxHash: respBody.TxHash}, nil
}
