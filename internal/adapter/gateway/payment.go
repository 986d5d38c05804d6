package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ecopay/ecoledger/internal/infrastructure/metrics"
	"github.com/ecopay/ecoledger/internal/usecase"
)

// PaymentClient talks to the external payment gateway over HTTP. It
// implements usecase.PaymentGateway.
type PaymentClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// PaymentClientConfig holds PaymentClient dependencies.
type PaymentClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// NewPaymentClient creates a new PaymentClient.
func NewPaymentClient(cfg PaymentClientConfig) *PaymentClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &PaymentClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "payment_gateway").Logger(),
	}
}

type createOrderRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	RequestID string `json:"request_id"`
}

type createOrderResponse struct {
	OrderRef string `json:"order_ref"`
}

// CreateOrder registers an expected payment with the gateway and returns
// its opaque order reference.
func (c *PaymentClient) CreateOrder(ctx context.Context, amount int64, currency string) (string, error) {
	reqBody := createOrderRequest{
		Amount:    amount,
		Currency:  currency,
		Receipt:   uuid.NewString(),
		RequestID: uuid.NewString(),
	}

	var respBody createOrderResponse
	if err := c.post(ctx, "/v1/orders", reqBody, &respBody); err != nil {
		c.metrics.GatewayCalls.WithLabelValues("create_order", "error").Inc()
		return "", fmt.Errorf("payment gateway create order: %w", err)
	}

	c.metrics.GatewayCalls.WithLabelValues("create_order", "ok").Inc()
	c.logger.Debug().
		Str("order_ref", respBody.OrderRef).
		Int64("amount", amount).
		Msg("gateway order created")

	return respBody.OrderRef, nil
}

type verifyRequest struct {
	OrderRef          string `json:"order_ref"`
	ConfirmationToken string `json:"confirmation_token"`
}

type verifyResponse struct {
	Authentic       bool  `json:"authentic"`
	ConfirmedAmount int64 `json:"confirmed_amount"`
}

// VerifyConfirmation asks the gateway whether a client-submitted
// confirmation token is authentic and how much it confirms.
func (c *PaymentClient) VerifyConfirmation(ctx context.Context, gatewayRef, confirmationToken string) (usecase.PaymentVerdict, error) {
	reqBody := verifyRequest{
		OrderRef:          gatewayRef,
		ConfirmationToken: confirmationToken,
	}

	var respBody verifyResponse
	if err := c.post(ctx, "/v1/confirmations/verify", reqBody, &respBody); err != nil {
		c.metrics.GatewayCalls.WithLabelValues("verify_confirmation", "error").Inc()
		return usecase.PaymentVerdict{}, fmt.Errorf("payment gateway verify: %w", err)
	}

	c.metrics.GatewayCalls.WithLabelValues("verify_confirmation", "ok").Inc()

	return usecase.PaymentVerdict{
		Authentic:       respBody.Authentic,
		ConfirmedAmount: respBody.ConfirmedAmount,
	}, nil
}

func (c *PaymentClient) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
