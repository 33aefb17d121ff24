package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-service/internal/apperrors"
)

// Client talks to the payment provider's REST API. All calls carry a
// bounded timeout; an unreachable provider surfaces as GatewayUnavailable,
// never as a hung caller.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// InitializeRequest starts a checkout session with the provider.
// Amount is in minor currency units, as the provider requires.
type InitializeRequest struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// InitializeResult is the provider's checkout handle.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the provider's verdict on a transaction reference.
// Amount is converted to major units at this edge; RawPayload preserves
// the provider's response verbatim for audit.
type VerifyResult struct {
	Status     string
	Amount     float64
	PaidAt     string
	Channel    string
	RawPayload []byte
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type verifyData struct {
	Status  string  `json:"status"`
	Amount  float64 `json:"amount"`
	PaidAt  string  `json:"paid_at"`
	Channel string  `json:"channel"`
}

// NewClient creates a payment gateway client
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Initialize starts a transaction and returns the authorization URL the
// customer is redirected to.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResult, error) {
	if c.secretKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable, fmt.Errorf("gateway secret key not configured"))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	envelope, _, err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if !envelope.Status {
		return nil, apperrors.ErrGatewayRejected.WithMessage("Payment initialization failed: %s", envelope.Message)
	}

	var result InitializeResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, apperrors.Internal(err, "decoding initialize response")
	}
	return &result, nil
}

// Verify asks the provider for the authoritative state of a transaction.
// A non-success transaction status is GatewayRejected; transport failures
// are GatewayUnavailable and safe to retry.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if c.secretKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable, fmt.Errorf("gateway secret key not configured"))
	}

	envelope, raw, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	if !envelope.Status {
		return nil, apperrors.ErrGatewayRejected.WithMessage("Payment verification failed: %s", envelope.Message)
	}

	var data verifyData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, apperrors.Internal(err, "decoding verify response")
	}

	if data.Status != "success" {
		return nil, apperrors.ErrGatewayRejected.WithMessage("Payment status is %q", data.Status)
	}

	return &VerifyResult{
		Status: data.Status,
		// the provider reports minor units
		Amount:     data.Amount / 100,
		PaidAt:     data.PaidAt,
		Channel:    data.Channel,
		RawPayload: raw,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*apiEnvelope, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable,
			fmt.Errorf("gateway returned %d", resp.StatusCode))
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable,
			fmt.Errorf("malformed gateway response: %w", err))
	}

	return &envelope, raw, nil
}
