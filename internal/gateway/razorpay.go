// Package gateway wraps the Razorpay orders API: intent creation before the
// customer pays, and HMAC signature verification of the callback afterwards.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured is returned when gateway credentials are absent. Handlers
// surface it as a server-side configuration failure, never a client error.
var ErrNotConfigured = fmt.Errorf("payment gateway credentials not configured")

// AmountBelowMinimumError rejects an intent before any network call is made.
type AmountBelowMinimumError struct {
	Amount  int64
	Minimum int64
}

func (e AmountBelowMinimumError) Error() string {
	return fmt.Sprintf("order amount %d below minimum %d", e.Amount, e.Minimum)
}

// GatewayError carries the upstream error description from a non-2xx response.
type GatewayError struct {
	StatusCode  int
	Description string
}

func (e GatewayError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("gateway error (%d)", e.StatusCode)
}

// Intent is the provisional gateway order the customer completes payment
// against. Amount is integer paise.
type Intent struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	minAmount  int64
	httpClient *http.Client
}

func NewClient(keyID, keySecret, baseURL string, minAmount int64) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		minAmount: minAmount,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.keyID != "" && c.keySecret != ""
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Error    struct {
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers a payment intent with the gateway. The minimum-amount
// check runs before the request goes out.
func (c *Client) CreateOrder(ctx context.Context, amount int64, receipt string) (Intent, error) {
	if !c.Configured() {
		return Intent{}, ErrNotConfigured
	}
	if amount < c.minAmount {
		return Intent{}, AmountBelowMinimumError{Amount: amount, Minimum: c.minAmount}
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return Intent{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Intent{}, GatewayError{Description: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Intent{}, GatewayError{StatusCode: resp.StatusCode, Description: "unreadable response"}
	}

	var parsed createOrderResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Intent{}, GatewayError{StatusCode: resp.StatusCode, Description: "malformed response"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Intent{}, GatewayError{StatusCode: resp.StatusCode, Description: parsed.Error.Description}
	}
	if parsed.ID == "" {
		return Intent{}, GatewayError{StatusCode: resp.StatusCode, Description: "missing order id in response"}
	}

	return Intent{
		GatewayOrderID: parsed.ID,
		Amount:         parsed.Amount,
		Currency:       parsed.Currency,
	}, nil
}

// VerifySignature checks the callback HMAC: SHA256 over
// "<gatewayOrderId>|<gatewayPaymentId>" keyed by the secret, hex encoded.
// The expected value is compared in constant time and never returned or
// logged, so a mismatch leaks nothing to the caller.
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, supplied string) bool {
	if c.keySecret == "" || supplied == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", gatewayOrderID, gatewayPaymentID)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(supplied))
}
