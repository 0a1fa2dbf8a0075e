// Package donationapi is the HTTP client for the upstream donation backend:
// order creation, payment verification and the published gateway key. Order
// signing, webhooks and ledgering all live upstream; this client only speaks
// the request/response contract.
package donationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	BaseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError is a non-success answer from the backend. Message is the backend's
// own wording and is surfaced to the donor verbatim when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("donation api: status %d", e.Status)
}

type GuestDonor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateOrderRequest struct {
	// CampaignID scopes the order to a campaign; empty means a general donation.
	CampaignID  string      `json:"-"`
	Amount      int64       `json:"amount"`
	Message     string      `json:"message"`
	IsRecurring bool        `json:"isRecurring"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	GuestDonor  *GuestDonor `json:"guestDonor,omitempty"`
}

type MandateInfo struct {
	MaxAmount int64  `json:"maxAmount"`
	Frequency string `json:"frequency"`
	ExpireBy  int64  `json:"expireBy"`
}

type CreateOrderResponse struct {
	Success bool `json:"success"`
	Order   struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
	IsRecurring bool         `json:"isRecurring"`
	MandateInfo *MandateInfo `json:"mandateInfo,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// CreateOrder negotiates a payment order. Each call creates an independent
// order; the caller is responsible for not calling it twice per user action.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	path := "/api/donations/orders"
	if req.CampaignID != "" {
		path = "/api/campaigns/" + url.PathEscape(req.CampaignID) + "/orders"
	}
	var out CreateOrderResponse
	status, err := c.postJSON(ctx, path, req, &out)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if status < 200 || status >= 300 || !out.Success {
		return nil, &APIError{Status: status, Message: out.Message}
	}
	return &out, nil
}

type VerifyPaymentRequest struct {
	CampaignID  string `json:"-"`
	PaymentID   string `json:"razorpay_payment_id"`
	OrderID     string `json:"razorpay_order_id"`
	Signature   string `json:"razorpay_signature"`
	Amount      int64  `json:"amount"`
	Message     string `json:"message"`
	IsRecurring bool   `json:"isRecurring"`
	MandateID   string `json:"mandate_id,omitempty"`
}

type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Message   string `json:"message,omitempty"`
}

// VerifyPayment forwards the overlay's signed result for signature
// verification upstream, scoped the same way as order creation.
func (c *Client) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	path := "/api/donations/verify-payment"
	if req.CampaignID != "" {
		path = "/api/campaigns/" + url.PathEscape(req.CampaignID) + "/verify-payment"
	}
	var out VerifyPaymentResponse
	status, err := c.postJSON(ctx, path, req, &out)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if status < 200 || status >= 300 || !out.Success {
		return nil, &APIError{Status: status, Message: out.Message}
	}
	return &out, nil
}

// GatewayKey fetches the published checkout key. The key is public, not a
// secret; its prefix decides sandbox vs production behavior.
func (c *Client) GatewayKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/config/gateway-key", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway key: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gateway key: %d %s", resp.StatusCode, string(body))
	}
	var out struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Key, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
