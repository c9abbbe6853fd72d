package clob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the REST client for the CLOB order service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
}

// NewClient creates a CLOB REST client.
func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

// SubmitOrder posts a new order.
func (c *Client) SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode order request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/order", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("couldn't submit order %s: %w", req.ClientOrderID, err)
	}

	var out OrderResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("couldn't decode order response: %w", err)
	}
	if out.ErrorMsg != "" {
		return nil, fmt.Errorf("order service rejected %s: %s", req.ClientOrderID, out.ErrorMsg)
	}
	return &out, nil
}

// CancelOrder cancels by exchange order ID.
func (c *Client) CancelOrder(ctx context.Context, exchangeOrderID string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/order/"+exchangeOrderID, nil); err != nil {
		return fmt.Errorf("couldn't cancel order %s: %w", exchangeOrderID, err)
	}
	return nil
}

// GetOrder fetches current status by exchange order ID.
func (c *Client) GetOrder(ctx context.Context, exchangeOrderID string) (*OrderResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/order/"+exchangeOrderID, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't get order %s: %w", exchangeOrderID, err)
	}

	var out OrderResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("couldn't decode order status: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("X-Api-Secret", c.apiSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, data)
	}
	return data, nil
}
