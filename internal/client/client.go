package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Alexdat2000/scooterload/internal/tracing"
)

// maxBodyBytes bounds how much of a response body is retained for id
// extraction and error reporting.
const maxBodyBytes = 1 << 20

const healthTimeout = 5 * time.Second

// Response is the status line and bounded body of one service reply.
// Classification of the status code is the caller's job.
type Response struct {
	Status int
	Body   []byte
}

// Client wraps one persistent HTTP session against the rental service. Every
// load worker owns its own Client, including the underlying transport, so no
// two workers ever share a connection pool.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for the given base URL with a per-request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	// One dedicated transport per client. A worker issues requests strictly
	// sequentially, so a couple of idle connections is enough.
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// BaseURL reports the normalized base URL this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateOffer calls POST /offers for the user/scooter pair.
func (c *Client) CreateOffer(ctx context.Context, userID, scooterID string) (Response, error) {
	body := struct {
		UserID    string `json:"user_id"`
		ScooterID string `json:"scooter_id"`
	}{UserID: userID, ScooterID: scooterID}
	return c.post(ctx, "/offers", body)
}

// CreateOrder calls POST /orders, converting the offer into an order.
func (c *Client) CreateOrder(ctx context.Context, orderID, offerID, userID string) (Response, error) {
	body := struct {
		OrderID string `json:"order_id"`
		OfferID string `json:"offer_id"`
		UserID  string `json:"user_id"`
	}{OrderID: orderID, OfferID: offerID, UserID: userID}
	return c.post(ctx, "/orders", body)
}

// GetOrder calls GET /orders/{order_id}.
func (c *Client) GetOrder(ctx context.Context, orderID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/orders/"+orderID, nil)
}

// FinishOrder calls POST /orders/{order_id}/finish. The service answers 200
// for a fresh finish and 409 when the order is already finished.
func (c *Client) FinishOrder(ctx context.Context, orderID string) (Response, error) {
	return c.do(ctx, http.MethodPost, "/orders/"+orderID+"/finish", nil)
}

// Healthy reports whether GET /health answers 200 within its own short
// budget. Any transport error counts as unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err == nil && resp.Status == http.StatusOK
}

// CloseIdleConnections releases the worker's kept-alive connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) post(ctx context.Context, path string, payload any) (Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encode %s body: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, encoded)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.InjectHTTPHeaders(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", path, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return Response{Status: resp.StatusCode, Body: data}, nil
}
