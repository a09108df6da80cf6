package steamapi

// STEAM TOP-UP PROVIDER CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Client talks to the top-up provider. All calls are JSON over HTTPS with a
// bearer token. The token is shared with the background refresh task, so
// reads and writes go through a mutex; a 401/403 response refreshes the
// token and retries the same call exactly once.
type Client struct {
	baseURL   string
	username  string
	password  string
	serviceID int

	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL, username, password string, serviceID int, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		username:  username,
		password:  password,
		serviceID: serviceID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Connect obtains the initial bearer token, retrying with exponential
// backoff so a briefly unavailable provider does not kill startup.
func (c *Client) Connect(ctx context.Context) error {
	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 1 * time.Minute

	return backoff.RetryNotify(
		func() error { return c.RefreshToken(ctx) },
		backoff.WithContext(retryPolicy, ctx),
		func(err error, d time.Duration) {
			c.logger.Warn("Provider auth failed, retrying",
				zap.Duration("retry_in", d),
				zap.Error(err))
		},
	)
}

// RefreshToken fetches a fresh bearer token and installs it.
func (c *Client) RefreshToken(ctx context.Context) error {
	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{c.username, c.password}

	status, body, err := c.send(ctx, "/token", payload, false)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if status != http.StatusOK {
		return &Error{Op: "token", Status: status, Kind: classify(status), Message: errorText(body)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("token: decode response: %w", err)
	}
	if out.AccessToken == "" {
		return &Error{Op: "token", Status: status, Kind: KindAuth, Message: "no access_token in response"}
	}

	c.mu.Lock()
	c.token = out.AccessToken
	c.mu.Unlock()

	c.logger.Info("Obtained provider API token")
	return nil
}

// CheckLogin reports whether the login exists on the provider side.
func (c *Client) CheckLogin(ctx context.Context, login string) (bool, error) {
	if login == "" {
		return false, nil
	}
	var out struct {
		Result bool `json:"result"`
	}
	payload := struct {
		Login string `json:"login"`
	}{login}
	if err := c.post(ctx, "check_login", "/check", payload, &out); err != nil {
		return false, err
	}
	c.logger.Info("Login check",
		zap.String("login", login),
		zap.Bool("found", out.Result))
	return out.Result, nil
}

// ConvertToUSD converts an order amount into the settlement currency.
// USD amounts need no remote call.
func (c *Client) ConvertToUSD(ctx context.Context, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if strings.EqualFold(currency, "USD") {
		return amount, nil
	}
	payload := struct {
		PrimaryCurrency string  `json:"primary_currency"`
		Amount          float64 `json:"amount"`
	}{strings.ToUpper(currency), amount.InexactFloat64()}

	var out struct {
		USDPrice float64 `json:"usd_price"`
	}
	if err := c.post(ctx, "rates", "/rates", payload, &out); err != nil {
		return decimal.Zero, err
	}
	if out.USDPrice <= 0 {
		return decimal.Zero, &Error{Op: "rates", Status: http.StatusOK, Kind: KindUnknown, Message: "no usd_price in response"}
	}
	return decimal.NewFromFloat(out.USDPrice), nil
}

// CreateOrder opens a payment intent under the given correlation id.
func (c *Client) CreateOrder(ctx context.Context, customID, login string, quantity decimal.Decimal) error {
	payload := struct {
		ServiceID int     `json:"service_id"`
		Quantity  float64 `json:"quantity"`
		CustomID  string  `json:"custom_id"`
		Data      string  `json:"data"`
	}{c.serviceID, quantity.Round(2).InexactFloat64(), customID, login}

	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := c.post(ctx, "create_order", "/create_order", payload, &out); err != nil {
		return err
	}
	// An HTTP 200 can still carry an embedded error payload.
	if out.Error != "" {
		return &Error{Op: "create_order", Status: http.StatusOK, Kind: KindUnknown, Message: out.Error}
	}
	c.logger.Info("Provider order created", zap.String("custom_id", customID))
	return nil
}

// PayOrder executes a previously created payment intent.
func (c *Client) PayOrder(ctx context.Context, customID string) error {
	payload := struct {
		CustomID string `json:"custom_id"`
	}{customID}
	if err := c.post(ctx, "pay_order", "/pay_order", payload, nil); err != nil {
		return err
	}
	c.logger.Info("Provider order paid", zap.String("custom_id", customID))
	return nil
}

// Balance reads the provider account balance in the settlement currency.
func (c *Client) Balance(ctx context.Context) (decimal.Decimal, error) {
	var out struct {
		Balance float64 `json:"balance"`
	}
	if err := c.post(ctx, "check_balance", "/check_balance", struct{}{}, &out); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(out.Balance), nil
}

// post sends one authorized call. An authorization rejection triggers a
// single token refresh and one resend; any other non-200 is classified.
func (c *Client) post(ctx context.Context, op, path string, payload, out any) error {
	status, body, err := c.send(ctx, path, payload, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.logger.Warn("Authorization rejected, refreshing token",
			zap.String("op", op),
			zap.Int("status", status))
		if err := c.RefreshToken(ctx); err != nil {
			return &Error{Op: op, Status: status, Kind: KindAuth, Message: "token refresh failed: " + err.Error()}
		}
		status, body, err = c.send(ctx, path, payload, true)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if status != http.StatusOK {
		apiErr := &Error{Op: op, Status: status, Kind: classify(status), Message: errorText(body)}
		c.logger.Error("Provider call failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("kind", apiErr.Kind.String()),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, path string, payload any, authorized bool) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.bearer())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorText pulls a human-readable error out of a failure payload.
func errorText(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, s := range []string{payload.Message, payload.Detail, payload.Error} {
			if s != "" {
				return s
			}
		}
	}
	if len(body) > 500 {
		body = body[:500]
	}
	return string(body)
}
