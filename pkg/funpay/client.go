package funpay

// MARKETPLACE GATEWAY CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetOrder loads the full order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &payload); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return payload.toOrder(), nil
}

// SendMessage posts a chat message to the buyer.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	req := struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}{chatID, text}
	if err := c.do(ctx, http.MethodPost, "/messages", req, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// RefundOrder reverses a marketplace order.
func (c *Client) RefundOrder(ctx context.Context, orderID string) error {
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/refund", struct{}{}, nil); err != nil {
		return fmt.Errorf("refund order %s: %w", orderID, err)
	}
	return nil
}

// CompleteOrder marks a marketplace order as fulfilled.
func (c *Client) CompleteOrder(ctx context.Context, orderID string) error {
	if err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/complete", struct{}{}, nil); err != nil {
		return fmt.Errorf("complete order %s: %w", orderID, err)
	}
	return nil
}

// ListingsByCategory enumerates the seller's listings in a catalog category.
func (c *Client) ListingsByCategory(ctx context.Context, categoryID string) ([]ListingRef, error) {
	var payload struct {
		Lots []struct {
			ID wireID `json:"id"`
		} `json:"lots"`
	}
	if err := c.do(ctx, http.MethodGet, "/lots?category="+url.QueryEscape(categoryID), nil, &payload); err != nil {
		return nil, fmt.Errorf("list category %s: %w", categoryID, err)
	}
	refs := make([]ListingRef, 0, len(payload.Lots))
	for _, lot := range payload.Lots {
		refs = append(refs, ListingRef{ID: lot.ID.String()})
	}
	return refs, nil
}

// ListingFields reads the mutable fields of one listing. The gateway may
// answer with either the form-map or the typed-record shape.
func (c *Client) ListingFields(ctx context.Context, listingID string) (ListingFields, error) {
	var payload struct {
		ID     wireID            `json:"id"`
		Active *bool             `json:"active"`
		Title  string            `json:"title"`
		Price  float64           `json:"price"`
		Fields map[string]string `json:"fields"`
	}
	if err := c.do(ctx, http.MethodGet, "/lots/"+url.PathEscape(listingID)+"/fields", nil, &payload); err != nil {
		return nil, fmt.Errorf("get listing fields %s: %w", listingID, err)
	}

	id := payload.ID.String()
	if id == "" {
		id = listingID
	}
	if payload.Fields != nil {
		return NewFormFields(id, payload.Fields), nil
	}
	return &LotFields{
		ID:     id,
		Active: payload.Active != nil && *payload.Active,
		Title:  payload.Title,
		Price:  payload.Price,
	}, nil
}

// SaveListing persists listing fields back through the gateway.
func (c *Client) SaveListing(ctx context.Context, fields ListingFields) error {
	var body any
	switch f := fields.(type) {
	case *FormFields:
		body = struct {
			Fields map[string]string `json:"fields"`
		}{f.Values}
	case *LotFields:
		body = f
	default:
		return fmt.Errorf("save listing %s: unsupported fields representation %T", fields.ListingID(), fields)
	}
	if err := c.do(ctx, http.MethodPut, "/lots/"+url.PathEscape(fields.ListingID())+"/fields", body, nil); err != nil {
		return fmt.Errorf("save listing %s: %w", fields.ListingID(), err)
	}
	return nil
}

// getUpdates pulls the next batch of feed events after cursor.
func (c *Client) getUpdates(ctx context.Context, cursor string) ([]Event, string, error) {
	path := "/updates"
	if cursor != "" {
		path += "?cursor=" + url.QueryEscape(cursor)
	}

	var payload struct {
		Cursor string `json:"cursor"`
		Events []struct {
			Type    string          `json:"type"`
			OrderID wireID          `json:"order_id"`
			Message *messagePayload `json:"message"`
		} `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, cursor, fmt.Errorf("get updates: %w", err)
	}

	events := make([]Event, 0, len(payload.Events))
	for _, ev := range payload.Events {
		switch ev.Type {
		case "new_order":
			events = append(events, NewOrderEvent{OrderID: ev.OrderID.String()})
		case "new_message":
			if ev.Message == nil {
				continue
			}
			events = append(events, NewMessageEvent{Message: ev.Message.toMessage()})
		default:
			c.logger.Debug("Unknown feed event type, skipping", zap.String("type", ev.Type))
		}
	}
	return events, payload.Cursor, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
