package funpay

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Order is a marketplace purchase as delivered by the gateway. Identifier
// fields are already normalized to canonical decimal strings.
type Order struct {
	ID         string
	BuyerID    string
	ChatID     string
	CategoryID string

	Title       string
	Description string
	HTML        string

	// Quantity is the structured purchase amount, when the listing form
	// collected one.
	Quantity *decimal.Decimal
}

// DescriptionText returns the first non-empty descriptive field, lowercased.
func (o *Order) DescriptionText() string {
	for _, v := range []string{o.Description, o.HTML, o.Title} {
		if strings.TrimSpace(v) != "" {
			return strings.ToLower(v)
		}
	}
	return ""
}

// FullText joins every textual field for pattern searches, lowercased.
func (o *Order) FullText() string {
	parts := make([]string, 0, 3)
	for _, v := range []string{o.HTML, o.Title, o.Description} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Message is one inbound chat message.
type Message struct {
	ChatID   string
	AuthorID string
	Text     string
}

// Event is a single update from the marketplace feed.
type Event interface {
	event()
}

type NewOrderEvent struct {
	OrderID string
}

type NewMessageEvent struct {
	Message Message
}

func (NewOrderEvent) event()   {}
func (NewMessageEvent) event() {}

// ListingRef identifies one listing in a catalog category.
type ListingRef struct {
	ID string
}

// OrderLink is the buyer-visible page for an order.
func OrderLink(orderID string) string {
	return "https://funpay.com/orders/" + orderID + "/"
}

// NormalizeID coerces a raw identifier to its canonical decimal form.
// Numeric ids lose leading zeros and surrounding whitespace; anything else
// is returned trimmed. Lookup keys built from ids stay stable regardless of
// the upstream event's native representation.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// wireID accepts either a JSON string or number and normalizes it.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = wireID(NormalizeID(n.String()))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*id = wireID(NormalizeID(s))
	return nil
}

func (id wireID) String() string {
	return string(id)
}

type orderPayload struct {
	ID            wireID   `json:"id"`
	BuyerID       wireID   `json:"buyer_id"`
	ChatID        wireID   `json:"chat_id"`
	SubcategoryID wireID   `json:"subcategory_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	HTML          string   `json:"html"`
	Quantity      *float64 `json:"quantity"`
}

func (p *orderPayload) toOrder() *Order {
	o := &Order{
		ID:          p.ID.String(),
		BuyerID:     p.BuyerID.String(),
		ChatID:      p.ChatID.String(),
		CategoryID:  p.SubcategoryID.String(),
		Title:       p.Title,
		Description: p.Description,
		HTML:        p.HTML,
	}
	if p.Quantity != nil {
		q := decimal.NewFromFloat(*p.Quantity)
		o.Quantity = &q
	}
	return o
}

type messagePayload struct {
	ChatID   wireID `json:"chat_id"`
	AuthorID wireID `json:"author_id"`
	Text     string `json:"text"`
}

func (p *messagePayload) toMessage() Message {
	return Message{
		ChatID:   p.ChatID.String(),
		AuthorID: p.AuthorID.String(),
		Text:     p.Text,
	}
}
