package bot

import (
	"context"

	"github.com/shopspring/decimal"

	"steam-topup-bot/pkg/funpay"
)

// Marketplace is the surface of the marketplace gateway the bot needs.
type Marketplace interface {
	GetOrder(ctx context.Context, orderID string) (*funpay.Order, error)
	SendMessage(ctx context.Context, chatID, text string) error
	RefundOrder(ctx context.Context, orderID string) error
	CompleteOrder(ctx context.Context, orderID string) error
	ListingsByCategory(ctx context.Context, categoryID string) ([]funpay.ListingRef, error)
	ListingFields(ctx context.Context, listingID string) (funpay.ListingFields, error)
	SaveListing(ctx context.Context, fields funpay.ListingFields) error
}

// Converter turns an order amount into the settlement currency.
type Converter interface {
	ConvertToUSD(ctx context.Context, currency string, amount decimal.Decimal) (decimal.Decimal, error)
}

// LoginChecker validates that a platform login exists.
type LoginChecker interface {
	CheckLogin(ctx context.Context, login string) (bool, error)
}

// Provider is the full top-up provider surface used by the payment path.
type Provider interface {
	Converter
	LoginChecker
	CreateOrder(ctx context.Context, customID, login string, quantity decimal.Decimal) error
	PayOrder(ctx context.Context, customID string) error
	Balance(ctx context.Context) (decimal.Decimal, error)
}
