package bot

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an order's source currency.
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUAH Currency = "UAH"
	CurrencyKZT Currency = "KZT"
	CurrencyUSD Currency = "USD"
)

var (
	ErrCurrencyMissing     = errors.New("currency marker missing")
	ErrCurrencyUnsupported = errors.New("unsupported currency")
	ErrAmountUndetermined  = errors.New("amount undetermined")
)

// walletMarker labels the currency token inside a listing description.
const walletMarker = "steam_wallet:"

// minAmounts is the minimum purchase per currency.
var minAmounts = map[Currency]decimal.Decimal{
	CurrencyRUB: decimal.NewFromInt(15),
	CurrencyKZT: decimal.NewFromInt(80),
	CurrencyUAH: decimal.NewFromInt(7),
	CurrencyUSD: decimal.RequireFromString("0.15"),
}

// ParseWalletCurrency extracts the currency code following the
// "steam_wallet:" marker in an order description. The match is
// case-insensitive.
func ParseWalletCurrency(text string) (Currency, error) {
	lowered := strings.ToLower(text)
	idx := strings.Index(lowered, walletMarker)
	if idx < 0 {
		return "", ErrCurrencyMissing
	}

	rest := strings.Fields(lowered[idx+len(walletMarker):])
	if len(rest) == 0 {
		return "", ErrCurrencyMissing
	}

	cur := Currency(strings.ToUpper(rest[0]))
	if _, ok := minAmounts[cur]; !ok {
		return cur, ErrCurrencyUnsupported
	}
	return cur, nil
}
