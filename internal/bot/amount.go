package bot

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"steam-topup-bot/pkg/funpay"
)

// Amount extraction heuristics: the structured quantity field first, then
// labeled patterns in the listing text, then the first number found anywhere.

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:количеств(?:о|о:)|кол-во|кол:)\D{0,60}?(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?:amount|quantity|qty)\D{0,60}?(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?:пополнение|пополнен|wallet|steam_wallet)\D{0,60}?(\d+(?:[.,]\d+)?)`),
	// RE2's \b is ASCII-only, so the Cyrillic units carry an explicit
	// boundary class instead.
	regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:(?:uah|rub|kzt|usd)\b|(?:грн|руб|тенге)(?:[^а-яё]|$)|[$₽₸])`),
}

var firstNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ExtractAmount determines the purchase quantity for an order. The second
// return names the source of the value for logging.
func ExtractAmount(o *funpay.Order) (decimal.Decimal, string, error) {
	if o.Quantity != nil && o.Quantity.IsPositive() {
		return *o.Quantity, "field:quantity", nil
	}

	text := o.FullText()
	if strings.TrimSpace(text) == "" {
		return decimal.Zero, "", ErrAmountUndetermined
	}

	for i, pat := range amountPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, err := parseNumber(m[1]); err == nil {
			return v, "pattern:" + patternNames[i], nil
		}
	}

	if m := firstNumber.FindString(text); m != "" {
		if v, err := parseNumber(m); err == nil {
			return v, "text:first_number", nil
		}
	}

	return decimal.Zero, "", ErrAmountUndetermined
}

var patternNames = []string{"label_ru", "label_en", "wallet", "currency_suffix"}

func parseNumber(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}
