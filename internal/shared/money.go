package shared

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyPrefix is printed in front of amounts on rendered documents.
const CurrencyPrefix = "RM"

var hundred = decimal.NewFromInt(100)

// RoundCents rounds an amount to two decimals.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// FormatAmount renders "RM 1234.50".
func FormatAmount(d decimal.Decimal) string {
	return CurrencyPrefix + " " + d.StringFixed(2)
}

// ErrMalformedAmount is returned by StrictAmount for blank or non-numeric input.
var ErrMalformedAmount = errors.New("amount must be a decimal number")

func cleanAmount(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, CurrencyPrefix)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strings.TrimSpace(cleaned)
}

// ParseAmount parses a loosely formatted amount, treating blanks and garbage as
// zero. Only imported spreadsheet cells go through it.
func ParseAmount(raw string) decimal.Decimal {
	d, err := StrictAmount(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// StrictAmount parses request input. An optional "RM" prefix and thousands
// separators are accepted; anything else fails with ErrMalformedAmount.
func StrictAmount(raw string) (decimal.Decimal, error) {
	cleaned := cleanAmount(raw)
	if cleaned == "" {
		return decimal.Zero, ErrMalformedAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	return d, nil
}

var groupedPrinter = message.NewPrinter(language.English)

// FormatAmountGrouped renders "RM 12,345.50" with thousands separators.
func FormatAmountGrouped(d decimal.Decimal) string {
	return CurrencyPrefix + " " + groupedPrinter.Sprintf("%.2f", d.Round(2).InexactFloat64())
}
