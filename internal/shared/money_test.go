package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentZeroWhole(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.True(t, Percent(decimal.NewFromInt(5), decimal.NewFromInt(-1)).IsZero())
	assert.Equal(t, "60", Percent(decimal.NewFromInt(600), decimal.NewFromInt(1000)).String())
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":           "0",
		"RM 1,250.5": "1250.5",
		" 15.00 ":    "15",
		"abc":        "0",
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAmount(in).String(), in)
	}
}

func TestStrictAmount(t *testing.T) {
	d, err := StrictAmount("RM 1,250.50")
	require.NoError(t, err)
	assert.Equal(t, "1250.5", d.String())

	for _, bad := range []string{"", "   ", "abc", "15,00.x", "RM"} {
		_, err := StrictAmount(bad)
		assert.ErrorIs(t, err, ErrMalformedAmount, bad)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "RM 150.00", FormatAmount(decimal.NewFromInt(150)))
}

func TestFormatAmountGrouped(t *testing.T) {
	assert.Equal(t, "RM 12,345.50", FormatAmountGrouped(decimal.RequireFromString("12345.5")))
	assert.Equal(t, "RM 0.00", FormatAmountGrouped(decimal.Zero))
}
