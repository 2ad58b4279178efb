package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priced struct {
	Price decimal.Decimal  `validate:"decimal_gte0"`
	Fee   *decimal.Decimal `validate:"omitempty,decimal_gte0"`
}

type hours struct {
	Opening string `validate:"clock"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterOn(v))
	return v
}

func TestDecimalNonNegative(t *testing.T) {
	v := newValidator(t)
	neg := decimal.NewFromInt(-1)
	fee := decimal.RequireFromString("0.50")

	assert.NoError(t, v.Struct(priced{Price: decimal.Zero}))
	assert.NoError(t, v.Struct(priced{Price: decimal.RequireFromString("12.34"), Fee: &fee}))
	assert.Error(t, v.Struct(priced{Price: decimal.RequireFromString("-0.01")}))
	assert.Error(t, v.Struct(priced{Price: decimal.Zero, Fee: &neg}))
}

func TestClock(t *testing.T) {
	v := newValidator(t)

	for _, ok := range []string{"06:00", "23:59", "22:30:00"} {
		assert.NoError(t, v.Struct(hours{Opening: ok}), ok)
	}
	for _, bad := range []string{"", "24:00", "6pm", "12:60", "12"} {
		assert.Error(t, v.Struct(hours{Opening: bad}), bad)
	}
}
