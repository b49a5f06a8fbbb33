package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyConstructors(t *testing.T) {
	t.Run("from decimal", func(t *testing.T) {
		fee := NewMoneyEGP(decimal.NewFromInt(1500))
		assert.True(t, fee.Amount().Equal(decimal.NewFromInt(1500)))
	})

	t.Run("from float", func(t *testing.T) {
		fee := NewMoneyEGPFromFloat(1250.50)
		assert.Equal(t, "1250.50", fee.StringFixed(2))
	})

	t.Run("from string", func(t *testing.T) {
		fee, err := NewMoneyEGPFromString("999.99")
		require.NoError(t, err)
		assert.Equal(t, "999.99", fee.StringFixed(2))
	})

	t.Run("from bad string", func(t *testing.T) {
		_, err := NewMoneyEGPFromString("one thousand")
		assert.Error(t, err)
	})

	t.Run("zero", func(t *testing.T) {
		assert.True(t, ZeroEGP().IsZero())
	})
}

func TestMoneySignPredicates(t *testing.T) {
	assert.True(t, NewMoneyEGPFromFloat(100).IsPositive())
	assert.True(t, NewMoneyEGPFromFloat(-100).IsNegative())
	assert.False(t, ZeroEGP().IsPositive())
	assert.False(t, ZeroEGP().IsNegative())
	assert.True(t, ZeroEGP().IsZero())
}

func TestMoneyComparisons(t *testing.T) {
	smaller := NewMoneyEGPFromFloat(500)
	larger := NewMoneyEGPFromFloat(1500)

	lt, err := smaller.LessThan(larger)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := larger.GreaterThan(smaller)
	require.NoError(t, err)
	assert.True(t, gt)

	lte, err := smaller.LessThanOrEqual(NewMoneyEGPFromFloat(500))
	require.NoError(t, err)
	assert.True(t, lte)

	gte, err := smaller.GreaterThanOrEqual(larger)
	require.NoError(t, err)
	assert.False(t, gte)

	t.Run("mixed currencies are rejected", func(t *testing.T) {
		dollars := Money{amount: decimal.NewFromInt(10), currency: "USD"}
		_, err := smaller.LessThan(dollars)
		assert.Error(t, err)
	})
}

func TestMoneyString(t *testing.T) {
	fee := NewMoneyEGPFromFloat(1234.5)
	assert.Equal(t, "1234.50 EGP", fee.String())
	assert.Equal(t, "1234.500", fee.StringFixed(3))
	assert.InDelta(t, 1234.5, fee.Float64(), 0.0001)
}

func TestMoneyJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		fee := NewMoneyEGPFromFloat(2500.75)

		raw, err := json.Marshal(fee)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"2500.75","currency":"EGP"}`, string(raw))

		var decoded Money
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.True(t, decoded.Amount().Equal(fee.Amount()))
	})

	t.Run("bad amount", func(t *testing.T) {
		var decoded Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"EGP"}`), &decoded)
		assert.Error(t, err)
	})
}

func TestMoneyScan(t *testing.T) {
	t.Run("from string column", func(t *testing.T) {
		var fee Money
		require.NoError(t, fee.Scan("1500.00"))
		assert.Equal(t, "1500.00", fee.StringFixed(2))
	})

	t.Run("from bytes", func(t *testing.T) {
		var fee Money
		require.NoError(t, fee.Scan([]byte("250.50")))
		assert.Equal(t, "250.50", fee.StringFixed(2))
	})

	t.Run("null column reads as zero", func(t *testing.T) {
		var fee Money
		require.NoError(t, fee.Scan(nil))
		assert.True(t, fee.IsZero())
	})

	t.Run("unsupported type", func(t *testing.T) {
		var fee Money
		assert.Error(t, fee.Scan(42))
	})
}

func TestMoneyValue(t *testing.T) {
	fee := NewMoneyEGPFromFloat(1500)
	v, err := fee.Value()
	require.NoError(t, err)
	assert.Equal(t, "1500", v)
}
