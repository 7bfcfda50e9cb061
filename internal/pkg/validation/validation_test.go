package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseRegistryNumber(t *testing.T) {
	for in, want := range map[string]int64{"123": 123, " MC 123 ": 123, "mc-0456": 456, "DOT7": 7} {
		got, ok := ParseRegistryNumber(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "abc", "0", "-5", "12.5", "mc", "1234567890123"} {
		_, ok := ParseRegistryNumber(in)
		assert.False(t, ok, in)
	}
}

func TestIsValidAmount(t *testing.T) {
	assert.True(t, IsValidAmount(decimal.RequireFromString("8000")))
	assert.True(t, IsValidAmount(decimal.RequireFromString("12345.90")))
	assert.True(t, IsValidAmount(decimal.RequireFromString("0.01")))
	assert.False(t, IsValidAmount(decimal.Zero))
	assert.False(t, IsValidAmount(decimal.RequireFromString("-1")))
	assert.False(t, IsValidAmount(decimal.RequireFromString("1.005")))
}

func TestParseBoundedInt(t *testing.T) {
	n, ok := ParseBoundedInt("", 10, 1, 100)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	n, ok = ParseBoundedInt("100", 10, 1, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, n)

	for _, in := range []string{"0", "101", "ten", "-1"} {
		_, ok = ParseBoundedInt(in, 10, 1, 100)
		assert.False(t, ok, in)
	}
}
