package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Parallel()

	t.Run("hex address is lower-cased", func(t *testing.T) {
		addr, err := ParseAddress("  0xAbCdEF0123  ")
		require.NoError(t, err)
		assert.Equal(t, Address("0xabcdef0123"), addr)
	})

	t.Run("plain identity kept as is", func(t *testing.T) {
		addr, err := ParseAddress("Deployer")
		require.NoError(t, err)
		assert.Equal(t, Address("Deployer"), addr)
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := ParseAddress("   ")
		assert.True(t, errors.Is(err, ErrInvalidAddress))
	})

	t.Run("inner whitespace rejected", func(t *testing.T) {
		_, err := ParseAddress("0x12 34")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("too long rejected", func(t *testing.T) {
		_, err := ParseAddress(strings.Repeat("a", MaxAddressLength+1))
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateAmount(decimal.Zero))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.1")))
	assert.ErrorIs(t, ValidateAmount(decimal.NewFromInt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("1000000000.5")), ErrAmountTooLarge)
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.000000000000000001")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("1.500000000000000000000")))
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("0.0000000000000000001")), ErrAmountTooPrecise)
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("0.0000000000000000001")), ErrInvalidAmount)
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -5)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ValidatePagination(5000, 10)
	assert.Equal(t, 1000, limit)
	assert.Equal(t, 10, offset)
}
