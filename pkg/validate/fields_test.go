package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/gearshare-backend/pkg/errors"
)

func TestErrorsReportsEveryField(t *testing.T) {
	var v Errors
	v.Required("name", "  ")
	v.PositiveDecimal("pricePerDay", "0")
	v.MinInt("quantity", "abc", 1)
	v.Date("availableFrom", "")

	require.False(t, v.Empty())
	err := v.Err()
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Len(t, details, 4)
	assert.Equal(t, "pricePerDay must be greater than 0", details["pricePerDay"])
	assert.Equal(t, "quantity must be a whole number", details["quantity"])
	assert.True(t, v.Has("name"))
	assert.Contains(t, pkgerrors.As(err).Message(), "availableFrom, name, pricePerDay, quantity")
}

func TestErrorsEmptyWhenValid(t *testing.T) {
	var v Errors
	assert.Equal(t, "tent", v.Required("name", " tent "))
	assert.Equal(t, "12.5", v.PositiveDecimal("price", "12.50").String())
	assert.Equal(t, 3, v.MinInt("quantity", "3", 1))
	assert.False(t, v.OptionalPositiveDecimal("discount", "").Valid)

	d, ok := v.Date("from", "2024-01-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d)

	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())
}

func TestParseDateAcceptsRFC3339(t *testing.T) {
	got, err := ParseDate("2024-01-03T10:00:00+07:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 3, 3, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("03/01/2024")
	assert.Error(t, err)
}

func TestPositiveDecimalFitsMoneyColumn(t *testing.T) {
	cases := map[string]string{
		"12.345":      "price must have at most 2 decimal places",
		"10000000000": "price must not exceed 9999999999.99",
		"1e12":        "price must not exceed 9999999999.99",
		"-0.01":       "price must be greater than 0",
	}
	for input, want := range cases {
		var v Errors
		v.PositiveDecimal("price", input)
		details, ok := pkgerrors.As(v.Err()).Details().(map[string]string)
		require.True(t, ok, input)
		assert.Equal(t, want, details["price"], input)
	}

	var v Errors
	assert.True(t, v.PositiveDecimal("price", "9999999999.99").Equal(MaxAmount))
	assert.Equal(t, "12.3", v.PositiveDecimal("price", "12.300").String())
	assert.True(t, v.Empty())
}
