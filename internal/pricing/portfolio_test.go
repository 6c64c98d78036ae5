package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPortfolio(n int) []Bond {
	bonds := make([]Bond, n)
	for i := range bonds {
		bonds[i] = Bond{
			FaceValue:       float64(500 + 100*(i%20)),
			CouponRate:      0.01 * float64(i%8),
			YieldToMaturity: 0.03 + 0.005*float64(i%9),
			YearsToMaturity: 1 + i%30,
		}
	}
	return bonds
}

func TestPricePortfolio_MatchesSequential(t *testing.T) {
	bonds := testPortfolio(1000)

	prices, err := PricePortfolio(context.Background(), bonds, 8)
	require.NoError(t, err)
	require.Len(t, prices, len(bonds))

	for i, bond := range bonds {
		want := decimal.NewFromFloat(bond.Price()).Round(2)
		assert.True(t, want.Equal(prices[i]), "bond %d: want %s got %s", i, want, prices[i])
	}
}

func TestPricePortfolio_WorkerCounts(t *testing.T) {
	bonds := testPortfolio(37)
	want, err := PricePortfolio(context.Background(), bonds, 1)
	require.NoError(t, err)

	for _, workers := range []int{0, 3, 64} {
		got, err := PricePortfolio(context.Background(), bonds, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestPricePortfolio_Empty(t *testing.T) {
	prices, err := PricePortfolio(context.Background(), nil, 4)
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestPricePortfolio_InvalidBond(t *testing.T) {
	bonds := testPortfolio(500)
	bonds[250].FaceValue = 0

	_, err := PricePortfolio(context.Background(), bonds, 4)
	assert.ErrorIs(t, err, ErrInvalidBond)
}

func TestPricePortfolio_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PricePortfolio(ctx, testPortfolio(10), 2)
	assert.ErrorIs(t, err, context.Canceled)
}
