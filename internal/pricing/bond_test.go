package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBondPrice(t *testing.T) {
	tests := []struct {
		name string
		bond Bond
		want float64
	}{
		{"par bond prices at face", Bond{1000, 0.05, 0.05, 5}, 1000},
		{"zero coupon", Bond{1000, 0, 0.10, 2}, 826.4462809917354},
		{"discount bond", Bond{2000, 0.03, 0.05, 10}, 1691.1306028326069},
		{"premium bond", Bond{500, 0.08, 0.06, 2}, 518.3339266642932},
		{"matured", Bond{1000, 0.05, 0.05, 0}, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.bond.Validate())
			assert.InDelta(t, tt.want, tt.bond.Price(), 1e-6)
		})
	}
}

func TestBondPrice_FallsAsYieldRises(t *testing.T) {
	low := Bond{1000, 0.05, 0.03, 10}
	high := Bond{1000, 0.05, 0.07, 10}
	assert.Greater(t, low.Price(), high.Price())
}

func TestBondValidate(t *testing.T) {
	assert.ErrorIs(t, Bond{0, 0.05, 0.05, 5}.Validate(), ErrInvalidBond)
	assert.ErrorIs(t, Bond{1000, -0.01, 0.05, 5}.Validate(), ErrInvalidBond)
	assert.ErrorIs(t, Bond{1000, 0.05, -1, 5}.Validate(), ErrInvalidBond)
	assert.ErrorIs(t, Bond{1000, 0.05, 0.05, -1}.Validate(), ErrInvalidBond)
}

func TestGeneratePortfolio(t *testing.T) {
	bonds := GeneratePortfolio(200, rand.New(rand.NewSource(3)))
	assert.Len(t, bonds, 200)
	for _, bond := range bonds {
		assert.NoError(t, bond.Validate())
		assert.GreaterOrEqual(t, bond.CouponRate, 0.02)
		assert.Less(t, bond.CouponRate, 0.08)
		assert.GreaterOrEqual(t, bond.YearsToMaturity, 1)
		assert.LessOrEqual(t, bond.YearsToMaturity, 30)
	}
}
