// Package pricing values a bond portfolio and publishes the results as
// reference prices for the order book.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var ErrInvalidBond = errors.New("invalid bond")

// Bond is a plain annual-coupon bond.
type Bond struct {
	FaceValue       float64
	CouponRate      float64 // Annual coupon as a fraction of face value
	YieldToMaturity float64 // Annual discount rate
	YearsToMaturity int
}

func (b Bond) Validate() error {
	switch {
	case !(b.FaceValue > 0):
		return fmt.Errorf("%w: face value %v", ErrInvalidBond, b.FaceValue)
	case b.CouponRate < 0:
		return fmt.Errorf("%w: coupon rate %v", ErrInvalidBond, b.CouponRate)
	case !(b.YieldToMaturity > -1):
		return fmt.Errorf("%w: yield %v", ErrInvalidBond, b.YieldToMaturity)
	case b.YearsToMaturity < 0:
		return fmt.Errorf("%w: %d years to maturity", ErrInvalidBond, b.YearsToMaturity)
	}
	return nil
}

// Price discounts every coupon and the final redemption at the bond's yield.
func (b Bond) Price() float64 {
	coupon := b.CouponRate * b.FaceValue
	discount := 1 + b.YieldToMaturity

	var price float64
	for year := 1; year <= b.YearsToMaturity; year++ {
		price += coupon / math.Pow(discount, float64(year))
	}
	return price + b.FaceValue/math.Pow(discount, float64(b.YearsToMaturity))
}

// GeneratePortfolio builds n bonds with a face value of 1000, coupons between
// 2% and 8%, maturities of 1 to 30 years and a 5% starting yield.
func GeneratePortfolio(n int, rng *rand.Rand) []Bond {
	bonds := make([]Bond, n)
	for i := range bonds {
		bonds[i] = Bond{
			FaceValue:       1000,
			CouponRate:      0.02 + rng.Float64()*0.06,
			YieldToMaturity: 0.05,
			YearsToMaturity: 1 + rng.Intn(30),
		}
	}
	return bonds
}
