// Package refprice holds the externally computed reference prices that gate
// matching in the order book.
package refprice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNoReferencePrice      = errors.New("no reference price")
	ErrInvalidReferencePrice = errors.New("invalid reference price")
)

// Snapshot is an ordered set of reference prices, as produced by a pricer.
type Snapshot []decimal.Decimal

// Validate checks that every entry is strictly positive.
func (s Snapshot) Validate() error {
	for i, price := range s {
		if !price.IsPositive() {
			return fmt.Errorf("%w: entry %d is %s", ErrInvalidReferencePrice, i, price)
		}
	}
	return nil
}

// Feed stores the latest snapshot and exposes one designated entry of it as
// the current reference price.
//
// Feed is not safe for concurrent use. The order book guards it with its own
// lock.
type Feed struct {
	snapshot Snapshot
	index    int
}

// NewFeed creates an empty feed that reads the snapshot entry at index.
func NewFeed(index int) *Feed {
	if index < 0 {
		index = 0
	}
	return &Feed{index: index}
}

// Replace swaps the snapshot wholesale. The slice is copied so that the
// producer may reuse its buffer.
func (f *Feed) Replace(snapshot []decimal.Decimal) {
	f.snapshot = append(Snapshot(nil), snapshot...)
}

// Current returns the designated reference price, or ErrNoReferencePrice when
// the snapshot does not hold it.
func (f *Feed) Current() (decimal.Decimal, error) {
	if f.index >= len(f.snapshot) {
		return decimal.Decimal{}, fmt.Errorf(
			"%w: snapshot has %d entries, want index %d",
			ErrNoReferencePrice, len(f.snapshot), f.index,
		)
	}
	return f.snapshot[f.index], nil
}

// Len returns the number of prices in the current snapshot.
func (f *Feed) Len() int {
	return len(f.snapshot)
}
