package engine

import (
	"errors"

	"bondbook/internal/common"
	"bondbook/internal/refprice"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateOrderID       = errors.New("duplicate order id")
	ErrInvalidOrderParameters = errors.New("invalid order parameters")

	// Reference price errors come from the feed; re-exported so callers only
	// need this package.
	ErrNoReferencePrice      = refprice.ErrNoReferencePrice
	ErrInvalidReferencePrice = refprice.ErrInvalidReferencePrice
)

// ReferencePrices is the external valuation consulted by matching. A bid may
// only trade if it is at or above Current().
//
// Implementations are only ever called with the book lock held, so they need
// no locking of their own.
type ReferencePrices interface {
	Replace(snapshot []decimal.Decimal)
	Current() (decimal.Decimal, error)
}

// Reporter observes every match. ReportTrade is called synchronously, in match
// order, while the book lock is held: it must not call back into the book.
type Reporter interface {
	ReportTrade(trade common.Trade)
}
