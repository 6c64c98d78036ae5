// Package traders generates synthetic order flow around the reference price.
package traders

import (
	"errors"
	"math/rand"
	"time"

	"bondbook/internal/common"
	"bondbook/internal/engine"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	defaultPace   = 50 * time.Millisecond
	defaultSpread = 0.01
	defaultMaxQty = 100
	maxLiveOrders = 50
	cancelChance  = 0.15
	modifyChance  = 0.15
	pricePlaces   = 2
)

// Book is the part of the order book a trader uses.
type Book interface {
	AddOrder(price decimal.Decimal, quantity uint64, id string, side common.Side) error
	CancelOrder(id string)
	ModifyOrder(newPrice decimal.Decimal, newQuantity uint64, id string, side common.Side) error
	ReferencePrice() (decimal.Decimal, error)
}

type order struct {
	id   string
	side common.Side
}

// Trader places, modifies and cancels random limit orders priced within a
// spread of the current reference price.
type Trader struct {
	name   string
	book   Book
	rng    *rand.Rand
	pace   time.Duration
	spread float64
	maxQty int
	logger zerolog.Logger

	// Orders this trader may still have resting. Filled ones are not pruned;
	// cancelling or modifying them is a no-op.
	live []order
}

type Option func(*Trader)

func WithPace(pace time.Duration) Option {
	return func(tr *Trader) {
		tr.pace = pace
	}
}

// WithSpread sets how far from the reference price orders are placed, as a
// fraction of it.
func WithSpread(spread float64) Option {
	return func(tr *Trader) {
		tr.spread = spread
	}
}

func WithSeed(seed int64) Option {
	return func(tr *Trader) {
		tr.rng = rand.New(rand.NewSource(seed))
	}
}

func New(name string, book Book, opts ...Option) *Trader {
	tr := &Trader{
		name:   name,
		book:   book,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		pace:   defaultPace,
		spread: defaultSpread,
		maxQty: defaultMaxQty,
	}
	for _, opt := range opts {
		opt(tr)
	}
	tr.logger = log.With().Str("trader", name).Logger()
	return tr
}

// Step performs a single random action against the book. Nothing is done while
// the book has no reference price.
func (tr *Trader) Step() error {
	reference, err := tr.book.ReferencePrice()
	if errors.Is(err, engine.ErrNoReferencePrice) {
		return nil
	}
	if err != nil {
		return err
	}

	roll := tr.rng.Float64()
	switch {
	case len(tr.live) > 0 && roll < cancelChance:
		i := tr.rng.Intn(len(tr.live))
		tr.book.CancelOrder(tr.live[i].id)
		tr.forget(i)
		return nil
	case len(tr.live) > 0 && roll < cancelChance+modifyChance:
		o := tr.live[tr.rng.Intn(len(tr.live))]
		return tolerateUnmatched(tr.book.ModifyOrder(tr.quote(reference), tr.quantity(), o.id, o.side))
	}

	o := order{id: uuid.NewString(), side: common.Side(tr.rng.Intn(2))}
	if err := tolerateUnmatched(tr.book.AddOrder(tr.quote(reference), tr.quantity(), o.id, o.side)); err != nil {
		return err
	}

	tr.live = append(tr.live, o)
	if len(tr.live) > maxLiveOrders {
		tr.book.CancelOrder(tr.live[0].id)
		tr.forget(0)
	}
	return nil
}

// Run steps at the trader's pace until the tomb starts dying.
func (tr *Trader) Run(t *tomb.Tomb) error {
	ticker := time.NewTicker(tr.pace)
	defer ticker.Stop()

	for {
		select {
		case <-t.Dying():
			tr.logger.Debug().Int("live", len(tr.live)).Msg("trader stopping")
			return nil
		case <-ticker.C:
			if err := tr.Step(); err != nil {
				tr.logger.Error().Err(err).Msg("trader exiting")
				return err
			}
		}
	}
}

// tolerateUnmatched drops the error for an order that was accepted but could
// not be matched because the reference price was cleared after we read it.
func tolerateUnmatched(err error) error {
	if errors.Is(err, engine.ErrNoReferencePrice) {
		return nil
	}
	return err
}

func (tr *Trader) quote(reference decimal.Decimal) decimal.Decimal {
	offset := decimal.NewFromFloat(tr.spread * (2*tr.rng.Float64() - 1))
	price := reference.Add(reference.Mul(offset)).Round(pricePlaces)
	if !price.IsPositive() {
		return reference
	}
	return price
}

func (tr *Trader) quantity() uint64 {
	return uint64(1 + tr.rng.Intn(tr.maxQty))
}

func (tr *Trader) forget(i int) {
	tr.live = append(tr.live[:i], tr.live[i+1:]...)
}
