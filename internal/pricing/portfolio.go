package pricing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	TASK_CHAN_SIZE = 100
	pricePlaces    = 2
)

// PricePortfolio prices every bond on a pool of workers. Prices come back in
// portfolio order, rounded to cents. The first invalid bond, or ctx being
// cancelled, stops the whole batch.
func PricePortfolio(ctx context.Context, bonds []Bond, workers int) ([]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("unable to price portfolio: %w", err)
	}
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, max(len(bonds), 1))

	prices := make([]decimal.Decimal, len(bonds))
	tasks := make(chan int, TASK_CHAN_SIZE)
	t, _ := tomb.WithContext(ctx)

	// Workers go first: the tomb must not run out of goroutines before the
	// feeder is added.
	for id := range workers {
		t.Go(func() error {
			return priceWorker(t, id, bonds, prices, tasks)
		})
	}

	t.Go(func() error {
		defer close(tasks)
		for i := range bonds {
			select {
			case <-t.Dying():
				return nil
			case tasks <- i:
			}
		}
		return nil
	})

	if err := t.Wait(); err != nil {
		return nil, fmt.Errorf("unable to price portfolio: %w", err)
	}
	return prices, nil
}

// priceWorker prices the bonds whose indexes arrive on tasks. Each index is
// handed to exactly one worker, so writes to prices never overlap.
func priceWorker(t *tomb.Tomb, id int, bonds []Bond, prices []decimal.Decimal, tasks <-chan int) error {
	for i := range tasks {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		bond := bonds[i]
		if err := bond.Validate(); err != nil {
			log.Error().Err(err).Int("id", id).Int("bond", i).Msg("worker exiting")
			return fmt.Errorf("bond %d: %w", i, err)
		}
		prices[i] = decimal.NewFromFloat(bond.Price()).Round(pricePlaces)
	}
	return nil
}
