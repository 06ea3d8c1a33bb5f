package pipeline

import (
	"context"
	"fmt"

	"github.com/libops/payrecon/internal/domain"
	"golang.org/x/sync/errgroup"
)

// feeStatuses are the ledger's fee partitions. A payment can live in any of
// them by the time a settled batch is reconciled, so all four are queried.
var feeStatuses = []string{"ACTIVE", "CLOSED", "EXPORTED", "INDISPUTE"}

//go:generate mockgen -source=feelookup.go -destination=feelookup_mock.go -package=pipeline
type LedgerClient interface {
	GetUser(ctx context.Context, userID string) (*domain.LedgerUser, error)
	GetFees(ctx context.Context, userID, status string) ([]domain.Fee, error)
}

// FeeLookup assembles a user's complete fee set keyed by fee id.
type FeeLookup struct {
	ledger LedgerClient
}

func NewFeeLookup(ledger LedgerClient) *FeeLookup {
	return &FeeLookup{ledger: ledger}
}

// AllFees queries every fee status concurrently and merges the results,
// deduplicating by fee id. The status queries are independent reads; each
// goroutine fills its own slot and the merge happens only after all complete.
func (l *FeeLookup) AllFees(ctx context.Context, userID string) (map[string]domain.Fee, error) {
	results := make([][]domain.Fee, len(feeStatuses))

	g, ctx := errgroup.WithContext(ctx)
	for i, status := range feeStatuses {
		i, status := i, status
		g.Go(func() error {
			fees, err := l.ledger.GetFees(ctx, userID, status)
			if err != nil {
				return fmt.Errorf("can't fetch %s fees for user %s: %w", status, userID, err)
			}
			results[i] = fees
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lookup := make(map[string]domain.Fee)
	for _, fees := range results {
		for _, fee := range fees {
			if _, seen := lookup[fee.ID]; seen {
				continue
			}
			lookup[fee.ID] = fee
		}
	}
	return lookup, nil
}
