package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/libops/payrecon/internal/domain"
	"github.com/libops/payrecon/internal/gateway"
	"go.uber.org/zap"
)

// maxWindowDays is the gateway's limit on a settlement-date range query.
const maxWindowDays = 31

//go:generate mockgen -source=paginator.go -destination=paginator_mock.go -package=pipeline
type GatewayClient interface {
	ListSettledBatches(ctx context.Context, from, to time.Time) ([]domain.SettlementBatch, error)
	ListBatchTransactions(ctx context.Context, batchID string, page int) ([]domain.TransactionSummary, int, error)
	GetTransactionDetail(ctx context.Context, transactionID string) (*domain.RawTransaction, error)
}

// Item pairs a transaction with the settlement batch it was fetched from.
type Item struct {
	Batch       domain.SettlementBatch
	Transaction domain.RawTransaction
}

type Interval struct {
	Start time.Time
	End   time.Time
}

// DateIntervals splits [start, end) into consecutive windows of at most
// intervalLengthInDays days. The final window is cut short at end; the union
// covers the whole range with no gaps or overlaps.
func DateIntervals(start, end time.Time, intervalLengthInDays int) []Interval {
	var intervals []Interval
	currentStart := start
	for {
		nextStart := currentStart.AddDate(0, 0, intervalLengthInDays)
		if !nextStart.Before(end) {
			break
		}
		intervals = append(intervals, Interval{Start: currentStart, End: nextStart})
		currentStart = nextStart
	}
	return append(intervals, Interval{Start: currentStart, End: end})
}

// Paginator walks the gateway's settled batches over a date range and yields
// every transaction with full detail. The sequence is lazy and finite; pages
// within a batch arrive in order, ordering across batches is not guaranteed.
type Paginator struct {
	gateway GatewayClient
}

func NewPaginator(gw GatewayClient) *Paginator {
	return &Paginator{gateway: gw}
}

// Transactions starts a producer goroutine feeding the item channel. The
// item channel closes when the range is exhausted or a gateway call fails;
// the 1-buffered error channel then carries the failure, if any. A gateway
// failure is fatal to the sequence, nothing is retried.
//
// TODO: merge in not-yet-settled transactions, deduplicated by transaction id.
func (p *Paginator) Transactions(ctx context.Context, from, to time.Time) (<-chan Item, <-chan error) {
	items := make(chan Item)
	errCh := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errCh)
		if err := p.produce(ctx, from.UTC(), to.UTC(), items); err != nil {
			errCh <- err
		}
	}()

	return items, errCh
}

func (p *Paginator) produce(ctx context.Context, from, to time.Time, out chan<- Item) error {
	for _, window := range DateIntervals(from, to, maxWindowDays) {
		batches, err := p.gateway.ListSettledBatches(ctx, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("can't list settled batches for %s..%s: %w",
				window.Start.Format(time.DateOnly), window.End.Format(time.DateOnly), err)
		}
		for _, batch := range batches {
			if err := p.produceBatch(ctx, batch, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Paginator) produceBatch(ctx context.Context, batch domain.SettlementBatch, out chan<- Item) error {
	zap.L().Info("fetching settled transactions", zap.String("batchID", batch.ID))

	for page := 1; ; page++ {
		summaries, total, err := p.gateway.ListBatchTransactions(ctx, batch.ID, page)
		if err != nil {
			return fmt.Errorf("can't list transactions of batch %s page %d: %w", batch.ID, page, err)
		}
		if len(summaries) == 0 {
			return nil
		}

		for _, summary := range summaries {
			detail, err := p.gateway.GetTransactionDetail(ctx, summary.ID)
			if err != nil {
				return fmt.Errorf("can't fetch transaction %s: %w", summary.ID, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- Item{Batch: batch, Transaction: *detail}:
			}
		}

		// A short page means the result set is exhausted; asking for the
		// next page would only waste a round trip.
		if total < gateway.PageSize {
			return nil
		}
	}
}
