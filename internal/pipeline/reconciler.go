package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/libops/payrecon/internal/domain"
	"go.uber.org/zap"
)

// Reconciler joins ledger-classified gateway transactions against the
// billing ledger's fee records. Fatal errors (ledger communication) abort the
// run; per-record mismatches become diagnostics and the run continues.
type Reconciler struct {
	ledger LedgerClient
	fees   *FeeLookup
}

func NewReconciler(ledger LedgerClient) *Reconciler {
	return &Reconciler{
		ledger: ledger,
		fees:   NewFeeLookup(ledger),
	}
}

// Result is a run's full reconciliation output, partitioned by target table.
type Result struct {
	FeeRecords  []domain.FeePaymentRecord
	AeonRecords []domain.AeonPaymentRecord
	Diagnostics []domain.Diagnostic
}

func (res *Result) report(d domain.Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
	zap.L().Warn("reconciliation diagnostic",
		zap.String("kind", string(d.Kind)),
		zap.String("transactionID", d.TransactionID),
		zap.String("userID", d.UserID),
		zap.String("feeID", d.FeeID),
		zap.String("lineItemID", d.LineItemID),
		zap.String("status", d.Status),
		zap.Time("submitTime", d.SubmitTime))
}

// Reconcile resolves a classified partition into payment records. Ledger
// transactions are grouped by customer so each user's identity and fee set
// are fetched exactly once.
func (r *Reconciler) Reconcile(ctx context.Context, p *Partition) (*Result, error) {
	result := &Result{Diagnostics: p.Diagnostics}

	for _, item := range p.Aeon {
		result.AeonRecords = append(result.AeonRecords, newAeonPaymentRecord(item))
	}

	for userID, items := range r.groupByCustomer(p.Ledger, result) {
		user, err := r.ledger.GetUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("can't fetch ledger user %s: %w", userID, err)
		}
		feeLookup, err := r.fees.AllFees(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			r.reconcileTransaction(user, feeLookup, item, result)
		}
	}

	zap.L().Info("reconciliation finished",
		zap.Int("feeRecords", len(result.FeeRecords)),
		zap.Int("aeonRecords", len(result.AeonRecords)),
		zap.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

func (r *Reconciler) groupByCustomer(items []Item, result *Result) map[string][]Item {
	groups := make(map[string][]Item)
	for _, item := range items {
		if item.Transaction.CustomerID == "" {
			result.report(domain.NewDiagnostic(domain.DiagnosticNoCustomerID, item.Transaction))
			continue
		}
		groups[item.Transaction.CustomerID] = append(groups[item.Transaction.CustomerID], item)
	}
	return groups
}

// reconcileTransaction resolves each line item through the two-stage join:
// line-item id to fee, then fee transactions filtered by the gateway
// transaction id. A single fee accumulates multiple payment attempts, so the
// second stage picks out which attempt this transaction represents.
func (r *Reconciler) reconcileTransaction(user *domain.LedgerUser, fees map[string]domain.Fee, item Item, result *Result) {
	t := item.Transaction
	if len(t.LineItems) == 0 {
		d := domain.NewDiagnostic(domain.DiagnosticNoLineItems, t)
		d.Detail = "transaction carries no line items"
		result.report(d)
		return
	}

	for _, lineItem := range t.LineItems {
		fee, ok := fees[lineItem.ID]
		if !ok {
			d := domain.NewDiagnostic(domain.DiagnosticMissingFee, t)
			d.UserID = user.PrimaryID
			d.LineItemID = lineItem.ID
			d.Detail = "the ledger has no fee with this line item's id"
			result.report(d)
			continue
		}

		matches := matchingFeeTransactions(fee, t.ID)
		switch len(matches) {
		case 1:
			result.FeeRecords = append(result.FeeRecords, newFeePaymentRecord(user, fee, matches[0], item))
		case 0:
			// Zero matches and many matches are distinct failure classes:
			// sync lag on the ledger side versus duplicate billing. Never
			// guess which attempt was meant.
			d := domain.NewDiagnostic(domain.DiagnosticMissingFeeTransaction, t)
			d.UserID = user.PrimaryID
			d.FeeID = fee.ID
			d.LineItemID = lineItem.ID
			d.Detail = "no fee transaction references this gateway transaction"
			result.report(d)
		default:
			d := domain.NewDiagnostic(domain.DiagnosticAmbiguousMatch, t)
			d.UserID = user.PrimaryID
			d.FeeID = fee.ID
			d.LineItemID = lineItem.ID
			d.Detail = fmt.Sprintf("%d fee transactions reference this gateway transaction", len(matches))
			result.report(d)
		}
	}
}

func matchingFeeTransactions(fee domain.Fee, transactionID string) []domain.FeeTransaction {
	var matches []domain.FeeTransaction
	for _, ft := range fee.Transactions {
		if ft.ExternalTransactionID == transactionID {
			matches = append(matches, ft)
		}
	}
	return matches
}

func newFeePaymentRecord(user *domain.LedgerUser, fee domain.Fee, feeTx domain.FeeTransaction, item Item) domain.FeePaymentRecord {
	rec := domain.FeePaymentRecord{
		AlmaFeeID:              fee.ID,
		AuthorizeTransactionID: item.Transaction.ID,
		TransactionSubmitTime:  item.Transaction.SubmitTime,
		TransactionStatus:      item.Transaction.Status,
		PatronUserID:           user.PrimaryID,
		PatronName:             user.FullName,
		PaymentCategory:        fee.Type,
		// the ledger is authoritative for the amount
		PaymentAmount: feeTx.Amount,
	}
	if item.Batch.ID != "" {
		settled := item.Batch.SettlementTime
		rec.TransactionSettledTime = &settled
		rec.SettlementState = item.Batch.SettlementState
	}
	return rec
}

func newAeonPaymentRecord(item Item) domain.AeonPaymentRecord {
	t := item.Transaction
	rec := domain.AeonPaymentRecord{
		AuthorizeTransactionID: t.ID,
		TransactionSubmitTime:  t.SubmitTime,
		TransactionStatus:      t.Status,
		PatronName:             t.BillTo.FirstName + " " + t.BillTo.LastName,
		AeonTransactionNumbers: strings.TrimPrefix(t.Order.Description, aeonDescriptionPrefix),
		PaymentAmount:          t.AuthAmount,
	}
	if item.Batch.ID != "" {
		settled := item.Batch.SettlementTime
		rec.TransactionSettledTime = &settled
		rec.SettlementState = item.Batch.SettlementState
	}
	return rec
}
