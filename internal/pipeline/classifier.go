package pipeline

import (
	"strings"

	"github.com/libops/payrecon/internal/domain"
	"go.uber.org/zap"
)

const (
	// ledgerInvoicePrefix marks an invoice number issued by the library
	// billing system.
	ledgerInvoicePrefix = "ALMA-"
	// aeonDescriptionPrefix marks a special-collections request payment,
	// which has no ledger-side fee.
	aeonDescriptionPrefix = "Payment for Aeon request(s) "
)

// capturedTypes are the gateway transaction types that represent money
// actually taken (or authorized) from a patron.
var capturedTypes = map[string]bool{
	"authCaptureTransaction": true,
	"captureOnlyTransaction": true,
	"authOnlyTransaction":    true,
}

type Category int

const (
	CategoryUnrecognized Category = iota
	CategoryLedger
	CategoryAeon
)

// Eligible reports whether a transaction should be classified at all.
// Refunds, voids and declined payments are dropped before classification.
func Eligible(t domain.RawTransaction) bool {
	return capturedTypes[t.Type] && t.Status != "declined"
}

// Classify assigns a transaction to exactly one category based on the
// structural markers in its order metadata.
func Classify(t domain.RawTransaction) Category {
	if strings.HasPrefix(t.Order.InvoiceNumber, ledgerInvoicePrefix) {
		return CategoryLedger
	}
	if strings.HasPrefix(t.Order.Description, aeonDescriptionPrefix) {
		return CategoryAeon
	}
	return CategoryUnrecognized
}

// Partition is the classified view of a run's transactions.
type Partition struct {
	Ledger      []Item
	Aeon        []Item
	Diagnostics []domain.Diagnostic
}

// Collect drains the paginator's stream, dropping ineligible transactions and
// partitioning the rest. Unrecognized transactions become diagnostics and are
// not processed further.
func Collect(items <-chan Item) *Partition {
	p := &Partition{}
	for item := range items {
		t := item.Transaction
		if !Eligible(t) {
			zap.L().Debug("skipping ineligible transaction",
				zap.String("transactionID", t.ID),
				zap.String("type", t.Type),
				zap.String("status", t.Status))
			continue
		}
		switch Classify(t) {
		case CategoryLedger:
			p.Ledger = append(p.Ledger, item)
		case CategoryAeon:
			p.Aeon = append(p.Aeon, item)
		default:
			p.Diagnostics = append(p.Diagnostics, domain.NewDiagnostic(domain.DiagnosticUnrecognized, t))
		}
	}
	return p
}
