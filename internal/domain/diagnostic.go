package domain

import (
	"time"

	"github.com/google/uuid"
)

type DiagnosticKind string

const (
	// DiagnosticUnrecognized flags a captured transaction matching neither
	// recognized payment workflow.
	DiagnosticUnrecognized DiagnosticKind = "UNRECOGNIZED_TRANSACTION"
	// DiagnosticNoCustomerID flags a ledger-linked transaction with no
	// customer id to group by.
	DiagnosticNoCustomerID DiagnosticKind = "MISSING_CUSTOMER_ID"
	// DiagnosticNoLineItems flags a ledger-linked transaction carrying no
	// line items at all.
	DiagnosticNoLineItems DiagnosticKind = "MALFORMED_TRANSACTION"
	// DiagnosticMissingFee flags a line item whose id matches no ledger fee:
	// the gateway charged for something the ledger has no record of.
	DiagnosticMissingFee DiagnosticKind = "MISSING_FEE"
	// DiagnosticMissingFeeTransaction flags a matched fee with no payment
	// attempt referencing the gateway transaction (sync lag).
	DiagnosticMissingFeeTransaction DiagnosticKind = "MISSING_FEE_TRANSACTION"
	// DiagnosticAmbiguousMatch flags a matched fee with two or more payment
	// attempts referencing the same gateway transaction (duplicate billing).
	DiagnosticAmbiguousMatch DiagnosticKind = "AMBIGUOUS_MATCH"
)

// Diagnostic is a non-fatal, per-record reconciliation failure. Diagnostics
// are collected and reported for manual investigation; they never abort a run.
type Diagnostic struct {
	ID            string
	Kind          DiagnosticKind
	TransactionID string
	UserID        string
	FeeID         string
	LineItemID    string
	Status        string
	SubmitTime    time.Time
	Detail        string
}

func NewDiagnostic(kind DiagnosticKind, t RawTransaction) Diagnostic {
	return Diagnostic{
		ID:            uuid.NewString(),
		Kind:          kind,
		TransactionID: t.ID,
		UserID:        t.CustomerID,
		Status:        t.Status,
		SubmitTime:    t.SubmitTime,
	}
}
