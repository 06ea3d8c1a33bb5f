package domain

import "time"

// SettlementBatch is a gateway-side batch of captured payments settled together.
type SettlementBatch struct {
	ID              string
	SettlementTime  time.Time
	SettlementState string
}

// TransactionSummary is the paged listing entry for a settled transaction.
// Full detail is fetched separately per id.
type TransactionSummary struct {
	ID         string
	SubmitTime time.Time
	Status     string
}

type LineItem struct {
	ID        string
	Name      string
	UnitPrice float64
}

type Order struct {
	InvoiceNumber string
	Description   string
}

type BillTo struct {
	FirstName string
	LastName  string
}

// RawTransaction is the full gateway-side transaction detail. Immutable once
// fetched; identity is the gateway transaction id.
type RawTransaction struct {
	ID         string
	Type       string
	Status     string
	SubmitTime time.Time
	AuthAmount float64
	CustomerID string
	Order      Order
	BillTo     BillTo
	LineItems  []LineItem
	BatchID    string
}

// LedgerUser is the billing-system identity a transaction's customer id maps to.
type LedgerUser struct {
	PrimaryID string
	FullName  string
}

// FeeTransaction is a single payment attempt recorded against a ledger fee.
// ExternalTransactionID carries the gateway transaction id for payments made
// through the gateway.
type FeeTransaction struct {
	Type                  string
	Amount                float64
	ExternalTransactionID string
	TransactionTime       time.Time
}

// Fee is a ledger-side billable item. Its id doubles as the gateway line-item
// id, which is the first stage of the reconciliation join.
type Fee struct {
	ID           string
	Type         string
	Status       string
	OwnerID      string
	Transactions []FeeTransaction
}

// FeePaymentRecord is the persisted row for a ledger-matched payment.
// Natural key: (AlmaFeeID, AuthorizeTransactionID). Amount comes from the
// ledger fee transaction, which is authoritative.
type FeePaymentRecord struct {
	AlmaFeeID              string
	AuthorizeTransactionID string
	TransactionSubmitTime  time.Time
	TransactionSettledTime *time.Time
	TransactionStatus      string
	SettlementState        string
	PatronUserID           string
	PatronName             string
	PaymentCategory        string
	PaymentAmount          float64
}

// AeonPaymentRecord is the persisted row for an Aeon request payment, which
// has no ledger counterpart. Natural key: AuthorizeTransactionID.
type AeonPaymentRecord struct {
	AuthorizeTransactionID string
	TransactionSubmitTime  time.Time
	TransactionSettledTime *time.Time
	TransactionStatus      string
	SettlementState        string
	PatronName             string
	AeonTransactionNumbers string
	PaymentAmount          float64
}
