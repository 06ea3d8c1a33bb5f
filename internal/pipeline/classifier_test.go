package pipeline

import (
	"testing"

	"github.com/libops/payrecon/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligible(t *testing.T) {
	tests := []struct {
		name     string
		txn      domain.RawTransaction
		expected bool
	}{
		{
			name:     "captured payment",
			txn:      domain.RawTransaction{Type: "authCaptureTransaction", Status: "settledSuccessfully"},
			expected: true,
		},
		{
			name:     "authorized payment",
			txn:      domain.RawTransaction{Type: "authOnlyTransaction", Status: "capturedPendingSettlement"},
			expected: true,
		},
		{
			name:     "declined payment",
			txn:      domain.RawTransaction{Type: "authCaptureTransaction", Status: "declined"},
			expected: false,
		},
		{
			name:     "refund",
			txn:      domain.RawTransaction{Type: "refundTransaction", Status: "settledSuccessfully"},
			expected: false,
		},
		{
			name:     "void",
			txn:      domain.RawTransaction{Type: "voidTransaction", Status: "voided"},
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Eligible(tt.txn))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		txn      domain.RawTransaction
		expected Category
	}{
		{
			name:     "ledger invoice prefix",
			txn:      domain.RawTransaction{Order: domain.Order{InvoiceNumber: "ALMA-12345"}},
			expected: CategoryLedger,
		},
		{
			name:     "aeon description prefix",
			txn:      domain.RawTransaction{Order: domain.Order{Description: "Payment for Aeon request(s) 41, 42"}},
			expected: CategoryAeon,
		},
		{
			name:     "no markers",
			txn:      domain.RawTransaction{Order: domain.Order{InvoiceNumber: "INV-9", Description: "donation"}},
			expected: CategoryUnrecognized,
		},
		{
			name:     "empty order metadata",
			txn:      domain.RawTransaction{},
			expected: CategoryUnrecognized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category := Classify(tt.txn)
			assert.Equal(t, tt.expected, category)

			// classification is total: always exactly one of the three
			assert.Contains(t, []Category{CategoryLedger, CategoryAeon, CategoryUnrecognized}, category)
		})
	}
}

func TestCollect(t *testing.T) {
	items := make(chan Item, 5)
	items <- Item{Transaction: domain.RawTransaction{
		ID: "T1", Type: "authCaptureTransaction", Status: "settledSuccessfully",
		Order: domain.Order{InvoiceNumber: "ALMA-1"},
	}}
	items <- Item{Transaction: domain.RawTransaction{
		ID: "T2", Type: "authCaptureTransaction", Status: "settledSuccessfully",
		Order: domain.Order{Description: "Payment for Aeon request(s) 7"},
	}}
	items <- Item{Transaction: domain.RawTransaction{
		ID: "T3", Type: "authCaptureTransaction", Status: "settledSuccessfully",
		Order: domain.Order{InvoiceNumber: "OTHER-1"},
	}}
	items <- Item{Transaction: domain.RawTransaction{
		ID: "T4", Type: "refundTransaction", Status: "settledSuccessfully",
		Order: domain.Order{InvoiceNumber: "ALMA-2"},
	}}
	items <- Item{Transaction: domain.RawTransaction{
		ID: "T5", Type: "authCaptureTransaction", Status: "declined",
		Order: domain.Order{InvoiceNumber: "ALMA-3"},
	}}
	close(items)

	p := Collect(items)

	require.Len(t, p.Ledger, 1)
	assert.Equal(t, "T1", p.Ledger[0].Transaction.ID)
	require.Len(t, p.Aeon, 1)
	assert.Equal(t, "T2", p.Aeon[0].Transaction.ID)

	// the unrecognized capture is reported; the refund and the decline are
	// silently dropped
	require.Len(t, p.Diagnostics, 1)
	assert.Equal(t, domain.DiagnosticUnrecognized, p.Diagnostics[0].Kind)
	assert.Equal(t, "T3", p.Diagnostics[0].TransactionID)
	assert.NotEmpty(t, p.Diagnostics[0].ID)
}
